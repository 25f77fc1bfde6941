package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/yaguaretech/builder/config"
)

// QueryParam represents a parameter for database queries
type QueryParam interface{}

var shouldLogQueries = config.Get().DBLogQueries

func logQuery(kind string, sql string, params []QueryParam) {
	if !shouldLogQueries {
		return
	}
	logger.Debug().
		Str("kind", kind).
		Str("sql", sql).
		Interface("params", params).
		Msg("db query")
}

func toArgs(params []QueryParam) []interface{} {
	args := make([]interface{}, len(params))
	for i, p := range params {
		args[i] = p
	}
	return args
}

// SelectOne runs a SELECT query returning a single row (or nil if not found)
func SelectOne[T any](ctx context.Context, db *sql.DB, query string, params []QueryParam, scanner func(*sql.Row) (T, error)) (*T, error) {
	logQuery("get", query, params)

	row := db.QueryRowContext(ctx, query, toArgs(params)...)
	result, err := scanner(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// Run executes an INSERT/UPDATE/DELETE query
func Run(ctx context.Context, db *sql.DB, query string, params ...QueryParam) (sql.Result, error) {
	logQuery("run", query, params)
	return db.ExecContext(ctx, query, toArgs(params)...)
}

// NowMs returns the current time as Unix milliseconds
func NowMs() int64 {
	return time.Now().UnixMilli()
}
