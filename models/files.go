package models

import (
	"errors"
	"fmt"
	"strings"
)

// FileAction is the operation a generated file change proposes
type FileAction string

const (
	ActionCreate FileAction = "create"
	ActionUpdate FileAction = "update"
	ActionDelete FileAction = "delete"
)

// Valid reports whether the action is one of create, update or delete
func (a FileAction) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// NodeType distinguishes file leaves from folders in a projected tree
type NodeType string

const (
	NodeFile   NodeType = "file"
	NodeFolder NodeType = "folder"
)

// ErrMalformedPath is returned for paths that cannot be placed in a tree
var ErrMalformedPath = errors.New("malformed file path")

// FileChange is one file's proposed operation from a generation request.
// Treated as immutable once created.
type FileChange struct {
	Path    string     `json:"path"`
	Content string     `json:"content"`
	Action  FileAction `json:"action"`
}

// Validate checks the path and action of a change
func (f FileChange) Validate() error {
	if _, err := NormalizePath(f.Path); err != nil {
		return err
	}
	if !f.Action.Valid() {
		return fmt.Errorf("invalid action %q for %s", f.Action, f.Path)
	}
	return nil
}

// FileNode is a node of the tree projection of a FileChange list
type FileNode struct {
	Name     string     `json:"name"`
	Type     NodeType   `json:"type"`
	Path     string     `json:"path"`
	Children []FileNode `json:"children,omitempty"`
}

// IsFolder reports whether the node is a folder
func (n FileNode) IsFolder() bool {
	return n.Type == NodeFolder
}

// NormalizePath converts a generated path into the canonical slash-separated
// relative form: backslashes become slashes, empty and "." segments are
// dropped. Paths that are empty after normalization or that climb out with
// ".." are rejected.
func NormalizePath(p string) (string, error) {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	if p == "" {
		return "", fmt.Errorf("%w: empty path", ErrMalformedPath)
	}

	segments := strings.Split(p, "/")
	clean := segments[:0]
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		switch seg {
		case "", ".":
			continue
		case "..":
			return "", fmt.Errorf("%w: %q escapes the project root", ErrMalformedPath, p)
		}
		clean = append(clean, seg)
	}

	if len(clean) == 0 {
		return "", fmt.Errorf("%w: %q has no segments", ErrMalformedPath, p)
	}
	return strings.Join(clean, "/"), nil
}

// Dedupe collapses changes that share a path. The surviving entry keeps the
// position of the first occurrence and the value of the last one.
func Dedupe(changes []FileChange) []FileChange {
	if len(changes) == 0 {
		return nil
	}

	index := make(map[string]int, len(changes))
	out := make([]FileChange, 0, len(changes))
	for _, c := range changes {
		if i, ok := index[c.Path]; ok {
			out[i] = c
			continue
		}
		index[c.Path] = len(out)
		out = append(out, c)
	}
	return out
}

// CloneFiles returns a copy of the slice so callers cannot alias stored state
func CloneFiles(files []FileChange) []FileChange {
	if files == nil {
		return nil
	}
	out := make([]FileChange, len(files))
	copy(out, files)
	return out
}
