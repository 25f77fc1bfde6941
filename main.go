package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yaguaretech/builder/api"
	"github.com/yaguaretech/builder/config"
	"github.com/yaguaretech/builder/log"
	"github.com/yaguaretech/builder/server"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}

func run() error {
	cfg := config.Get()

	srv, err := server.New(server.NewConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	api.SetupRoutes(srv.Router(), api.NewHandlers(srv))
	srv.ServeFrontend()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		printNetworkAddresses(cfg.Port)
		return srv.Start()
	})

	g.Go(func() error {
		return srv.RunSessionPruner(gctx)
	})

	// Shut down on signal, or when the HTTP server fails to start
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func printNetworkAddresses(port int) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok {
				if ip4 := ipnet.IP.To4(); ip4 != nil {
					log.Info().Str("url", fmt.Sprintf("http://%s:%d", ip4, port)).Msg("network")
				}
			}
		}
	}
}
