package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/rupamthxt/vectraproj/internal/cache"
	vectraHttp "github.com/rupamthxt/vectraproj/internal/http"
	"github.com/rupamthxt/vectraproj/internal/projection"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the projection API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkEngine(); err != nil {
				return err
			}
			ctx := cmd.Context()
			cfg := a.cfg

			var results *cache.ResultCache
			if cfg.Redis.Enabled() {
				client := cache.NewClient(cfg.Redis)
				defer client.Close()
				if err := cache.Ping(ctx, client); err != nil {
					return err
				}
				results = cache.NewResultCache(client, cfg.Redis.TTL)
				a.logger.Info("Result cache enabled", "ttl", cfg.Redis.TTL)
			}

			runner := a.runner(cfg.Projector.DefaultComponents, projection.WithMaxItems(cfg.Server.MaxItems))
			handler := vectraHttp.NewHandler(runner, results, cfg.Server.RequestTimeout, a.logger)
			server := vectraHttp.NewApp(handler, vectraHttp.ServerOptions{
				BodyLimitMB: cfg.Server.BodyLimitMB,
				AccessLog:   true,
			})

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Listen(cfg.Server.ListenAddr)
			}()
			a.logger.Info("vectraproj listening", "addr", cfg.Server.ListenAddr,
				"default_components", cfg.Projector.DefaultComponents)

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				a.logger.Info("Shutting down")
				if err := server.ShutdownWithTimeout(shutdownTimeout); err != nil {
					return err
				}
				return <-errCh
			}
		},
	}
}
