package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jalad-shrimali/cdr-analyzer/handlers"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			sc := a.cfg.Server
			h := handlers.NewHandler(a.analyzer, handlers.Options{
				MaxUploadBytes: sc.MaxUploadBytes(),
				TopN:           a.cfg.Analysis.TopN,
				CallerTopN:     a.cfg.Analysis.CallerTopN,
				AllowedOrigins: sc.AllowedOrigins,
			}, a.log)
			srv := &http.Server{
				Addr:         sc.Addr(),
				Handler:      handlers.NewRouter(h),
				ReadTimeout:  time.Duration(sc.ReadTimeoutSeconds) * time.Second,
				WriteTimeout: time.Duration(sc.WriteTimeoutSeconds) * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				a.log.Info("listening", zap.String("addr", srv.Addr))
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			a.log.Info("shutting down")
			sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				a.log.Error("shutdown error", zap.Error(err))
				return err
			}
			a.log.Info("bye")
			return nil
		},
	}
}
