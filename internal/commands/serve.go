package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"tickbug-backend/internal/handlers"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run migrations and start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		cmd.SetContext(ctx)

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.cfg.IsProduction() {
			gin.SetMode(gin.ReleaseMode)
		}
		router := handlers.NewRouter(handlers.RouterConfig{
			Services:       a.svc,
			Tokens:         a.tokens,
			DB:             a.db,
			MaxUploadBytes: a.cfg.MaxUploadBytes,
			Logger:         a.logger,
		})

		srv := &http.Server{
			Addr:              ":" + a.cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			a.logger.Info("server starting",
				slog.String("addr", srv.Addr),
				slog.String("environment", a.cfg.Environment),
				slog.String("database", a.db.Driver()),
			)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	},
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "listen port (overrides PORT)")
}
