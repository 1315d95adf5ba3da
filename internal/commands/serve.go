package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/balkashynov/doit/internal/auth"
	"github.com/balkashynov/doit/internal/config"
	"github.com/balkashynov/doit/internal/logging"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API under /api. The schema is migrated on start.

With auth.mode=session and auth.sweep_interval set, expired sessions are
deleted in the background.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return err
	}

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv, err := buildServer(ctx, st)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening",
			zap.String("addr", cfg.Addr),
			zap.String("store", cfg.Store.Driver),
			zap.String("auth", cfg.Auth.Mode),
		)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	})

	if cfg.Auth.Mode == config.AuthSession {
		sweeper := auth.NewSweeper(st, cfg.Auth.SweepInterval, logging.Component(logger, "sweeper"))
		g.Go(func() error { return sweeper.Run(gctx) })
	}

	return g.Wait()
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8000)")
	_ = v.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
}
