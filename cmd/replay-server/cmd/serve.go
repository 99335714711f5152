package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	replay "github.com/swordfishtr/replay-server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve replays over HTTP",
	Long:  "Index the replays directory, watch it for new uploads and serve replays and the listing API.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 3000, "listen port")
	serveCmd.Flags().String("portal-dir", "", "directory of static client assets served under /portal")
	serveCmd.Flags().Int("max-cache", replay.DefaultCacheSize, "number of full replays kept in memory")
	serveCmd.Flags().String("template", "", "replay page template (default: embedded)")
	serveCmd.Flags().String("access-url", "", "public base URL quoted in access-denied messages")

	viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("portal_dir", serveCmd.Flags().Lookup("portal-dir"))
	viper.BindPFlag("max_cache", serveCmd.Flags().Lookup("max-cache"))
	viper.BindPFlag("template", serveCmd.Flags().Lookup("template"))
	viper.BindPFlag("access_url", serveCmd.Flags().Lookup("access-url"))
}

func runServe(cmd *cobra.Command, args []string) (err error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	srv, err := replay.Open(cfg.ReplaysDir, append(cfg.openOptions(), replay.WithLogger(logger))...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := srv.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	handler, err := srv.Handler()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lis, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(cfg.Port)))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	httpSrv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", lis.Addr().String()))
		serveErr <- httpSrv.Serve(lis)
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
