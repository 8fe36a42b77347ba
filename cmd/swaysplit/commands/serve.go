package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/joshuarubin/lifecycle"
	"github.com/spf13/cobra"

	"github.com/bryanchriswhite/swaysplit/internal/api"
	"github.com/bryanchriswhite/swaysplit/internal/config"
	"github.com/bryanchriswhite/swaysplit/internal/logger"
	"github.com/bryanchriswhite/swaysplit/internal/notify"
	"github.com/bryanchriswhite/swaysplit/internal/window"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the swaysplit daemon",
	Long: `Subscribe to sway window events and set the split direction on every
focus change.

The daemon exits with an error when sway shuts down.`,
	Example: `  # Start the daemon (usually from the sway config)
  exec swaysplit serve

  # Use a specific socket and debug logging
  swaysplit serve --socket /run/user/1000/sway-ipc.sock --log-level debug

  # Expose the status API on localhost:9090
  swaysplit serve --port 9090`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg := configMgr.Get()
	log := logger.WithComponent("serve")

	configMgr.Watch(func(c *config.Config) {
		logger.SetLevel(c.LogLevel)
	})

	backend, err := window.NewSwayBackend(cfg.SocketPath)
	if err != nil {
		return err
	}
	windowMgr := window.NewManager(backend)

	ctx := lifecycle.New(cmd.Context())

	log.Info().
		Str("socket", backend.SocketPath()).
		Str("config", configMgr.GetConfigPath()).
		Int("pid", os.Getpid()).
		Msg("Starting swaysplit")

	if cfg.ServerPort > 0 {
		server := api.NewServer(windowMgr)
		lifecycle.GoErr(ctx, func() error {
			return server.Start(cfg.ServerPort)
		})
		lifecycle.GoErr(ctx, func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	lifecycle.GoErr(ctx, func() error {
		err := windowMgr.Run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			return errors.New("sway event subscription ended")
		}
		return err
	})

	err = lifecycle.Wait(ctx)
	switch {
	case isSignal(err):
		log.Info().Msg("Stopped")
		return nil
	case errors.Is(err, window.ErrShutdown):
		log.Warn().Err(err).Msg("Exiting with sway")
		if cfg.NotifyOnExit {
			notifyExit(err)
		}
		return err
	case err != nil:
		return fmt.Errorf("daemon failed: %w", err)
	}
	return nil
}

func isSignal(err error) bool {
	var serr lifecycle.ErrSignal
	if !errors.As(err, &serr) {
		return false
	}
	switch serr.Signal {
	case syscall.SIGINT, syscall.SIGTERM:
		return true
	}
	return false
}

func notifyExit(reason error) {
	log := logger.WithComponent("notify")

	n, err := notify.New()
	if err != nil {
		log.Debug().Err(err).Msg("Desktop notifications unavailable")
		return
	}
	defer n.Close()

	if _, err := n.Send("swaysplit stopped", reason.Error()); err != nil {
		log.Debug().Err(err).Msg("Failed to send notification")
	}
}
