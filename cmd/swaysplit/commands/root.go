package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bryanchriswhite/swaysplit/internal/config"
	"github.com/bryanchriswhite/swaysplit/internal/logger"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "swaysplit",
		Short: "swaysplit - master/stack split direction for sway",
		Long: `swaysplit watches sway focus changes and picks the split direction for
the next window.

When the focused window is the master (the leftmost visible window) the
next window opens beside it (splith). Any other focused window gets the
next window below it (splitv).

Running swaysplit without a subcommand starts the daemon.`,
		SilenceUsage: true,
		RunE:         runServe,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/swaysplit/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("socket", "", "sway IPC socket (default is $SWAYSOCK)")
	rootCmd.PersistentFlags().Int("port", 0, "status API port on localhost (0 disables)")
}

// loadConfig reads the config file and applies flag and environment overrides
func loadConfig(cmd *cobra.Command) (*config.Manager, error) {
	configMgr, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	v := configMgr.GetViper()
	flags := cmd.Flags()
	bindings := map[string]string{
		"log_level":   "log-level",
		"socket_path": "socket",
		"server_port": "port",
	}
	for key, name := range bindings {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind --%s: %w", name, err)
			}
		}
	}

	if err := configMgr.ApplyOverrides(); err != nil {
		return nil, err
	}

	cfg := configMgr.Get()
	logger.Init(cfg.LogLevel, cfg.LogPretty)
	return configMgr, nil
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
