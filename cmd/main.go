package main

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/okian/casewatch/internal/config"
	"github.com/okian/casewatch/pkg/logger"
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	err := newRootCmd().Execute()
	if syncErr := logger.Sync(); syncErr != nil {
		os.Stderr.WriteString("failed to sync logs: " + syncErr.Error() + "\n")
	}
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "casewatch",
		Short:         "Periodically refreshed top-N ranking of case counts",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"YAML config file (defaults to $"+config.ConfigFileEnv+")")

	root.AddCommand(newServeCmd(&configPath), newOnceCmd(&configPath))
	return root
}

// setup loads configuration and initializes logging for a subcommand.
// Logs go to stderr so stdout stays clean for command output.
func setup(cmd *cobra.Command, configPath string) (*config.Config, error) {
	if configPath != "" {
		if err := os.Setenv(config.ConfigFileEnv, configPath); err != nil {
			return nil, err
		}
	}

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if err := logger.InitWith(cmd.ErrOrStderr(), logger.Format(cfg.LogFormat)); err != nil {
		return nil, err
	}
	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}
