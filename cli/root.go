// Package cli is the logviewer command line: the HTTP server, one-shot
// queries against the log root, and the syslog collector and generator.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"logviewer/config"
	"logviewer/logging"
	"logviewer/service"
)

// options holds the persistent flags shared by every command.
type options struct {
	configFile string
	root       string
	logLevel   string
	json       bool
}

// NewRootCommand builds the logviewer command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "logviewer",
		Short: "Browse and search syslog files collected by a remote syslog server",
		Long: `logviewer lists the *.log files under a log root, returns the filtered
tail of any of them and summarizes their sizes. It serves the same queries
over a JSON HTTP API, and can collect and generate RFC 3164 syslog traffic.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.root, "root", "", "log root directory (overrides root_dir)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (overrides log_level)")
	rootCmd.PersistentFlags().BoolVar(&opts.json, "json", false, "print results as JSON")

	rootCmd.AddCommand(
		newServeCommand(opts),
		newFilesCommand(opts),
		newLogsCommand(opts),
		newStatsCommand(opts),
		newCollectCommand(opts),
		newGenerateCommand(opts),
		newVersionCommand(),
	)

	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig layers the flags over config.Load and validates the result.
func (o *options) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return config.Config{}, err
	}

	if cmd.Flags().Changed("root") {
		cfg.RootDir = o.root
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}

	if errs := config.Validate(cfg); len(errs) > 0 {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// newLogger writes to the command's stderr so output stays on stdout.
func newLogger(cmd *cobra.Command, cfg config.Config) (*zap.Logger, error) {
	return logging.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
}

// setup loads the configuration and builds the logger and the service.
func (o *options) setup(cmd *cobra.Command) (config.Config, *service.Service, *zap.Logger, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return config.Config{}, nil, nil, err
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return config.Config{}, nil, nil, err
	}

	svc, err := service.New(cfg, logger)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	return cfg, svc, logger, nil
}
