package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"logviewer/server"
)

func newServeCommand(opts *options) *cobra.Command {
	var addr, staticDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API and the static frontend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, svc, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			if cmd.Flags().Changed("addr") {
				cfg.ListenAddr = addr
			}
			if cmd.Flags().Changed("static") {
				cfg.StaticDir = staticDir
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger.Info("starting log viewer",
				zap.String("root", cfg.RootDir),
				zap.String("addr", cfg.ListenAddr),
				zap.String("line_format", cfg.LineFormat),
			)
			return server.NewServer(cfg, svc, logger).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides listen_addr)")
	cmd.Flags().StringVar(&staticDir, "static", "", "frontend build directory (overrides static_dir)")
	return cmd
}
