package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"logviewer/collector"
)

func newCollectCommand(opts *options) *cobra.Command {
	var udpAddr, tcpAddr string

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Receive syslog over UDP/TCP and append it under the log root",
		Long: `Receive RFC 3164 syslog messages and append them under the log root:
every message to the default file (all-remote.log), structured messages also
to <hostname>/<program>.log. An empty address disables that listener.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			if cmd.Flags().Changed("udp-addr") {
				cfg.UDPAddr = udpAddr
			}
			if cmd.Flags().Changed("tcp-addr") {
				cfg.TCPAddr = tcpAddr
			}

			store, err := collector.NewStore(cfg.RootDir, cfg.DefaultFile)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return collector.New(store, cfg.UDPAddr, cfg.TCPAddr, logger).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&udpAddr, "udp-addr", "", "UDP listen address (overrides udp_addr)")
	cmd.Flags().StringVar(&tcpAddr, "tcp-addr", "", "TCP listen address (overrides tcp_addr)")
	return cmd
}
