package cli

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"logviewer/loggen"
)

func newGenerateCommand(opts *options) *cobra.Command {
	cfg := loggen.Config{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Send RFC 3164 syslog traffic to a collector",
		Long: fmt.Sprintf(`Send randomized syslog messages from the built-in scenarios to a syslog
collector over UDP or TCP until --count messages are sent or the command is
interrupted.

Scenarios: %s, all`, strings.Join(loggen.ScenarioNames(), ", ")),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			appCfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd, appCfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			gen, err := loggen.New(cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			summary := gen.Run(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "Sent %d messages (%d errors) in %s\n",
				summary.Sent, summary.Errors, summary.Duration.Round(time.Millisecond))
			if summary.Sent == 0 && summary.Errors > 0 {
				return fmt.Errorf("no messages delivered to %s:%d", cfg.Host, cfg.Port)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.Host, "host", "localhost", "syslog collector host")
	cmd.Flags().IntVar(&cfg.Port, "port", 514, "syslog collector port")
	cmd.Flags().StringVar(&cfg.Protocol, "protocol", "udp", "udp or tcp")
	cmd.Flags().StringVar(&cfg.Hostname, "hostname", "syslog-client", "HOSTNAME field of generated messages")
	cmd.Flags().StringVar(&cfg.Scenario, "scenario", "all", "scenario to draw messages from")
	cmd.Flags().DurationVar(&cfg.Interval, "interval", 2*time.Second, "delay between messages per worker")
	cmd.Flags().DurationVar(&cfg.Jitter, "jitter", 500*time.Millisecond, "random ± adjustment of --interval")
	cmd.Flags().IntVar(&cfg.Count, "count", 0, "messages to send (0 runs until interrupted)")
	cmd.Flags().IntVar(&cfg.Workers, "workers", 1, "concurrent senders")
	return cmd
}
