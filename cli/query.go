package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"logviewer/models"
	"logviewer/server/handlers"
)

func newFilesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List the log files under the root, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			files, err := svc.ListFiles()
			if err != nil {
				return err
			}

			resp := handlers.NewFilesResponse(files)
			if opts.json {
				return writeJSON(cmd.OutOrStdout(), resp)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "PATH\tSIZE\tMODIFIED")
			for _, f := range resp.Files {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", f.Path, f.Size, f.Modified)
			}
			return tw.Flush()
		},
	}
}

func newLogsCommand(opts *options) *cobra.Command {
	var filter models.QueryFilter

	cmd := &cobra.Command{
		Use:   "logs [file]",
		Short: "Print the filtered tail of a log file",
		Long: `Print the records among the last --lines lines of a log file that contain
both --search and --level (case-insensitive). The file is relative to the
log root; without one the configured default file is read.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			file := svc.DefaultFile()
			if len(args) == 1 {
				file = args[0]
			}

			result, err := svc.QueryLogs(file, filter)
			if err != nil {
				return err
			}

			if opts.json {
				return writeJSON(cmd.OutOrStdout(), handlers.LogsResponse{
					File:     file,
					Count:    len(result.Records),
					Logs:     result.Records,
					Degraded: result.Degraded(),
				})
			}

			out := cmd.OutOrStdout()
			for _, r := range result.Records {
				if r.Raw == "" {
					fmt.Fprintln(out, r.Message)
					continue
				}
				fmt.Fprintln(out, r.Raw)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&filter.LineLimit, "lines", "n", 0, "tail window size (default: default_lines)")
	cmd.Flags().StringVarP(&filter.Search, "search", "s", "", "keep lines containing this text")
	cmd.Flags().StringVarP(&filter.Level, "level", "l", "", "keep lines containing this level keyword")
	return cmd
}

func newStatsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the log files under the root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			st, err := svc.Stats()
			if err != nil {
				return err
			}

			if opts.json {
				return writeJSON(cmd.OutOrStdout(), st)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Files:      %d\n", st.FileCount)
			fmt.Fprintf(out, "Total size: %d bytes (%.2f MB)\n", st.TotalBytes, st.TotalMegabytes)
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
