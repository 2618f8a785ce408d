package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"logviewer/utils"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "logviewer %s\n", utils.Version)
		},
	}
}
