package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/machi"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of machi",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "machi version %s\n", strings.TrimSpace(machi.Version))
		},
	}
	return cmd
}
