// Command machi resolves, charts and serves flow definition files.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/machi/internal/logging"
	"github.com/aretw0/machi/pkg/loader"
	"github.com/spf13/cobra"
)

// logger is set up by the root command before any subcommand runs.
var logger = logging.NewNop()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "machi",
		Short: "machi resolves declarative flows",
		Long: `machi loads a flow definition file and tells which entry a context is on.
It also renders the flow as a Mermaid chart and serves sessions over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetString("log-level")
			if !cmd.Flags().Changed("log-level") {
				if env, ok := os.LookupEnv("MACHI_LOG_LEVEL"); ok {
					raw = env
				}
			}
			level, err := logging.ParseLevel(raw)
			if err != nil {
				return err
			}
			logger = logging.New(level)
			slog.SetDefault(logger)
			return nil
		},
	}
	root.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error); defaults to $MACHI_LOG_LEVEL")

	root.AddCommand(
		newResolveCmd(),
		newGraphCmd(),
		newValidateCmd(),
		newSchemaCmd(),
		newServeCmd(),
		newVersionCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func loadFlow(path string) (*loader.Definition[any], error) {
	def, err := loader.LoadFile[any](path)
	if err != nil {
		return nil, err
	}
	logger.Debug("flow loaded", "path", path, "name", def.Name, "conditions", len(def.Conditions))
	return def, nil
}

func printProblems(cmd *cobra.Command, err error) {
	problems := loader.ValidationErrors(err)
	if len(problems) == 0 {
		return
	}
	for _, p := range problems {
		fmt.Fprintf(cmd.ErrOrStderr(), "  - %v\n", p)
	}
}
