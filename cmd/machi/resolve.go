package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/machi"
	"github.com/aretw0/machi/internal/cli"
	"github.com/spf13/cobra"
)

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <flow.yaml>",
		Short: "Print the current entry of a context",
		Long: `Resolves the flow against a context read from --context and --set, and
prints the current entry. With --current the flow resumes after that entry.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contextPath, _ := cmd.Flags().GetString("context")
			sets, _ := cmd.Flags().GetStringArray("set")
			current, _ := cmd.Flags().GetString("current")
			asJSON, _ := cmd.Flags().GetBool("json")

			def, err := loadFlow(args[0])
			if err != nil {
				printProblems(cmd, err)
				return err
			}
			m, err := def.Machine(machi.WithLogger(logger), machi.WithLifecycleHooks(cli.DebugHooks(logger)))
			if err != nil {
				return err
			}
			data, err := cli.LoadContext(contextPath, sets)
			if err != nil {
				return err
			}

			res, err := m.ExecuteContext(cmd.Context(), data, current)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res.Outcome())
			}

			if res.Done() {
				fmt.Fprintln(out, "flow complete")
			} else {
				fmt.Fprintf(out, "entry: %s\n", res.Entry.Label())
				if res.Resumed {
					fmt.Fprintf(out, "resumed after: %s\n", current)
				}
			}
			if labels := res.EntryIDs(); len(labels) > 0 {
				fmt.Fprintf(out, "history: %s\n", strings.Join(labels, " > "))
			}
			return nil
		},
	}
	cmd.Flags().StringP("context", "c", "", "YAML or JSON file holding the context")
	cmd.Flags().StringArray("set", nil, "Context value as key=value (repeatable)")
	cmd.Flags().String("current", "", "Entry the caller is positioned on")
	cmd.Flags().Bool("json", false, "Print the outcome as JSON")
	return cmd
}
