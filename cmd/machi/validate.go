package main

import (
	"fmt"
	"os"

	"github.com/aretw0/machi/pkg/loader"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <flow.yaml>...",
		Short: "Check flow files",
		Long:  `Validates each file against the flow schema and compiles its conditions and tree.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				if err := validateFile(path); err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: invalid\n", path)
					if len(loader.ValidationErrors(err)) == 0 {
						fmt.Fprintf(cmd.ErrOrStderr(), "  - %v\n", err)
					}
					printProblems(cmd, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d flow files are invalid", failed, len(args))
			}
			return nil
		},
	}
	return cmd
}

func validateFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	def, err := loader.Load[any](raw)
	if err != nil {
		return err
	}
	_, err = def.Machine()
	return err
}
