package main

import (
	"fmt"

	"github.com/aretw0/machi"
	"github.com/aretw0/machi/internal/cli"
	"github.com/spf13/cobra"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph <flow.yaml>",
		Short: "Export the flow as a Mermaid chart",
		Long: `Prints a Mermaid flowchart of the flow. With --paths only the routes to
the named entry or fork are drawn. With --context the resolution of that
context is highlighted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			themeName, _ := cmd.Flags().GetString("theme")
			directionName, _ := cmd.Flags().GetString("direction")
			paths, _ := cmd.Flags().GetString("paths")
			contextPath, _ := cmd.Flags().GetString("context")
			sets, _ := cmd.Flags().GetStringArray("set")

			theme, err := machi.ParseTheme(themeName)
			if err != nil {
				return err
			}
			direction, err := machi.ParseDirection(directionName)
			if err != nil {
				return err
			}

			def, err := loadFlow(args[0])
			if err != nil {
				printProblems(cmd, err)
				return err
			}
			m, err := def.Machine(machi.WithLogger(logger))
			if err != nil {
				return err
			}

			opts := []machi.ChartOption{machi.WithChartTheme(theme), machi.WithChartDirection(direction)}
			if paths != "" {
				fmt.Fprint(cmd.OutOrStdout(), m.MermaidPathways(paths, opts...))
				return nil
			}
			if contextPath != "" || len(sets) > 0 {
				data, err := cli.LoadContext(contextPath, sets)
				if err != nil {
					return err
				}
				res, err := m.Execute(data, "")
				if err != nil {
					return err
				}
				opts = append(opts, m.Highlight(res))
			}
			fmt.Fprint(cmd.OutOrStdout(), m.Mermaid(opts...))
			return nil
		},
	}
	cmd.Flags().String("theme", "dark", "Chart theme (dark, light)")
	cmd.Flags().String("direction", "vertical", "Chart layout (vertical, horizontal)")
	cmd.Flags().String("paths", "", "Only draw the routes to this entry or fork")
	cmd.Flags().StringP("context", "c", "", "Highlight the resolution of this context file")
	cmd.Flags().StringArray("set", nil, "Context value as key=value (repeatable)")
	return cmd
}
