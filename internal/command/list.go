package command

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newListCommand(cli *CLI) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:     "list [KIND]",
		Aliases: []string{"ls"},
		Short:   "Print the resources of one kind once",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			return cli.withSession(cmd, func(s *session) error {
				kind, err := kindArg(args, s.scope)
				if err != nil {
					return err
				}
				scope := s.scope
				scope.Kind = kind
				records, err := s.client.List(cmd.Context(), scope)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if output == outputTable {
					return printTable(out, kind, records, time.Now())
				}
				objs := make([]map[string]any, 0, len(records))
				for _, rec := range records {
					objs = append(objs, rec.Object)
				}
				return printObjects(out, output, objs, true)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, fmt.Sprintf("output format: %s, %s or %s", outputTable, outputYAML, outputJSON))
	return cmd
}
