package command

import (
	"github.com/spf13/cobra"

	"github.com/five82/fluidboard/internal/fluid"
)

func newGetCommand(cli *CLI) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "get KIND NAME",
		Short: "Print one resource as YAML or JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == outputTable {
				output = outputYAML
			}
			if err := validateOutput(output); err != nil {
				return err
			}
			kind, err := fluid.ParseKind(args[0])
			if err != nil {
				return err
			}
			return cli.withSession(cmd, func(s *session) error {
				obj, err := s.client.Get(cmd.Context(), kind, s.namespace(), args[1])
				if err != nil {
					return err
				}
				return printObjects(cmd.OutOrStdout(), output, []map[string]any{obj.Object}, false)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputYAML, "output format: yaml or json")
	return cmd
}
