package command

import (
	"github.com/spf13/cobra"

	"github.com/five82/fluidboard/internal/app"
)

func newWatchCommand(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [KIND]",
		Short: "Follow one kind without the interactive board",
		Long: "Follow one kind without the interactive board. A line is printed for every\n" +
			"refresh and every change between live, reconnecting and polling modes.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.withSession(cmd, func(s *session) error {
				kind, err := kindArg(args, s.scope)
				if err != nil {
					return err
				}
				scope := s.scope
				scope.Kind = kind
				return app.WatchScope(cmd.Context(), s.client, scope, s.sync, cmd.OutOrStdout())
			})
		},
	}
}
