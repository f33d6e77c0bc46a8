package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/fluidboard/internal/fluid"
)

func newDeleteCommand(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "delete KIND NAME...",
		Short: "Delete resources by name",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := fluid.ParseKind(args[0])
			if err != nil {
				return err
			}
			return cli.withSession(cmd, func(s *session) error {
				return deleteAll(cmd.Context(), s.client, kind, s.namespace(), args[1:], cmd.OutOrStdout())
			})
		},
	}
}

func deleteAll(ctx context.Context, c cluster, kind fluid.Kind, namespace string, names []string, out io.Writer) error {
	var errs []error
	for _, name := range names {
		if err := c.Delete(ctx, kind, namespace, name); err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(out, "%s/%s deleted\n", strings.ToLower(string(kind)), name)
	}
	return errors.Join(errs...)
}
