package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

func newApplyCommand(cli *CLI) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "apply -f FILE",
		Short: "Create the Fluid resources in a YAML file (- reads stdin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("open manifest: %w", err)
				}
				defer f.Close()
				in = f
			}
			objs, err := decodeManifests(in)
			if err != nil {
				return err
			}
			return cli.withSession(cmd, func(s *session) error {
				return createAll(cmd.Context(), s.client, objs, s.namespace(), cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().StringVarP(&file, "filename", "f", "", "manifest file, or - for stdin")
	_ = cmd.MarkFlagRequired("filename")
	return cmd
}

// decodeManifests reads a multi-document YAML stream. Empty documents are
// skipped.
func decodeManifests(r io.Reader) ([]*unstructured.Unstructured, error) {
	dec := yaml.NewDecoder(r)
	var out []*unstructured.Unstructured
	for i := 1; ; i++ {
		var doc map[string]any
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode document %d: %w", i, err)
		}
		if len(doc) == 0 {
			continue
		}
		// Round-trip through JSON so numbers become int64, which is what
		// unstructured content must hold.
		data, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		obj := &unstructured.Unstructured{}
		if err := obj.UnmarshalJSON(data); err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		out = append(out, obj)
	}
	if len(out) == 0 {
		return nil, errors.New("no objects found in manifest")
	}
	return out, nil
}

// createAll submits every object in order, defaulting the namespace. It keeps
// going after a failure and reports all of them.
func createAll(ctx context.Context, c cluster, objs []*unstructured.Unstructured, namespace string, out io.Writer) error {
	var errs []error
	for _, obj := range objs {
		if obj.GetNamespace() == "" {
			obj.SetNamespace(namespace)
		}
		created, err := c.Create(ctx, obj)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(out, "%s/%s created\n", strings.ToLower(created.GetKind()), created.GetName())
	}
	return errors.Join(errs...)
}
