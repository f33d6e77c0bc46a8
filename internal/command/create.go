package command

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/fluidboard/internal/fluid"
)

type createDatasetFlags struct {
	description  string
	mounts       []string
	readOnly     bool
	labels       map[string]string
	runtime      string
	replicas     int64
	tiers        []string
	preload      []string
	loadMetadata bool
	schedule     string
	dryRun       bool
}

func newCreateDatasetCommand(cli *CLI) *cobra.Command {
	f := &createDatasetFlags{}
	cmd := &cobra.Command{
		Use:   "create-dataset NAME",
		Short: "Create a Dataset with an optional runtime and preload DataLoad",
		Example: "  fluidboard create-dataset imagenet -n ml --mount s3://bucket/imagenet \\\n" +
			"    --runtime alluxio --tier MEM:/dev/shm:4Gi --preload /train",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.dryRun {
				req, err := f.request(args[0], namespaceOrDefault(cli.Options.Namespace))
				if err != nil {
					return err
				}
				return printManifests(cmd, req)
			}
			return cli.withSession(cmd, func(s *session) error {
				req, err := f.request(args[0], s.namespace())
				if err != nil {
					return err
				}
				objs, err := req.Manifests()
				if err != nil {
					return err
				}
				return createAll(cmd.Context(), s.client, objs, s.namespace(), cmd.OutOrStdout())
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.description, "description", "", "description annotation")
	flags.StringArrayVar(&f.mounts, "mount", nil, "mount point, optionally NAME=POINT (repeatable)")
	flags.BoolVar(&f.readOnly, "read-only", false, "mark every mount read-only")
	flags.StringToStringVar(&f.labels, "labels", nil, "labels as key=value pairs")
	flags.StringVar(&f.runtime, "runtime", "", "runtime kind to create alongside (alluxio, jindo, juicefs, ...)")
	flags.Int64Var(&f.replicas, "replicas", 1, "runtime worker replicas")
	flags.StringArrayVar(&f.tiers, "tier", nil, "tiered store level MEDIUM:PATH:QUOTA (repeatable)")
	flags.StringArrayVar(&f.preload, "preload", nil, "path to preload with a DataLoad (repeatable)")
	flags.BoolVar(&f.loadMetadata, "load-metadata", false, "load metadata before preloading")
	flags.StringVar(&f.schedule, "schedule", "", "cron schedule; makes the DataLoad Cron instead of Once")
	flags.BoolVar(&f.dryRun, "dry-run", false, "print the manifests instead of creating them")
	_ = cmd.MarkFlagRequired("mount")
	return cmd
}

func namespaceOrDefault(ns string) string {
	if ns == "" {
		return "default"
	}
	return ns
}

// request turns the flags into a DatasetRequest.
func (f *createDatasetFlags) request(name, namespace string) (fluid.DatasetRequest, error) {
	req := fluid.DatasetRequest{
		Name:        name,
		Namespace:   namespace,
		Description: f.description,
		Labels:      f.labels,
		Replicas:    f.replicas,
	}
	for _, raw := range f.mounts {
		m := fluid.Mount{MountPoint: raw, ReadOnly: f.readOnly}
		// NAME=POINT, where NAME holds neither ':' nor '/'.
		if key, point, ok := strings.Cut(raw, "="); ok && !strings.ContainsAny(key, ":/") {
			m.Name, m.MountPoint = key, point
		}
		req.Mounts = append(req.Mounts, m)
	}

	if f.runtime != "" {
		kind, err := fluid.ParseKind(f.runtime)
		if err != nil {
			return fluid.DatasetRequest{}, err
		}
		req.RuntimeKind = kind
	}
	for _, raw := range f.tiers {
		tier, err := parseTier(raw)
		if err != nil {
			return fluid.DatasetRequest{}, err
		}
		req.Tiers = append(req.Tiers, tier)
	}

	if len(f.preload) > 0 || f.loadMetadata {
		dl := &fluid.DataLoadRequest{LoadMetadata: f.loadMetadata}
		for _, p := range f.preload {
			dl.Targets = append(dl.Targets, fluid.LoadTarget{Path: p})
		}
		if f.schedule != "" {
			dl.Policy, dl.Schedule = "Cron", f.schedule
		}
		req.DataLoad = dl
	}
	return req, req.Validate()
}

// parseTier reads MEDIUM:PATH:QUOTA. PATH may be empty.
func parseTier(raw string) (fluid.Tier, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
		return fluid.Tier{}, fmt.Errorf("invalid tier %q, expected MEDIUM:PATH:QUOTA", raw)
	}
	return fluid.Tier{MediumType: strings.ToUpper(parts[0]), Path: parts[1], Quota: parts[2]}, nil
}

func printManifests(cmd *cobra.Command, req fluid.DatasetRequest) error {
	objs, err := req.Manifests()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for i, obj := range objs {
		if i > 0 {
			fmt.Fprintln(out, "---")
		}
		if err := printObjects(out, outputYAML, []map[string]any{obj.Object}, false); err != nil {
			return err
		}
	}
	return nil
}
