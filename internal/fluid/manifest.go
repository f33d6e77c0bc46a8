package fluid

import (
	"errors"
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// DatasetRequest describes the objects created by the create-dataset flow.
type DatasetRequest struct {
	Name        string
	Namespace   string
	Description string
	Labels      map[string]string
	Mounts      []Mount

	// RuntimeKind is optional; when set a runtime with the dataset's name is
	// created alongside it.
	RuntimeKind Kind
	Replicas    int64
	Tiers       []Tier

	// DataLoad is optional.
	DataLoad *DataLoadRequest
}

// Tier is one tieredstore level of a runtime.
type Tier struct {
	MediumType string
	Path       string
	Quota      string
}

// DataLoadRequest describes a DataLoad bound to a dataset.
type DataLoadRequest struct {
	Name         string
	LoadMetadata bool
	Targets      []LoadTarget
	Policy       string
	Schedule     string
}

var defaultTier = Tier{MediumType: "MEM", Quota: "2Gi"}

// Validate checks the fields every manifest needs.
func (r DatasetRequest) Validate() error {
	var errs []error
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if strings.TrimSpace(r.Namespace) == "" {
		errs = append(errs, errors.New("namespace is required"))
	}
	if r.RuntimeKind != "" && !r.RuntimeKind.IsRuntime() {
		errs = append(errs, fmt.Errorf("%w: %q is not a runtime", ErrUnknownKind, r.RuntimeKind))
	}
	for i, m := range r.Mounts {
		if strings.TrimSpace(m.MountPoint) == "" {
			errs = append(errs, fmt.Errorf("mount %d: mountPoint is required", i))
		}
	}
	return errors.Join(errs...)
}

// Manifests builds the Dataset, the optional runtime and the optional
// DataLoad, in creation order.
func (r DatasetRequest) Manifests() ([]*unstructured.Unstructured, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	out := []*unstructured.Unstructured{NewDatasetManifest(r)}
	if r.RuntimeKind != "" {
		out = append(out, NewRuntimeManifest(r))
	}
	if r.DataLoad != nil {
		out = append(out, NewDataLoadManifest(r.Name, r.Namespace, *r.DataLoad))
	}
	return out, nil
}

// NewDatasetManifest builds the Dataset object.
func NewDatasetManifest(r DatasetRequest) *unstructured.Unstructured {
	mounts := make([]any, 0, len(r.Mounts))
	for _, m := range r.Mounts {
		entry := map[string]any{"mountPoint": m.MountPoint}
		if m.Name != "" {
			entry["name"] = m.Name
		}
		if m.Path != "" {
			entry["path"] = m.Path
		}
		if m.ReadOnly {
			entry["readOnly"] = true
		}
		if m.Shared {
			entry["shared"] = true
		}
		mounts = append(mounts, entry)
	}
	spec := map[string]any{"mounts": mounts}
	if r.RuntimeKind != "" {
		spec["runtimes"] = []any{map[string]any{"name": r.Name, "namespace": r.Namespace}}
	}

	obj := newObject(KindDataset, r.Name, r.Namespace)
	obj.Object["spec"] = spec
	if len(r.Labels) > 0 {
		obj.SetLabels(r.Labels)
	}
	if r.Description != "" {
		obj.SetAnnotations(map[string]string{descriptionAnnotation: r.Description})
	}
	return obj
}

// NewRuntimeManifest builds the runtime object that serves the dataset.
func NewRuntimeManifest(r DatasetRequest) *unstructured.Unstructured {
	replicas := r.Replicas
	if replicas <= 0 {
		replicas = 1
	}
	tiers := r.Tiers
	if len(tiers) == 0 {
		tiers = []Tier{defaultTier}
	}
	levels := make([]any, 0, len(tiers))
	for i, t := range tiers {
		level := map[string]any{
			"level":      int64(i),
			"mediumtype": t.MediumType,
			"quota":      t.Quota,
		}
		if t.Path != "" {
			level["path"] = t.Path
		}
		levels = append(levels, level)
	}

	obj := newObject(r.RuntimeKind, r.Name, r.Namespace)
	obj.Object["spec"] = map[string]any{
		"replicas":    replicas,
		"tieredstore": map[string]any{"levels": levels},
	}
	return obj
}

// NewDataLoadManifest builds a DataLoad targeting the named dataset.
func NewDataLoadManifest(dataset, namespace string, r DataLoadRequest) *unstructured.Unstructured {
	name := r.Name
	if name == "" {
		name = dataset + "-dataload"
	}
	policy := r.Policy
	if policy == "" {
		policy = "Once"
	}
	targets := make([]any, 0, len(r.Targets))
	for _, t := range r.Targets {
		entry := map[string]any{"path": t.Path}
		if t.Replicas != "" && t.Replicas != Placeholder {
			entry["replicas"] = t.Replicas
		}
		targets = append(targets, entry)
	}
	spec := map[string]any{
		"dataset":      map[string]any{"name": dataset, "namespace": namespace},
		"loadMetadata": r.LoadMetadata,
		"target":       targets,
		"policy":       policy,
	}
	if r.Schedule != "" {
		spec["schedule"] = r.Schedule
	}

	obj := newObject(KindDataLoad, name, namespace)
	obj.Object["spec"] = spec
	return obj
}

func newObject(kind Kind, name, namespace string) *unstructured.Unstructured {
	obj := &unstructured.Unstructured{Object: map[string]any{}}
	obj.SetAPIVersion(kind.APIVersion())
	obj.SetKind(string(kind))
	obj.SetName(name)
	obj.SetNamespace(namespace)
	return obj
}
