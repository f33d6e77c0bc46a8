package fluid

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Placeholder is rendered for values the payload did not carry.
const Placeholder = "-"

const descriptionAnnotation = "kubesphere.io/description"

// Record is the normalized form of one Fluid object. It is produced once at
// the API boundary so nothing downstream has to probe raw payload paths.
type Record struct {
	ID          string
	Kind        Kind
	Name        string
	Namespace   string
	Phase       string
	Created     time.Time
	Description string
	Conditions  []Condition

	// Exactly one of these is set, matching Kind.
	Dataset  *DatasetInfo
	Runtime  *RuntimeInfo
	DataLoad *DataLoadInfo

	// Object is the raw payload, kept for YAML rendering.
	Object map[string]any
}

// Condition mirrors a status condition.
type Condition struct {
	Type               string
	Status             string
	Reason             string
	Message            string
	LastTransitionTime string
}

// DatasetInfo captures the dataset fields the console shows.
type DatasetInfo struct {
	UfsTotal     string
	FileNum      string
	HCFSEndpoint string
	Cache        CacheStates
	Mounts       []Mount
	Runtimes     []RuntimeRef
}

// CacheStates mirrors status.cacheStates.
type CacheStates struct {
	Capacity   string
	Cached     string
	Percentage string
	HitRatio   string
}

// Mount is one entry of spec.mounts.
type Mount struct {
	Name       string
	MountPoint string
	Path       string
	ReadOnly   bool
	Shared     bool
}

// RuntimeRef is one entry of status.runtimes / spec.runtimes.
type RuntimeRef struct {
	Name           string
	Namespace      string
	Type           string
	Category       string
	MasterReplicas string
}

// RuntimeInfo captures the runtime fields the console shows.
type RuntimeInfo struct {
	Type           string
	MasterReplicas string
	WorkerReplicas string
	Cache          CacheStates
}

// DataLoadInfo captures the dataload fields the console shows.
type DataLoadInfo struct {
	DatasetName      string
	DatasetNamespace string
	Targets          []LoadTarget
	LoadMetadata     bool
	Policy           string
	Duration         string
}

// LoadTarget is one entry of spec.target.
type LoadTarget struct {
	Path     string
	Replicas string
}

// ObjectID returns the identity used for selection and change events:
// the UID when present, otherwise namespace/name/kind.
func ObjectID(uid, namespace, name string, kind Kind) string {
	if uid = strings.TrimSpace(uid); uid != "" {
		return uid
	}
	return fmt.Sprintf("%s/%s/%s", namespace, name, kind)
}

// Decode normalizes an unstructured object of the given kind.
func Decode(kind Kind, obj *unstructured.Unstructured) Record {
	raw := obj.Object
	rec := Record{
		ID:          ObjectID(string(obj.GetUID()), obj.GetNamespace(), obj.GetName(), kind),
		Kind:        kind,
		Name:        obj.GetName(),
		Namespace:   obj.GetNamespace(),
		Created:     obj.GetCreationTimestamp().Time,
		Description: obj.GetAnnotations()[descriptionAnnotation],
		Conditions:  decodeConditions(raw),
		Object:      raw,
	}

	switch {
	case kind == KindDataset:
		rec.Phase = firstString(raw, []string{"status", "phase"})
		rec.Dataset = decodeDataset(raw)
	case kind == KindDataLoad:
		rec.Phase = firstString(raw, []string{"status", "phase"})
		rec.DataLoad = decodeDataLoad(raw)
	case kind.IsRuntime():
		rec.Phase = firstString(raw, []string{"status", "phase"}, []string{"status", "state"})
		rec.Runtime = decodeRuntime(kind, raw)
	}
	if rec.Phase == "" {
		rec.Phase = Placeholder
	}
	return rec
}

// DecodeList normalizes every item and orders them by namespace, then name.
func DecodeList(kind Kind, list *unstructured.UnstructuredList) []Record {
	if list == nil || len(list.Items) == 0 {
		return nil
	}
	records := make([]Record, 0, len(list.Items))
	for i := range list.Items {
		records = append(records, Decode(kind, &list.Items[i]))
	}
	SortRecords(records)
	return records
}

// SortRecords orders records by namespace, then name.
func SortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Namespace != records[j].Namespace {
			return records[i].Namespace < records[j].Namespace
		}
		return records[i].Name < records[j].Name
	})
}

// IDs returns the identifiers of records in order.
func IDs(records []Record) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}

func decodeDataset(raw map[string]any) *DatasetInfo {
	info := &DatasetInfo{
		UfsTotal:     orPlaceholder(firstString(raw, []string{"status", "ufsTotal"})),
		FileNum:      orPlaceholder(firstString(raw, []string{"status", "fileNum"})),
		HCFSEndpoint: firstString(raw, []string{"status", "hcfs", "endpoint"}),
		Cache:        decodeCache(raw, false),
	}
	for _, m := range objectSlice(raw, "spec", "mounts") {
		info.Mounts = append(info.Mounts, Mount{
			Name:       firstString(m, []string{"name"}),
			MountPoint: firstString(m, []string{"mountPoint"}),
			Path:       firstString(m, []string{"path"}),
			ReadOnly:   boolField(m, "readOnly"),
			Shared:     boolField(m, "shared"),
		})
	}
	refs := objectSlice(raw, "status", "runtimes")
	if len(refs) == 0 {
		refs = objectSlice(raw, "spec", "runtimes")
	}
	for _, r := range refs {
		info.Runtimes = append(info.Runtimes, RuntimeRef{
			Name:           firstString(r, []string{"name"}),
			Namespace:      firstString(r, []string{"namespace"}),
			Type:           firstString(r, []string{"type"}),
			Category:       firstString(r, []string{"category"}),
			MasterReplicas: orPlaceholder(firstScalar(r, []string{"masterReplicas"})),
		})
	}
	return info
}

func decodeRuntime(kind Kind, raw map[string]any) *RuntimeInfo {
	return &RuntimeInfo{
		Type:           kind.DisplayName(),
		MasterReplicas: orPlaceholder(firstScalar(raw, []string{"spec", "master", "replicas"}, []string{"spec", "replicas"})),
		WorkerReplicas: orPlaceholder(firstScalar(raw, []string{"spec", "worker", "replicas"}, []string{"spec", "replicas"})),
		Cache:          decodeCache(raw, true),
	}
}

// decodeCache reads status.cacheStates, optionally falling back to the
// flattened status fields some runtimes publish.
func decodeCache(raw map[string]any, flatFallback bool) CacheStates {
	paths := func(field string) [][]string {
		p := [][]string{{"status", "cacheStates", field}}
		if flatFallback {
			p = append(p, []string{"status", field})
		}
		return p
	}
	pct := firstString(raw, paths("cachedPercentage")...)
	if pct == "" && flatFallback {
		pct = "0%"
	}
	return CacheStates{
		Capacity:   orPlaceholder(firstString(raw, paths("cacheCapacity")...)),
		Cached:     orPlaceholder(firstString(raw, paths("cached")...)),
		Percentage: orPlaceholder(pct),
		HitRatio:   orPlaceholder(firstString(raw, paths("cacheHitRatio")...)),
	}
}

func decodeDataLoad(raw map[string]any) *DataLoadInfo {
	info := &DataLoadInfo{
		DatasetName:      orPlaceholder(firstString(raw, []string{"spec", "dataset", "name"})),
		DatasetNamespace: firstString(raw, []string{"spec", "dataset", "namespace"}),
		LoadMetadata:     boolField(raw, "spec", "loadMetadata"),
		Policy:           firstString(raw, []string{"spec", "policy"}),
		Duration:         orPlaceholder(firstString(raw, []string{"status", "duration"})),
	}
	for _, t := range objectSlice(raw, "spec", "target") {
		info.Targets = append(info.Targets, LoadTarget{
			Path:     firstString(t, []string{"path"}),
			Replicas: orPlaceholder(firstScalar(t, []string{"replicas"})),
		})
	}
	return info
}

func decodeConditions(raw map[string]any) []Condition {
	items := objectSlice(raw, "status", "conditions")
	if len(items) == 0 {
		return nil
	}
	out := make([]Condition, 0, len(items))
	for _, c := range items {
		out = append(out, Condition{
			Type:               firstString(c, []string{"type"}),
			Status:             firstString(c, []string{"status"}),
			Reason:             firstString(c, []string{"reason"}),
			Message:            firstString(c, []string{"message"}),
			LastTransitionTime: firstString(c, []string{"lastTransitionTime"}),
		})
	}
	return out
}

// firstString returns the first non-empty string found at any of paths.
func firstString(obj map[string]any, paths ...[]string) string {
	for _, p := range paths {
		if v, ok, err := unstructured.NestedString(obj, p...); err == nil && ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// firstScalar is firstString for fields that may be numbers or strings.
func firstScalar(obj map[string]any, paths ...[]string) string {
	for _, p := range paths {
		v, ok, err := unstructured.NestedFieldNoCopy(obj, p...)
		if err != nil || !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case string:
			if strings.TrimSpace(n) != "" {
				return n
			}
		case int64:
			return strconv.FormatInt(n, 10)
		case int:
			return strconv.Itoa(n)
		case int32:
			return strconv.FormatInt(int64(n), 10)
		case float64:
			return strconv.FormatFloat(n, 'f', -1, 64)
		}
	}
	return ""
}

func boolField(obj map[string]any, fields ...string) bool {
	v, ok, err := unstructured.NestedBool(obj, fields...)
	return err == nil && ok && v
}

func objectSlice(obj map[string]any, fields ...string) []map[string]any {
	items, ok, err := unstructured.NestedSlice(obj, fields...)
	if err != nil || !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func orPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return Placeholder
	}
	return v
}
