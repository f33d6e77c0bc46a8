package fluid

import (
	"errors"
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Group and Version shared by every Fluid resource.
const (
	Group   = "data.fluid.io"
	Version = "v1alpha1"
)

// ErrUnknownKind is returned when a name does not match any Fluid resource kind.
var ErrUnknownKind = errors.New("unknown fluid kind")

// Kind identifies one Fluid resource type.
type Kind string

const (
	KindDataset         Kind = "Dataset"
	KindDataLoad        Kind = "DataLoad"
	KindAlluxioRuntime  Kind = "AlluxioRuntime"
	KindJindoRuntime    Kind = "JindoRuntime"
	KindJuiceFSRuntime  Kind = "JuiceFSRuntime"
	KindEFCRuntime      Kind = "EFCRuntime"
	KindThinRuntime     Kind = "ThinRuntime"
	KindVineyardRuntime Kind = "VineyardRuntime"
	KindGooseFSRuntime  Kind = "GooseFSRuntime"
)

// RuntimeKinds lists the runtime kinds in display order.
var RuntimeKinds = []Kind{
	KindAlluxioRuntime,
	KindJindoRuntime,
	KindJuiceFSRuntime,
	KindEFCRuntime,
	KindThinRuntime,
	KindVineyardRuntime,
	KindGooseFSRuntime,
}

// AllKinds lists every supported kind.
func AllKinds() []Kind {
	kinds := []Kind{KindDataset}
	kinds = append(kinds, RuntimeKinds...)
	return append(kinds, KindDataLoad)
}

// IsRuntime reports whether k is one of the runtime kinds.
func (k Kind) IsRuntime() bool {
	for _, rk := range RuntimeKinds {
		if rk == k {
			return true
		}
	}
	return false
}

// Plural returns the REST resource name, e.g. "alluxioruntimes".
func (k Kind) Plural() string {
	return strings.ToLower(string(k)) + "s"
}

// DisplayName returns the short label used in tables ("Alluxio" for AlluxioRuntime).
func (k Kind) DisplayName() string {
	if k.IsRuntime() {
		return strings.TrimSuffix(string(k), "Runtime")
	}
	return string(k)
}

// GVR returns the GroupVersionResource for the kind.
func (k Kind) GVR() schema.GroupVersionResource {
	return schema.GroupVersionResource{Group: Group, Version: Version, Resource: k.Plural()}
}

// APIVersion returns "data.fluid.io/v1alpha1".
func (k Kind) APIVersion() string {
	return Group + "/" + Version
}

// CollectionPath returns the REST path of the collection, optionally scoped to a namespace.
func (k Kind) CollectionPath(namespace string) string {
	if strings.TrimSpace(namespace) == "" {
		return fmt.Sprintf("/apis/%s/%s/%s", Group, Version, k.Plural())
	}
	return fmt.Sprintf("/apis/%s/%s/namespaces/%s/%s", Group, Version, namespace, k.Plural())
}

var kindAliases = map[string]Kind{
	"ds":       KindDataset,
	"dl":       KindDataLoad,
	"alluxio":  KindAlluxioRuntime,
	"jindo":    KindJindoRuntime,
	"juicefs":  KindJuiceFSRuntime,
	"efc":      KindEFCRuntime,
	"thin":     KindThinRuntime,
	"vineyard": KindVineyardRuntime,
	"goosefs":  KindGooseFSRuntime,
}

// ParseKind resolves a kind name, plural or short alias, case-insensitively.
func ParseKind(name string) (Kind, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return "", fmt.Errorf("%w: empty name", ErrUnknownKind)
	}
	if k, ok := kindAliases[key]; ok {
		return k, nil
	}
	for _, k := range AllKinds() {
		if key == strings.ToLower(string(k)) || key == k.Plural() {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
}
