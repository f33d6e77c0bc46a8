package fluid

import (
	"errors"
	"testing"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"Dataset", KindDataset},
		{"datasets", KindDataset},
		{"ds", KindDataset},
		{"DL", KindDataLoad},
		{"alluxio", KindAlluxioRuntime},
		{"juicefsruntimes", KindJuiceFSRuntime},
		{" ThinRuntime ", KindThinRuntime},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if err != nil {
			t.Fatalf("ParseKind(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseKindUnknown(t *testing.T) {
	for _, in := range []string{"", "pods", "runtime"} {
		if _, err := ParseKind(in); !errors.Is(err, ErrUnknownKind) {
			t.Fatalf("ParseKind(%q) error = %v, want ErrUnknownKind", in, err)
		}
	}
}

func TestKindResourceNames(t *testing.T) {
	if got := KindGooseFSRuntime.Plural(); got != "goosefsruntimes" {
		t.Fatalf("Plural = %q", got)
	}
	if got := KindGooseFSRuntime.DisplayName(); got != "GooseFS" {
		t.Fatalf("DisplayName = %q", got)
	}
	if got := KindDataLoad.DisplayName(); got != "DataLoad" {
		t.Fatalf("DisplayName = %q", got)
	}
	gvr := KindDataset.GVR()
	if gvr.Group != "data.fluid.io" || gvr.Version != "v1alpha1" || gvr.Resource != "datasets" {
		t.Fatalf("GVR = %#v", gvr)
	}
	if got := KindDataset.CollectionPath(""); got != "/apis/data.fluid.io/v1alpha1/datasets" {
		t.Fatalf("CollectionPath(all) = %q", got)
	}
	if got := KindDataLoad.CollectionPath("team-a"); got != "/apis/data.fluid.io/v1alpha1/namespaces/team-a/dataloads" {
		t.Fatalf("CollectionPath(ns) = %q", got)
	}
}

func TestAllKindsOrder(t *testing.T) {
	kinds := AllKinds()
	if kinds[0] != KindDataset || kinds[len(kinds)-1] != KindDataLoad {
		t.Fatalf("AllKinds = %v", kinds)
	}
	if len(kinds) != len(RuntimeKinds)+2 {
		t.Fatalf("AllKinds has %d entries", len(kinds))
	}
	for _, k := range RuntimeKinds {
		if !k.IsRuntime() {
			t.Fatalf("%s.IsRuntime() = false", k)
		}
	}
	if KindDataset.IsRuntime() {
		t.Fatal("Dataset reported as runtime")
	}
}

func TestScopeString(t *testing.T) {
	s := Scope{Cluster: "prod", Kind: KindDataset}
	if got := s.String(); got != "prod/*/datasets" {
		t.Fatalf("String = %q", got)
	}
	s.Namespace = "ml"
	if got := s.String(); got != "prod/ml/datasets" {
		t.Fatalf("String = %q", got)
	}
}

func TestParseEventType(t *testing.T) {
	for _, raw := range []string{"ADDED", "MODIFIED", "DELETED"} {
		if got, ok := ParseEventType(raw); !ok || string(got) != raw {
			t.Fatalf("ParseEventType(%q) = %q, %v", raw, got, ok)
		}
	}
	for _, raw := range []string{"BOOKMARK", "ERROR", "added", ""} {
		if _, ok := ParseEventType(raw); ok {
			t.Fatalf("ParseEventType(%q) accepted", raw)
		}
	}
}
