package kube

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	kubefake "k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	"github.com/five82/fluidboard/internal/fluid"
)

func newObject(kind fluid.Kind, namespace, name, uid string) *unstructured.Unstructured {
	obj := &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": kind.APIVersion(),
		"kind":       string(kind),
		"metadata": map[string]any{
			"name":      name,
			"namespace": namespace,
			"uid":       uid,
		},
	}}
	return obj
}

func newFakeClient(t *testing.T, objects ...runtime.Object) *Client {
	t.Helper()
	listKinds := map[schema.GroupVersionResource]string{}
	for _, k := range fluid.AllKinds() {
		listKinds[k.GVR()] = string(k) + "List"
	}
	dyn := dynamicfake.NewSimpleDynamicClientWithCustomListKinds(runtime.NewScheme(), listKinds, objects...)
	core := kubefake.NewSimpleClientset(
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "team-b"}},
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "default"}},
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "team-a"}},
	)
	return NewClientFromInterfaces(dyn, core, nil, nil, logr.Discard())
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestClient_ListDecodesAndSorts(t *testing.T) {
	c := newFakeClient(t,
		newObject(fluid.KindDataset, "team-b", "logs", "u3"),
		newObject(fluid.KindDataset, "team-a", "zeta", "u2"),
		newObject(fluid.KindDataset, "team-a", "alpha", "u1"),
		newObject(fluid.KindAlluxioRuntime, "team-a", "alpha", "u4"),
	)
	ctx := testContext(t)

	all, err := c.List(ctx, fluid.Scope{Kind: fluid.KindDataset})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	got := fluid.IDs(all)
	want := []string{"u1", "u2", "u3"}
	if len(got) != len(want) {
		t.Fatalf("IDs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("IDs = %v, want %v", got, want)
		}
	}

	scoped, err := c.List(ctx, fluid.Scope{Namespace: "team-b", Kind: fluid.KindDataset})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(scoped) != 1 || scoped[0].Name != "logs" {
		t.Fatalf("namespaced List = %#v", scoped)
	}

	runtimes, err := c.List(ctx, fluid.Scope{Kind: fluid.KindAlluxioRuntime})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(runtimes) != 1 || runtimes[0].Runtime == nil || runtimes[0].Runtime.Type != "Alluxio" {
		t.Fatalf("runtime List = %#v", runtimes)
	}
}

func TestClient_CreateGetDelete(t *testing.T) {
	c := newFakeClient(t)
	ctx := testContext(t)

	objs, err := fluid.DatasetRequest{Name: "imagenet", Namespace: "ml", RuntimeKind: fluid.KindJindoRuntime}.Manifests()
	if err != nil {
		t.Fatalf("Manifests returned error: %v", err)
	}
	for _, obj := range objs {
		if _, err := c.Create(ctx, obj); err != nil {
			t.Fatalf("Create(%s) returned error: %v", obj.GetKind(), err)
		}
	}

	got, err := c.Get(ctx, fluid.KindJindoRuntime, "ml", "imagenet")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.GetKind() != "JindoRuntime" {
		t.Fatalf("Get kind = %q", got.GetKind())
	}

	if err := c.Delete(ctx, fluid.KindDataset, "ml", "imagenet"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := c.Get(ctx, fluid.KindDataset, "ml", "imagenet"); err == nil {
		t.Fatal("Get after Delete succeeded")
	}
}

func TestClient_CreateRejectsForeignObjects(t *testing.T) {
	c := newFakeClient(t)
	ctx := testContext(t)

	pod := &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": "v1",
		"kind":       "Pod",
		"metadata":   map[string]any{"name": "p", "namespace": "default"},
	}}
	if _, err := c.Create(ctx, pod); !errors.Is(err, fluid.ErrUnknownKind) {
		t.Fatalf("Create(Pod) error = %v, want ErrUnknownKind", err)
	}

	wrongGroup := newObject(fluid.KindDataset, "default", "d", "")
	wrongGroup.SetAPIVersion("data.fluid.io/v1beta1")
	if _, err := c.Create(ctx, wrongGroup); !errors.Is(err, fluid.ErrUnknownKind) {
		t.Fatalf("Create(v1beta1) error = %v, want ErrUnknownKind", err)
	}

	noNamespace := newObject(fluid.KindDataset, "", "d", "")
	if _, err := c.Create(ctx, noNamespace); err == nil {
		t.Fatal("Create without namespace succeeded")
	}
}

func TestClient_Namespaces(t *testing.T) {
	c := newFakeClient(t)
	names, err := c.Namespaces(testContext(t))
	if err != nil {
		t.Fatalf("Namespaces returned error: %v", err)
	}
	want := []string{"default", "team-a", "team-b"}
	if len(names) != len(want) {
		t.Fatalf("Namespaces = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Namespaces = %v, want %v", names, want)
		}
	}
}

func coreEvent(namespace, name, uid, reason string, last time.Time) *corev1.Event {
	return &corev1.Event{
		ObjectMeta:     metav1.ObjectMeta{Name: name, Namespace: namespace},
		InvolvedObject: corev1.ObjectReference{Kind: "Dataset", Namespace: namespace, UID: types.UID(uid)},
		Type:           corev1.EventTypeNormal,
		Reason:         reason,
		Message:        reason + " message\n",
		Source:         corev1.EventSource{Component: "dataset-controller"},
		Count:          1,
		LastTimestamp:  metav1.NewTime(last),
	}
}

func TestClient_EventsFiltersAndSorts(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	warning := coreEvent("ml", "e2", "u1", "SyncFailed", base.Add(time.Minute))
	warning.Type = corev1.EventTypeWarning
	warning.Count = 4
	core := kubefake.NewSimpleClientset(
		coreEvent("ml", "e1", "u1", "Bound", base),
		warning,
		coreEvent("ml", "e3", "u2", "Other", base.Add(time.Hour)),
	)
	c := NewClientFromInterfaces(nil, core, nil, nil, logr.Discard())

	events, err := c.Events(testContext(t), "ml", "u1")
	if err != nil {
		t.Fatalf("Events returned error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Events = %+v, want 2 for u1", events)
	}
	if events[0].Reason != "SyncFailed" || !events[0].IsWarning() || events[0].Count != 4 {
		t.Fatalf("newest event = %+v", events[0])
	}
	if events[1].Reason != "Bound" || events[1].Message != "Bound message" || events[1].Source != "dataset-controller" {
		t.Fatalf("oldest event = %+v", events[1])
	}

	var selector string
	for _, action := range core.Actions() {
		if list, ok := action.(k8stesting.ListAction); ok && action.GetResource().Resource == "events" {
			selector = list.GetListRestrictions().Fields.String()
		}
	}
	if selector != "involvedObject.uid=u1" {
		t.Fatalf("field selector = %q", selector)
	}
}

func TestClient_EventsRequiresUID(t *testing.T) {
	c := newFakeClient(t)
	if _, err := c.Events(testContext(t), "ml", " "); err == nil {
		t.Fatal("Events without uid succeeded")
	}
}

func TestParseBaseURL(t *testing.T) {
	u, err := parseBaseURL("10.0.0.1:6443")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "https" || u.Host != "10.0.0.1:6443" {
		t.Fatalf("url = %q", u.String())
	}

	u, err = parseBaseURL("https://rancher.example.com/k8s/clusters/c-1/?x=1#f")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "/k8s/clusters/c-1" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	if _, err := parseBaseURL(" "); err == nil {
		t.Fatal("parseBaseURL(empty) succeeded")
	}
}
