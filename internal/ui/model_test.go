package ui

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-logr/logr/testr"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/five82/fluidboard/internal/fluid"
	"github.com/five82/fluidboard/internal/livesync"
	"github.com/five82/fluidboard/internal/prefs"
	"github.com/five82/fluidboard/internal/state"
)

type fakeStream struct {
	events chan fluid.ChangeEvent
	once   sync.Once
}

func (s *fakeStream) Events() <-chan fluid.ChangeEvent { return s.events }

func (s *fakeStream) Close() error {
	s.once.Do(func() { close(s.events) })
	return nil
}

type fakeCluster struct {
	mu         sync.Mutex
	records    []fluid.Record
	listErr    error
	live       bool
	namespaces []string
	lists      []fluid.Scope
	deleted    []string
	events     map[string][]fluid.Event
	eventsErr  error
	eventsFor  []string
}

func (f *fakeCluster) List(_ context.Context, scope fluid.Scope) ([]fluid.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, scope)
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []fluid.Record
	for _, r := range f.records {
		if r.Kind != scope.Kind {
			continue
		}
		if scope.Namespace != "" && r.Namespace != scope.Namespace {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeCluster) Watch(context.Context, fluid.Scope) (livesync.Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.live {
		return nil, livesync.Permanent(errors.New("watch not served"))
	}
	return &fakeStream{events: make(chan fluid.ChangeEvent)}, nil
}

func (f *fakeCluster) Namespaces(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.namespaces), nil
}

func (f *fakeCluster) Delete(_ context.Context, kind fluid.Kind, namespace, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = slices.DeleteFunc(f.records, func(r fluid.Record) bool {
		return r.Kind == kind && r.Namespace == namespace && r.Name == name
	})
	f.deleted = append(f.deleted, namespace+"/"+name)
	return nil
}

func (f *fakeCluster) Events(_ context.Context, namespace, uid string) ([]fluid.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.eventsFor = append(f.eventsFor, namespace+"/"+uid)
	if f.eventsErr != nil {
		return nil, f.eventsErr
	}
	return slices.Clone(f.events[uid]), nil
}

func (f *fakeCluster) set(fn func(f *fakeCluster)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeCluster) lastScope() fluid.Scope {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists[len(f.lists)-1]
}

func record(kind fluid.Kind, namespace, name string) fluid.Record {
	obj := &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": kind.APIVersion(),
		"kind":       string(kind),
		"metadata": map[string]any{
			"name":      name,
			"namespace": namespace,
			"uid":       "uid-" + namespace + "-" + name,
		},
		"status": map[string]any{"phase": "Bound"},
	}}
	return fluid.Decode(kind, obj)
}

func datasets(namespace string, names ...string) []fluid.Record {
	out := make([]fluid.Record, 0, len(names))
	for _, n := range names {
		out = append(out, record(fluid.KindDataset, namespace, n))
	}
	return out
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return nm, cmd
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m, _ = update(t, m, keyPress(k))
	}
	return m
}

// run executes cmd and feeds what it produces back into the model, following
// any command Update returns. Batches run in order. Synchronizer waits are
// not followed past the first signal; pumpUntil drives those.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("command did not finish")
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			m = run(t, m, c)
		}
		return m
	}
	m, next := update(t, m, msg)
	if _, isSync := msg.(syncMsg); isSync {
		return m
	}
	return run(t, m, next)
}

// pumpUntil feeds synchronizer updates into the model until cond holds.
func pumpUntil(t *testing.T, m Model, cond func(Model) bool) Model {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond(m) {
		if time.Now().After(deadline) {
			t.Fatalf("condition not reached; status=%+v snapshot loaded=%v err=%v",
				m.status, m.snapshot.Loaded, m.snapshot.LastError)
		}
		if m.sync == nil {
			t.Fatal("no synchronizer open")
		}
		m = run(t, m, waitForSync(m.sync))
	}
	return m
}

func loaded(m Model) bool { return m.snapshot.Loaded }

// newTestModel opens a model sized for three rows per page.
func newTestModel(t *testing.T, fc *fakeCluster) Model {
	t.Helper()
	clusters := state.NewClusterStore(nil)
	clusters.SetClusters([]state.Cluster{{Name: "dev", Server: "https://dev:6443"}, {Name: "prod"}})

	m := New(Options{
		Clusters:  clusters,
		Connect:   func(string) (ClusterClient, error) { return fc, nil },
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
		Sync: livesync.Options{
			DebounceWindow: 5 * time.Millisecond,
			PollInterval:   time.Hour,
		},
		Logger: testr.New(t),
	})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 3 + listChrome})
	m = run(t, m, m.Init())
	return m
}

func TestModel_LoadsAndPaginates(t *testing.T) {
	fc := &fakeCluster{records: datasets("ml", "a", "b", "c", "d", "e", "f", "g")}
	m := newTestModel(t, fc)
	defer func() { m.Close() }()
	m = pumpUntil(t, m, loaded)

	if got := m.pageSize(); got != 3 {
		t.Fatalf("pageSize = %d, want 3", got)
	}
	if got := m.pageCount(); got != 3 {
		t.Fatalf("pageCount = %d, want 3", got)
	}
	if !strings.Contains(m.View(), "Page 1/3") {
		t.Fatalf("view missing page indicator:\n%s", m.View())
	}

	m = press(t, m, "l")
	if m.page != 1 {
		t.Fatalf("page = %d, want 1", m.page)
	}
	m = press(t, m, "G", "j")
	if m.page != 2 || m.cursor != 0 {
		t.Fatalf("page=%d cursor=%d, want page 2 cursor 0", m.page, m.cursor)
	}
	rec, _ := m.cursorRecord()
	if rec.Name != "g" {
		t.Fatalf("cursor record = %q, want g", rec.Name)
	}
	m = press(t, m, "l")
	if m.page != 2 {
		t.Fatalf("page moved past the end: %d", m.page)
	}
}

func TestModel_SearchFilters(t *testing.T) {
	fc := &fakeCluster{records: datasets("ml", "imagenet", "coco", "imagenet-mini")}
	m := newTestModel(t, fc)
	defer func() { m.Close() }()
	m = pumpUntil(t, m, loaded)

	m, _ = update(t, m, keyPress("/"))
	if !m.searching {
		t.Fatal("search not focused")
	}
	m = press(t, m, "i", "m", "a", "enter")
	if got := len(m.filtered()); got != 2 {
		t.Fatalf("filtered = %d records, want 2", got)
	}
	if !strings.Contains(m.View(), `filter: "ima"`) {
		t.Fatalf("view missing filter:\n%s", m.View())
	}

	m = press(t, m, "esc")
	if got := len(m.filtered()); got != 3 {
		t.Fatalf("filtered after clear = %d, want 3", got)
	}
}

func TestModel_SelectionFollowsRecordSet(t *testing.T) {
	fc := &fakeCluster{records: datasets("ml", "a", "b", "c", "d")}
	m := newTestModel(t, fc)
	defer func() { m.Close() }()
	m = pumpUntil(t, m, loaded)
	sel := m.selection()

	m = press(t, m, " ")
	if !sel.Has("uid-ml-a") {
		t.Fatalf("selection = %v, want a", sel.IDs())
	}
	if !strings.Contains(m.View(), "[-]") {
		t.Fatalf("header should show partial selection:\n%s", m.View())
	}

	m = press(t, m, "a")
	if sel.Len() != 3 || !strings.Contains(m.View(), "[x] NAME") {
		t.Fatalf("select page: selection = %v", sel.IDs())
	}
	m = press(t, m, "a")
	if sel.Len() != 0 {
		t.Fatalf("second toggle should deselect the page, got %v", sel.IDs())
	}

	m = press(t, m, "a")
	fc.set(func(f *fakeCluster) { f.records = datasets("ml", "a", "c", "d") })
	m = press(t, m, "r")
	// Reconcile runs right after the store update on the loop goroutine.
	m = pumpUntil(t, m, func(m Model) bool { return len(m.snapshot.Records) == 3 && !sel.Has("uid-ml-b") })

	want := []string{"uid-ml-a", "uid-ml-c"}
	if got := sel.IDs(); !slices.Equal(got, want) {
		t.Fatalf("selection after refresh = %v, want %v", got, want)
	}

	m = press(t, m, "x")
	if sel.Len() != 0 {
		t.Fatalf("clear left %v", sel.IDs())
	}
}

func TestModel_ErrorPlaceholderAndRetry(t *testing.T) {
	fc := &fakeCluster{listErr: errors.New("forbidden"), records: datasets("ml", "a")}
	m := newTestModel(t, fc)
	defer func() { m.Close() }()
	m = pumpUntil(t, m, func(m Model) bool { return m.snapshot.LastError != nil })

	view := m.View()
	if !strings.Contains(view, "Failed to load datasets") || !strings.Contains(view, "Press r to retry") {
		t.Fatalf("view missing error placeholder:\n%s", view)
	}
	if strings.Contains(view, "NAME") {
		t.Fatalf("table should be replaced by the placeholder:\n%s", view)
	}

	fc.set(func(f *fakeCluster) { f.listErr = nil })
	m = press(t, m, "r")
	m = pumpUntil(t, m, func(m Model) bool { return m.snapshot.Loaded && m.snapshot.LastError == nil })
	if !strings.Contains(m.View(), "NAME") {
		t.Fatalf("table not restored:\n%s", m.View())
	}
}

func TestModel_DeleteSelected(t *testing.T) {
	fc := &fakeCluster{records: datasets("ml", "a", "b", "c")}
	m := newTestModel(t, fc)
	defer func() { m.Close() }()
	m = pumpUntil(t, m, loaded)

	m = press(t, m, " ", "j", " ", "d")
	if m.mode != modeConfirmDelete {
		t.Fatalf("mode = %v, want confirm", m.mode)
	}
	if !strings.Contains(m.View(), "Delete 2 resources?") {
		t.Fatalf("confirm view:\n%s", m.View())
	}

	m, cmd := update(t, m, keyPress("y"))
	m = run(t, m, cmd)
	if !slices.Equal(fc.deleted, []string{"ml/a", "ml/b"}) {
		t.Fatalf("deleted = %v", fc.deleted)
	}
	if m.flash != "Deleted 2 resources" {
		t.Fatalf("flash = %q", m.flash)
	}
	m = pumpUntil(t, m, func(m Model) bool { return len(m.snapshot.Records) == 1 && m.selection().Len() == 0 })
	if !strings.Contains(m.View(), "1 datasets") {
		t.Fatalf("view:\n%s", m.View())
	}
}

func TestModel_DeleteCancel(t *testing.T) {
	fc := &fakeCluster{records: datasets("ml", "a")}
	m := newTestModel(t, fc)
	defer func() { m.Close() }()
	m = pumpUntil(t, m, loaded)

	m = press(t, m, "d", "n")
	if m.mode != modeList || len(fc.deleted) != 0 {
		t.Fatalf("mode=%v deleted=%v", m.mode, fc.deleted)
	}
}

func TestModel_NamespacePickerReopensScope(t *testing.T) {
	fc := &fakeCluster{
		records:    append(datasets("ml", "a"), datasets("web", "b", "c")...),
		namespaces: []string{"ml", "web"},
	}
	m := newTestModel(t, fc)
	defer func() { m.Close() }()
	m = pumpUntil(t, m, loaded)
	if len(m.namespaces) != 2 {
		t.Fatalf("namespaces = %v", m.namespaces)
	}
	first := m.sync

	m = press(t, m, "n")
	if m.mode != modePickNamespace || !strings.Contains(m.View(), "All namespaces") {
		t.Fatalf("picker not shown:\n%s", m.View())
	}
	m = press(t, m, "j", "j")
	m, cmd := update(t, m, keyPress("enter"))
	if m.sync == first {
		t.Fatal("scope change should open a new synchronizer")
	}
	if first.Status().State != livesync.StateIdle {
		t.Fatalf("old synchronizer state = %v, want idle", first.Status().State)
	}
	m = run(t, m, cmd)
	m = pumpUntil(t, m, loaded)

	if got := fc.lastScope(); got.Namespace != "web" {
		t.Fatalf("last list scope = %+v", got)
	}
	if len(m.snapshot.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(m.snapshot.Records))
	}
	p, _ := prefs.Load(m.prefsPath)
	if p.Namespace != "web" || p.Kind != "Dataset" {
		t.Fatalf("prefs = %+v", p)
	}
}

func TestModel_TabsAndRuntimeCycle(t *testing.T) {
	fc := &fakeCluster{records: []fluid.Record{record(fluid.KindJindoRuntime, "ml", "rt")}}
	m := newTestModel(t, fc)
	defer func() { m.Close() }()

	m = press(t, m, "2")
	if m.Kind() != fluid.KindAlluxioRuntime {
		t.Fatalf("kind = %v, want AlluxioRuntime", m.Kind())
	}
	m = press(t, m, "t")
	if m.Kind() != fluid.KindJindoRuntime {
		t.Fatalf("kind = %v, want JindoRuntime", m.Kind())
	}
	m = pumpUntil(t, m, loaded)
	if !strings.Contains(m.View(), "Jindo runtimes") {
		t.Fatalf("view:\n%s", m.View())
	}

	m = press(t, m, "3")
	if m.Kind() != fluid.KindDataLoad || m.Scope().Kind != fluid.KindDataLoad {
		t.Fatalf("kind = %v", m.Kind())
	}
}

func TestModel_ConnectivityIndicator(t *testing.T) {
	polling := &fakeCluster{records: datasets("ml", "a")}
	m := newTestModel(t, polling)
	m = pumpUntil(t, m, func(m Model) bool { return m.status.Polling })
	view := m.View()
	if !strings.Contains(view, "POLLING") || !strings.Contains(view, "refreshing every 1h0m0s") {
		t.Fatalf("polling view:\n%s", view)
	}
	m.Close()

	live := &fakeCluster{records: datasets("ml", "a"), live: true}
	m = newTestModel(t, live)
	defer func() { m.Close() }()
	m = pumpUntil(t, m, func(m Model) bool { return m.status.Connected() })
	if !strings.Contains(m.View(), "LIVE") {
		t.Fatalf("live view:\n%s", m.View())
	}
}

func TestModel_DetailAndYAML(t *testing.T) {
	fc := &fakeCluster{records: datasets("ml", "imagenet")}
	m := newTestModel(t, fc)
	defer func() { m.Close() }()
	m = pumpUntil(t, m, loaded)

	m = press(t, m, "enter")
	if m.mode != modeDetail {
		t.Fatalf("mode = %v, want detail", m.mode)
	}
	if !strings.Contains(m.View(), "Dataset ml/imagenet") {
		t.Fatalf("detail view:\n%s", m.View())
	}
	m = press(t, m, "y")
	if !strings.Contains(m.View(), "apiVersion: data.fluid.io/v1alpha1") {
		t.Fatalf("yaml view:\n%s", m.View())
	}

	rec, _ := m.snapshot.Find("uid-ml-imagenet")
	summary := m.renderSummary(rec)
	for _, want := range []string{"Resource status", "UFS total", "Bound"} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary missing %q:\n%s", want, summary)
		}
	}

	m = press(t, m, "esc")
	if m.mode != modeList {
		t.Fatalf("mode = %v, want list", m.mode)
	}
}

func TestModel_DetailTabs(t *testing.T) {
	recs := datasets("ml", "imagenet")
	meta := recs[0].Object["metadata"].(map[string]any)
	meta["labels"] = map[string]any{"team": "ml", "app": "train"}
	meta["resourceVersion"] = "42"
	fc := &fakeCluster{
		records: recs,
		events: map[string][]fluid.Event{"uid-ml-imagenet": {{
			Type:     "Warning",
			Reason:   "SyncFailed",
			Message:  "mount timed out",
			Count:    3,
			LastSeen: time.Now().Add(-2 * time.Minute),
		}}},
	}
	m := newTestModel(t, fc)
	defer func() { m.Close() }()
	m = pumpUntil(t, m, loaded)
	m = press(t, m, "enter")
	rec, _ := m.snapshot.Find("uid-ml-imagenet")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.detailTab != detailMetadata || cmd != nil {
		t.Fatalf("tab = %v loads = %v, want metadata without I/O", m.detailTab, cmd != nil)
	}
	detail := m.renderDetail(rec)
	for _, want := range []string{"app=train", "team=ml", "Resource version", "42", "uid-ml-imagenet"} {
		if !strings.Contains(detail, want) {
			t.Fatalf("metadata tab missing %q:\n%s", want, detail)
		}
	}

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.detailTab != detailEvents || cmd == nil {
		t.Fatalf("tab = %v, want events with a load command", m.detailTab)
	}
	if !strings.Contains(m.renderDetail(rec), "Loading events...") {
		t.Fatalf("events tab should show loading:\n%s", m.renderDetail(rec))
	}
	m = run(t, m, cmd)
	detail = m.renderDetail(rec)
	for _, want := range []string{"Warning", "SyncFailed", "2m ago (x3)", "mount timed out"} {
		if !strings.Contains(detail, want) {
			t.Fatalf("events tab missing %q:\n%s", want, detail)
		}
	}
	if !slices.Equal(fc.eventsFor, []string{"ml/uid-ml-imagenet"}) {
		t.Fatalf("events requested for %v", fc.eventsFor)
	}

	fc.set(func(f *fakeCluster) { f.eventsErr = errors.New("events forbidden") })
	m, cmd = update(t, m, keyPress("r"))
	m = run(t, m, cmd)
	if !strings.Contains(m.renderDetail(rec), "Could not load events: events forbidden") {
		t.Fatalf("events error not shown:\n%s", m.renderDetail(rec))
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.detailTab != detailMetadata {
		t.Fatalf("shift+tab = %v, want metadata", m.detailTab)
	}
	m = press(t, m, "y")
	if m.detailTab != detailYAML {
		t.Fatalf("y = %v, want YAML", m.detailTab)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.detailTab != detailStatus {
		t.Fatalf("tab after YAML = %v, want status", m.detailTab)
	}
}

func TestModel_StaleSyncMessagesIgnored(t *testing.T) {
	fc := &fakeCluster{records: datasets("ml", "a")}
	m := newTestModel(t, fc)
	defer func() { m.Close() }()
	m = pumpUntil(t, m, loaded)
	old := m.sync

	m = press(t, m, "3")
	before := m.snapshot
	m, cmd := update(t, m, syncMsg{sync: old})
	if cmd != nil || m.snapshot.Loaded != before.Loaded {
		t.Fatal("message from a replaced synchronizer changed the model")
	}
}

func TestModel_ConnectFailureShowsPlaceholder(t *testing.T) {
	clusters := state.NewClusterStore(nil)
	clusters.SetClusters([]state.Cluster{{Name: "dev"}})
	m := New(Options{
		Clusters:  clusters,
		Connect:   func(string) (ClusterClient, error) { return nil, errors.New("no credentials") },
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 20})
	m = run(t, m, m.Init())

	view := m.View()
	if !strings.Contains(view, "Cannot connect to cluster dev") || !strings.Contains(view, "no credentials") {
		t.Fatalf("view:\n%s", view)
	}
	if !strings.Contains(view, "OFFLINE") {
		t.Fatalf("header should show offline:\n%s", view)
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		created time.Time
		want    string
	}{
		{time.Time{}, "-"},
		{now.Add(-30 * time.Second), "30s"},
		{now.Add(-5 * time.Minute), "5m"},
		{now.Add(-30 * time.Hour), "30h"},
		{now.Add(-72 * time.Hour), "3d"},
		{now.Add(time.Minute), "0s"},
	}
	for _, tt := range tests {
		if got := formatAge(tt.created, now); got != tt.want {
			t.Fatalf("formatAge(%v) = %q, want %q", tt.created, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"imagenet", 20, "imagenet"},
		{"imagenet", 5, "imag…"},
		{"imagenet", 1, "…"},
		{"imagenet", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
