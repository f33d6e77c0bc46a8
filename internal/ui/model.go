package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-logr/logr"

	"github.com/five82/fluidboard/internal/fluid"
	"github.com/five82/fluidboard/internal/livesync"
	"github.com/five82/fluidboard/internal/prefs"
	"github.com/five82/fluidboard/internal/state"
)

// ClusterClient is what the UI needs from one cluster.
type ClusterClient interface {
	livesync.Fetcher
	livesync.Dialer
	Namespaces(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, kind fluid.Kind, namespace, name string) error
	Events(ctx context.Context, namespace, uid string) ([]fluid.Event, error)
}

// Connector returns the client for a cluster name.
type Connector func(cluster string) (ClusterClient, error)

// Tab is one of the resource list screens.
type Tab int

const (
	TabDatasets Tab = iota
	TabRuntimes
	TabDataLoads
)

func (t Tab) String() string {
	switch t {
	case TabRuntimes:
		return "Runtimes"
	case TabDataLoads:
		return "DataLoads"
	default:
		return "Datasets"
	}
}

type mode int

const (
	modeList mode = iota
	modeDetail
	modeConfirmDelete
	modePickNamespace
	modePickCluster
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Clusters  *state.ClusterStore
	Connect   Connector
	Namespace string
	Kind      fluid.Kind
	ThemeName string
	PrefsPath string
	// Sync is the template for every synchronizer the UI opens. Store and
	// Selection are replaced per scope.
	Sync   livesync.Options
	Logger logr.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	clusters  *state.ClusterStore
	connect   Connector
	prefsPath string
	syncOpts  livesync.Options
	log       logr.Logger

	// UI state
	theme    Theme
	keys     keyMap
	mode     mode
	showHelp bool
	width    int
	height   int
	ready    bool
	flash    string

	// Scope
	cluster     string
	client      ClusterClient
	connectErr  error
	tab         Tab
	runtimeKind fluid.Kind
	namespace   string
	namespaces  []string

	// Live data
	sync     *livesync.Synchronizer
	status   livesync.Status
	snapshot state.Snapshot

	// List state
	search    textinput.Model
	searching bool
	page      int
	cursor    int // row index within the page

	// Detail state
	detailID  string
	detailTab detailTab
	viewport  viewport.Model
	events    eventList

	// Modal state
	pending      []fluid.Record
	pickerItems  []string
	pickerCursor int
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Dracula"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	clusters := opts.Clusters
	if clusters == nil {
		clusters = state.NewClusterStore(nil)
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "name"
	search.CharLimit = 128

	m := Model{
		ctx:         ctx,
		clusters:    clusters,
		connect:     opts.Connect,
		prefsPath:   prefsPath,
		syncOpts:    opts.Sync,
		log:         log.WithName("ui"),
		theme:       GetTheme(themeName),
		keys:        DefaultKeyMap(),
		namespace:   opts.Namespace,
		runtimeKind: fluid.KindAlluxioRuntime,
		search:      search,
		viewport:    viewport.New(80, 20),
	}
	m.setKind(opts.Kind)
	return m
}

func (m *Model) setKind(kind fluid.Kind) {
	switch {
	case kind == fluid.KindDataLoad:
		m.tab = TabDataLoads
	case kind.IsRuntime():
		m.tab = TabRuntimes
		m.runtimeKind = kind
	default:
		m.tab = TabDatasets
	}
}

// Kind returns the resource kind of the active tab.
func (m Model) Kind() fluid.Kind {
	switch m.tab {
	case TabRuntimes:
		return m.runtimeKind
	case TabDataLoads:
		return fluid.KindDataLoad
	default:
		return fluid.KindDataset
	}
}

// Scope returns the subscription scope currently shown.
func (m Model) Scope() fluid.Scope {
	return fluid.Scope{Cluster: m.cluster, Namespace: m.namespace, Kind: m.Kind()}
}

// Close shuts down the active synchronizer.
func (m Model) Close() {
	if m.sync != nil {
		m.sync.Close()
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cluster := m.clusters.Current()
	return func() tea.Msg {
		return switchClusterMsg{name: cluster}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.clampCursor()
		m.resizeViewport()
		m.refreshDetail()
		return m, nil

	case switchClusterMsg:
		return m.switchCluster(msg.name)

	case syncMsg:
		if msg.sync != m.sync {
			// A synchronizer we already replaced.
			return m, nil
		}
		m.status = msg.sync.Status()
		m.snapshot = msg.sync.Snapshot()
		m.clampCursor()
		m.refreshDetail()
		if msg.closed {
			return m, nil
		}
		return m, waitForSync(msg.sync)

	case namespacesMsg:
		if msg.cluster != m.cluster {
			return m, nil
		}
		if msg.err != nil {
			m.log.Error(msg.err, "list namespaces failed", "cluster", msg.cluster)
			m.flash = "Could not list namespaces: " + msg.err.Error()
			return m, nil
		}
		m.namespaces = msg.names
		return m, nil

	case eventsMsg:
		if msg.id != m.events.id {
			return m, nil
		}
		m.events.loading = false
		m.events.items = msg.events
		m.events.err = msg.err
		if msg.err != nil {
			m.log.Error(msg.err, "list events failed", "uid", msg.id)
		}
		m.refreshDetail()
		return m, nil

	case deleteDoneMsg:
		if msg.sync == m.sync && m.sync != nil {
			m.sync.Refetch()
		}
		if msg.err != nil {
			m.log.Error(msg.err, "delete failed", "deleted", msg.deleted)
			m.flash = fmt.Sprintf("Deleted %d, failed: %v", msg.deleted, msg.err)
		} else {
			m.flash = fmt.Sprintf("Deleted %d %s", msg.deleted, plural(msg.deleted, "resource"))
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	switch m.mode {
	case modeConfirmDelete:
		return m.renderConfirm()
	case modePickNamespace, modePickCluster:
		return m.renderPicker()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	if banner := m.renderBanner(); banner != "" {
		b.WriteString(banner)
		b.WriteString("\n")
	}
	if m.mode == modeDetail {
		b.WriteString(m.viewport.View())
	} else {
		b.WriteString(m.renderList())
	}
	return b.String()
}

// switchCluster connects to a cluster and reopens the scope there.
func (m Model) switchCluster(name string) (tea.Model, tea.Cmd) {
	if name != "" && name != m.clusters.Current() {
		if !m.clusters.SetCurrent(name) {
			m.flash = "Unknown cluster " + name
			return m, nil
		}
	}
	if m.connect == nil {
		m.connectErr = errors.New("no cluster connector configured")
		return m, nil
	}

	client, err := m.connect(name)
	if err != nil {
		m.log.Error(err, "connect cluster failed", "cluster", name)
		m.closeSync()
		m.cluster = name
		m.client = nil
		m.connectErr = err
		m.snapshot = state.Snapshot{}
		m.status = livesync.Status{}
		return m, nil
	}

	if name != m.cluster && m.cluster != "" {
		m.namespace = ""
	}
	m.cluster = name
	m.client = client
	m.connectErr = nil
	m.namespaces = nil
	open := m.openScope()
	return m, tea.Batch(open, loadNamespacesCmd(m.ctx, client, name))
}

// openScope tears down the current synchronizer and opens one for the new
// scope. Selection is scoped too, so it starts empty.
func (m *Model) openScope() tea.Cmd {
	m.closeSync()
	m.page, m.cursor = 0, 0
	m.mode = modeList
	m.detailID = ""
	m.snapshot = state.Snapshot{}
	if m.client == nil {
		return nil
	}

	opts := m.syncOpts
	opts.Store = &state.Store{}
	opts.Selection = livesync.NewSelection()
	if opts.Logger.GetSink() == nil {
		opts.Logger = m.log
	}

	s := livesync.New(m.client, m.client, opts)
	scope := m.Scope()
	if err := s.Open(scope); err != nil {
		m.log.Error(err, "open synchronizer failed", "scope", scope.String())
		m.flash = err.Error()
		return nil
	}
	m.sync = s
	m.status = s.Status()
	return waitForSync(s)
}

func (m *Model) closeSync() {
	if m.sync == nil {
		return
	}
	m.sync.Close()
	m.sync = nil
	m.status = livesync.Status{}
}

func (m *Model) selection() *livesync.Selection {
	if m.sync == nil {
		return nil
	}
	return m.sync.Selection()
}

func (m *Model) persistScope() {
	ns, kind := m.namespace, string(m.Kind())
	if err := prefs.Update(m.prefsPath, func(p *prefs.Prefs) {
		p.Namespace = ns
		p.Kind = kind
	}); err != nil {
		m.log.Error(err, "save preferences failed")
	}
}

// Messages

type switchClusterMsg struct {
	name string
}

// syncMsg reports that a synchronizer published new state. It carries the
// synchronizer so results from a torn-down scope can be told apart.
type syncMsg struct {
	sync   *livesync.Synchronizer
	closed bool
}

type namespacesMsg struct {
	cluster string
	names   []string
	err     error
}

type eventsMsg struct {
	id     string
	events []fluid.Event
	err    error
}

type deleteDoneMsg struct {
	sync    *livesync.Synchronizer
	deleted int
	err     error
}

// Commands

func waitForSync(s *livesync.Synchronizer) tea.Cmd {
	return func() tea.Msg {
		_, ok := <-s.Updates()
		return syncMsg{sync: s, closed: !ok}
	}
}

func loadNamespacesCmd(ctx context.Context, client ClusterClient, cluster string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		names, err := client.Namespaces(ctx)
		return namespacesMsg{cluster: cluster, names: names, err: err}
	}
}

func loadEventsCmd(ctx context.Context, client ClusterClient, rec fluid.Record) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		events, err := client.Events(ctx, rec.Namespace, rec.ID)
		return eventsMsg{id: rec.ID, events: events, err: err}
	}
}

func deleteCmd(ctx context.Context, client ClusterClient, s *livesync.Synchronizer, records []fluid.Record) tea.Cmd {
	return func() tea.Msg {
		var errs []error
		deleted := 0
		for _, r := range records {
			ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := client.Delete(ctx, r.Kind, r.Namespace, r.Name)
			cancel()
			if err != nil {
				errs = append(errs, err)
				continue
			}
			deleted++
		}
		return deleteDoneMsg{sync: s, deleted: deleted, err: errors.Join(errs...)}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.Close()
	}
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
