package ui

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/yaml"

	"github.com/five82/fluidboard/internal/fluid"
)

// detailTab is one page of the detail screen.
type detailTab int

const (
	detailStatus detailTab = iota
	detailMetadata
	detailEvents
	detailYAML
	detailTabCount
)

func (t detailTab) String() string {
	switch t {
	case detailMetadata:
		return "Metadata"
	case detailEvents:
		return "Events"
	case detailYAML:
		return "YAML"
	default:
		return "Status"
	}
}

// eventList holds the events fetched for the record shown in detail.
type eventList struct {
	id      string
	items   []fluid.Event
	err     error
	loading bool
}

func (m *Model) resizeViewport() {
	m.viewport.Width = max(m.width, 1)
	m.viewport.Height = max(m.height-3, 1)
}

// openDetail shows rec on the status tab.
func (m *Model) openDetail(rec fluid.Record) {
	m.mode = modeDetail
	m.detailID = rec.ID
	m.detailTab = detailStatus
	m.events = eventList{}
	m.viewport.GotoTop()
	m.refreshDetail()
}

// selectDetailTab switches tabs. Entering the events tab fetches the events
// of the shown record.
func (m *Model) selectDetailTab(tab detailTab) tea.Cmd {
	m.detailTab = (tab + detailTabCount) % detailTabCount
	m.viewport.GotoTop()
	var cmd tea.Cmd
	if m.detailTab == detailEvents {
		cmd = m.loadEvents()
	}
	m.refreshDetail()
	return cmd
}

func (m *Model) loadEvents() tea.Cmd {
	rec, ok := m.snapshot.Find(m.detailID)
	if !ok || m.client == nil {
		return nil
	}
	m.events = eventList{id: rec.ID, items: m.events.items, loading: true}
	return loadEventsCmd(m.ctx, m.client, rec)
}

// refreshDetail re-renders the detail viewport from the latest snapshot.
func (m *Model) refreshDetail() {
	if m.mode != modeDetail || m.detailID == "" {
		return
	}
	rec, ok := m.snapshot.Find(m.detailID)
	if !ok {
		styles := m.theme.Styles()
		m.viewport.SetContent(styles.WarningText.Render(
			"This resource no longer exists. Press esc to go back."))
		return
	}
	m.viewport.SetContent(m.renderDetail(rec))
}

func (m Model) renderDetail(rec fluid.Record) string {
	styles := m.theme.Styles()
	var b strings.Builder

	title := fmt.Sprintf("%s %s/%s", kindTitle(rec.Kind), rec.Namespace, rec.Name)
	b.WriteString(styles.AccentText.Bold(true).Render(title))
	b.WriteString("  ")
	b.WriteString(styles.PhaseStyle(rec.Phase).Render(rec.Phase))
	b.WriteString("\n")

	tabs := make([]string, 0, detailTabCount)
	for t := detailStatus; t < detailTabCount; t++ {
		if t == m.detailTab {
			tabs = append(tabs, styles.AccentText.Bold(true).Underline(true).Render(t.String()))
		} else {
			tabs = append(tabs, styles.MutedText.Render(t.String()))
		}
	}
	b.WriteString(strings.Join(tabs, "   "))
	b.WriteString("   ")
	b.WriteString(styles.FaintText.Render("tab switches · y toggles YAML · d deletes · esc returns"))
	b.WriteString("\n\n")

	switch m.detailTab {
	case detailMetadata:
		b.WriteString(m.renderMetadata(rec))
	case detailEvents:
		b.WriteString(m.renderEvents())
	case detailYAML:
		b.WriteString(renderYAML(rec))
	default:
		b.WriteString(m.renderSummary(rec))
	}
	return b.String()
}

func renderYAML(rec fluid.Record) string {
	if rec.Object == nil {
		return "# no object payload"
	}
	out, err := yaml.Marshal(rec.Object)
	if err != nil {
		return "# cannot render YAML: " + err.Error()
	}
	return string(out)
}

type field struct {
	label string
	value string
}

func (m Model) renderSummary(rec fluid.Record) string {
	styles := m.theme.Styles()
	var b strings.Builder

	m.writeSection(&b, "Overview", []field{
		{"Phase", rec.Phase},
		{"Created", formatTimestamp(rec.Created)},
		{"Description", rec.Description},
	})

	switch {
	case rec.Dataset != nil:
		m.writeDataset(&b, *rec.Dataset)
	case rec.Runtime != nil:
		m.writeRuntime(&b, *rec.Runtime)
	case rec.DataLoad != nil:
		m.writeDataLoad(&b, *rec.DataLoad)
	}

	if len(rec.Conditions) > 0 {
		b.WriteString(styles.ColumnHeader.Render("Conditions"))
		b.WriteString("\n")
		for _, c := range rec.Conditions {
			b.WriteString(fmt.Sprintf("  %s=%s  %s", c.Type, c.Status, styles.MutedText.Render(c.LastTransitionTime)))
			b.WriteString("\n")
			if c.Reason != "" || c.Message != "" {
				b.WriteString(styles.FaintText.Render(fmt.Sprintf("    %s %s", c.Reason, c.Message)))
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

// renderMetadata lists identity fields, labels, annotations and owners from
// the raw object.
func (m Model) renderMetadata(rec fluid.Record) string {
	styles := m.theme.Styles()
	if rec.Object == nil {
		return styles.MutedText.Render("No object payload.")
	}
	obj := &unstructured.Unstructured{Object: rec.Object}
	var b strings.Builder

	generation := ""
	if g := obj.GetGeneration(); g > 0 {
		generation = strconv.FormatInt(g, 10)
	}
	m.writeSection(&b, "Metadata", []field{
		{"Name", obj.GetName()},
		{"Namespace", obj.GetNamespace()},
		{"UID", string(obj.GetUID())},
		{"Created", formatTimestamp(rec.Created)},
		{"Resource version", obj.GetResourceVersion()},
		{"Generation", generation},
	})
	m.writePairs(&b, "Labels", obj.GetLabels())
	m.writePairs(&b, "Annotations", obj.GetAnnotations())

	if owners := obj.GetOwnerReferences(); len(owners) > 0 {
		b.WriteString(styles.ColumnHeader.Render("Owners"))
		b.WriteString("\n")
		for _, o := range owners {
			b.WriteString(fmt.Sprintf("  %s/%s\n", o.Kind, o.Name))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) writePairs(b *strings.Builder, title string, pairs map[string]string) {
	styles := m.theme.Styles()
	b.WriteString(styles.ColumnHeader.Render(title))
	b.WriteString("\n")
	if len(pairs) == 0 {
		b.WriteString("  " + styles.MutedText.Render("none") + "\n\n")
		return
	}
	for _, k := range slices.Sorted(maps.Keys(pairs)) {
		b.WriteString("  ")
		b.WriteString(styles.MutedText.Render(k + "="))
		b.WriteString(pairs[k])
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func (m Model) renderEvents() string {
	styles := m.theme.Styles()
	ev := m.events
	switch {
	case ev.err != nil:
		return styles.WarningText.Render("Could not load events: "+ev.err.Error()) + "\n" +
			styles.FaintText.Render("Press r to retry.")
	case ev.loading && len(ev.items) == 0:
		return styles.MutedText.Render("Loading events...")
	case len(ev.items) == 0:
		return styles.MutedText.Render("No events recorded for this resource.")
	}

	now := time.Now()
	var b strings.Builder
	for _, e := range ev.items {
		typeStyle := styles.SuccessText
		if e.IsWarning() {
			typeStyle = styles.WarningText
		}
		seen := fluid.Placeholder
		if !e.LastSeen.IsZero() {
			seen = formatAge(e.LastSeen, now) + " ago"
		}
		if e.Count > 1 {
			seen += fmt.Sprintf(" (x%d)", e.Count)
		}
		b.WriteString("  ")
		b.WriteString(typeStyle.Render(padRight(orDash(e.Type), 8)))
		b.WriteString(padRight(orDash(e.Reason), 24))
		b.WriteString(styles.MutedText.Render(seen))
		if e.Source != "" {
			b.WriteString(styles.FaintText.Render("  " + e.Source))
		}
		b.WriteString("\n")
		if e.Message != "" {
			b.WriteString("    " + e.Message + "\n")
		}
	}
	return b.String()
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return fluid.Placeholder
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func (m Model) writeDataset(b *strings.Builder, d fluid.DatasetInfo) {
	styles := m.theme.Styles()
	m.writeSection(b, "Resource status", []field{
		{"UFS total", d.UfsTotal},
		{"Files", d.FileNum},
		{"Cache capacity", d.Cache.Capacity},
		{"Cached", d.Cache.Cached},
		{"Cached %", d.Cache.Percentage},
		{"Hit ratio", d.Cache.HitRatio},
		{"HCFS endpoint", d.HCFSEndpoint},
	})

	if len(d.Mounts) > 0 {
		b.WriteString(styles.ColumnHeader.Render("Mounts"))
		b.WriteString("\n")
		for _, mt := range d.Mounts {
			flags := []string{}
			if mt.ReadOnly {
				flags = append(flags, "read-only")
			}
			if mt.Shared {
				flags = append(flags, "shared")
			}
			line := fmt.Sprintf("  %s  %s", orDash(mt.Name), mt.MountPoint)
			if mt.Path != "" {
				line += " -> " + mt.Path
			}
			if len(flags) > 0 {
				line += "  " + styles.MutedText.Render(strings.Join(flags, ", "))
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(d.Runtimes) > 0 {
		b.WriteString(styles.ColumnHeader.Render("Runtimes"))
		b.WriteString("\n")
		for _, rt := range d.Runtimes {
			b.WriteString(fmt.Sprintf("  %s/%s  %s %s  masters %s\n",
				rt.Namespace, rt.Name, orDash(rt.Type), orDash(rt.Category), orDash(rt.MasterReplicas)))
		}
		b.WriteString("\n")
	}
}

func (m Model) writeRuntime(b *strings.Builder, r fluid.RuntimeInfo) {
	m.writeSection(b, "Runtime", []field{
		{"Type", r.Type},
		{"Master replicas", r.MasterReplicas},
		{"Worker replicas", r.WorkerReplicas},
	})
	m.writeSection(b, "Cache", []field{
		{"Capacity", r.Cache.Capacity},
		{"Cached", r.Cache.Cached},
		{"Cached %", r.Cache.Percentage},
	})
}

func (m Model) writeDataLoad(b *strings.Builder, d fluid.DataLoadInfo) {
	styles := m.theme.Styles()
	m.writeSection(b, "Load", []field{
		{"Dataset", d.DatasetNamespace + "/" + d.DatasetName},
		{"Policy", d.Policy},
		{"Load metadata", strconv.FormatBool(d.LoadMetadata)},
		{"Duration", d.Duration},
	})
	if len(d.Targets) > 0 {
		b.WriteString(styles.ColumnHeader.Render("Targets"))
		b.WriteString("\n")
		for _, t := range d.Targets {
			b.WriteString(fmt.Sprintf("  %s  replicas %s\n", t.Path, orDash(t.Replicas)))
		}
		b.WriteString("\n")
	}
}

func (m Model) writeSection(b *strings.Builder, title string, fields []field) {
	styles := m.theme.Styles()
	b.WriteString(styles.ColumnHeader.Render(title))
	b.WriteString("\n")
	for _, f := range fields {
		b.WriteString("  ")
		b.WriteString(styles.MutedText.Render(padRight(f.label, 16)))
		b.WriteString(orDash(f.value))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return fluid.Placeholder
	}
	return s
}
