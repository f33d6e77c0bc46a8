package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/five82/fluidboard/internal/fluid"
)

const (
	defaultPageSize = 20
	// listChrome is the number of lines around the table: header, command
	// bar, banner, column header and footer.
	listChrome = 5
)

// filtered returns the records matching the name search.
func (m Model) filtered() []fluid.Record {
	q := strings.ToLower(strings.TrimSpace(m.search.Value()))
	if q == "" {
		return m.snapshot.Records
	}
	out := make([]fluid.Record, 0, len(m.snapshot.Records))
	for _, r := range m.snapshot.Records {
		if strings.Contains(strings.ToLower(r.Name), q) {
			out = append(out, r)
		}
	}
	return out
}

func (m Model) pageSize() int {
	if m.height <= 0 {
		return defaultPageSize
	}
	return max(1, m.height-listChrome)
}

func (m Model) pageCount() int {
	total := len(m.filtered())
	if total == 0 {
		return 1
	}
	ps := m.pageSize()
	return (total + ps - 1) / ps
}

// pageRecords returns the rows of the current page.
func (m Model) pageRecords() []fluid.Record {
	recs := m.filtered()
	ps := m.pageSize()
	start := m.page * ps
	if start >= len(recs) {
		return nil
	}
	return recs[start:min(start+ps, len(recs))]
}

func (m *Model) clampCursor() {
	if pc := m.pageCount(); m.page >= pc {
		m.page = pc - 1
	}
	if m.page < 0 {
		m.page = 0
	}
	if n := len(m.pageRecords()); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) cursorRecord() (fluid.Record, bool) {
	page := m.pageRecords()
	if m.cursor < 0 || m.cursor >= len(page) {
		return fluid.Record{}, false
	}
	return page[m.cursor], true
}

type column struct {
	title string
	width int
	value func(fluid.Record) string
}

func columnsFor(kind fluid.Kind) []column {
	name := column{"NAME", 28, func(r fluid.Record) string { return r.Name }}
	namespace := column{"NAMESPACE", 16, func(r fluid.Record) string { return r.Namespace }}
	phase := column{"PHASE", 13, func(r fluid.Record) string { return r.Phase }}
	age := column{"AGE", 6, func(r fluid.Record) string { return formatAge(r.Created, time.Now()) }}

	switch {
	case kind == fluid.KindDataLoad:
		return []column{name, namespace,
			{"DATASET", 24, func(r fluid.Record) string { return dataLoadOf(r).DatasetName }},
			phase,
			{"POLICY", 10, func(r fluid.Record) string { return dataLoadOf(r).Policy }},
			{"DURATION", 10, func(r fluid.Record) string { return dataLoadOf(r).Duration }},
			age,
		}
	case kind.IsRuntime():
		return []column{name, namespace, phase,
			{"MASTER", 7, func(r fluid.Record) string { return runtimeOf(r).MasterReplicas }},
			{"WORKER", 7, func(r fluid.Record) string { return runtimeOf(r).WorkerReplicas }},
			{"CACHED", 20, func(r fluid.Record) string { return cacheUsage(runtimeOf(r).Cache) }},
			{"CACHE %", 8, func(r fluid.Record) string { return runtimeOf(r).Cache.Percentage }},
			age,
		}
	default:
		return []column{name, namespace, phase,
			{"UFS TOTAL", 12, func(r fluid.Record) string { return datasetOf(r).UfsTotal }},
			{"CACHED", 20, func(r fluid.Record) string { return cacheUsage(datasetOf(r).Cache) }},
			{"CACHE %", 8, func(r fluid.Record) string { return datasetOf(r).Cache.Percentage }},
			{"RUNTIME", 16, func(r fluid.Record) string { return boundRuntime(datasetOf(r)) }},
			age,
		}
	}
}

func cell(c column, r fluid.Record) string {
	v := c.value(r)
	if strings.TrimSpace(v) == "" {
		return fluid.Placeholder
	}
	return v
}

func cacheUsage(c fluid.CacheStates) string {
	if c.Cached == "" && c.Capacity == "" {
		return fluid.Placeholder
	}
	return fmt.Sprintf("%s / %s", c.Cached, c.Capacity)
}

// The detail accessors return zero values when a record's detail struct does
// not match its kind.
func datasetOf(r fluid.Record) fluid.DatasetInfo {
	if r.Dataset == nil {
		return fluid.DatasetInfo{}
	}
	return *r.Dataset
}

func runtimeOf(r fluid.Record) fluid.RuntimeInfo {
	if r.Runtime == nil {
		return fluid.RuntimeInfo{}
	}
	return *r.Runtime
}

func dataLoadOf(r fluid.Record) fluid.DataLoadInfo {
	if r.DataLoad == nil {
		return fluid.DataLoadInfo{}
	}
	return *r.DataLoad
}

func boundRuntime(d fluid.DatasetInfo) string {
	if len(d.Runtimes) == 0 {
		return fluid.Placeholder
	}
	rt := d.Runtimes[0]
	if rt.Type != "" && rt.Type != fluid.Placeholder {
		return rt.Type
	}
	return rt.Name
}

// renderList renders the table, or the placeholder that replaces it.
func (m Model) renderList() string {
	styles := m.theme.Styles()
	kind := m.Kind()
	noun := strings.ToLower(m.tab.String())
	if m.tab == TabRuntimes {
		noun = kind.DisplayName() + " runtimes"
	}

	switch {
	case m.connectErr != nil:
		return m.placeholder(
			styles.DangerText.Render("Cannot connect to cluster "+m.cluster),
			styles.MutedText.Render(m.connectErr.Error()),
			styles.Text.Render("Press r to retry, c to choose another cluster."),
		)
	case m.snapshot.LastError != nil:
		return m.placeholder(
			styles.DangerText.Render("Failed to load "+noun),
			styles.MutedText.Render(m.snapshot.LastError.Error()),
			styles.Text.Render("Press r to retry."),
		)
	case !m.snapshot.Loaded:
		return m.placeholder(styles.MutedText.Render("Loading " + noun + "..."))
	}

	rows := m.pageRecords()
	if len(rows) == 0 {
		msg := "No " + noun + " found."
		if m.search.Value() != "" {
			msg = fmt.Sprintf("No %s match %q.", noun, m.search.Value())
		}
		return m.placeholder(styles.MutedText.Render(msg))
	}

	cols := columnsFor(kind)
	sel := m.selection()
	ids := fluid.IDs(rows)

	var b strings.Builder
	mark := "[ ]"
	if sel != nil && sel.IsAllSelected(ids) {
		mark = "[x]"
	} else if sel != nil && sel.IsPartiallySelected(ids) {
		mark = "[-]"
	}
	header := []string{mark}
	for _, c := range cols {
		header = append(header, padRight(c.title, c.width))
	}
	b.WriteString(styles.ColumnHeader.Render(strings.Join(header, " ")))
	b.WriteString("\n")

	for i, r := range rows {
		selected := sel != nil && sel.Has(r.ID)
		cells := []string{"[ ]"}
		if selected {
			cells[0] = "[x]"
		}
		for _, c := range cols {
			text := padRight(truncate(cell(c, r), c.width), c.width)
			if c.title == "PHASE" && i != m.cursor && !selected {
				text = styles.PhaseStyle(r.Phase).Render(text)
			}
			cells = append(cells, text)
		}
		line := strings.Join(cells, " ")
		switch {
		case i == m.cursor:
			line = styles.Cursor.Render(line)
		case selected:
			line = styles.Selected.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(m.renderFooter(noun))
	return b.String()
}

func (m Model) renderFooter(noun string) string {
	styles := m.theme.Styles()
	total := len(m.filtered())
	parts := []string{
		fmt.Sprintf("Page %d/%d", m.page+1, m.pageCount()),
		fmt.Sprintf("%d %s", total, noun),
	}
	if sel := m.selection(); sel != nil && sel.Len() > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", sel.Len()))
	}
	if !m.snapshot.LastUpdated.IsZero() {
		parts = append(parts, "updated "+m.snapshot.LastUpdated.Format("15:04:05"))
	}
	return styles.Footer.Width(max(m.width, 1)).Render(strings.Join(parts, "  ·  "))
}

func (m Model) placeholder(lines ...string) string {
	body := strings.Join(lines, "\n\n")
	height := max(m.height-listChrome+1, len(lines))
	return placeCenter(m.width, height, body)
}
