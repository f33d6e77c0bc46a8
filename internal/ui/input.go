package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/fluidboard/internal/fluid"
	"github.com/five82/fluidboard/internal/livesync"
	"github.com/five82/fluidboard/internal/prefs"
)

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.closeSync()
		return m, tea.Quit
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch m.mode {
	case modeConfirmDelete:
		return m.handleConfirmKey(msg)
	case modePickNamespace, modePickCluster:
		return m.handlePickerKey(msg)
	}

	m.flash = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.closeSync()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		name := m.theme.Name
		if err := prefs.Update(m.prefsPath, func(p *prefs.Prefs) { p.Theme = name }); err != nil {
			m.log.Error(err, "save preferences failed")
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m.refresh()
	}

	if m.mode == modeDetail {
		return m.handleDetailKey(msg)
	}
	return m.handleListKey(msg)
}

// refresh serves the Retry action. A polling or disconnected synchronizer is
// also asked to reconnect.
func (m Model) refresh() (tea.Model, tea.Cmd) {
	if m.client == nil {
		cluster := m.clusters.Current()
		return m, func() tea.Msg { return switchClusterMsg{name: cluster} }
	}
	if m.sync == nil {
		return m, nil
	}
	if m.status.Polling || m.status.State == livesync.StateDisconnected {
		m.sync.Reconnect()
	}
	m.sync.Refetch()
	m.flash = "Refreshing..."
	if m.mode == modeDetail && m.detailTab == detailEvents {
		cmd := m.loadEvents()
		return m, cmd
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.search.SetValue("")
		m.search.Blur()
		m.page, m.cursor = 0, 0
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.page, m.cursor = 0, 0
	return m, cmd
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab((m.tab + 1) % 3)
	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTab((m.tab + 2) % 3)
	case key.Matches(msg, m.keys.TabDatasets):
		return m.switchTab(TabDatasets)
	case key.Matches(msg, m.keys.TabRuntimes):
		return m.switchTab(TabRuntimes)
	case key.Matches(msg, m.keys.TabDataLoads):
		return m.switchTab(TabDataLoads)
	case key.Matches(msg, m.keys.CycleRuntime):
		if m.tab == TabRuntimes {
			m.runtimeKind = nextRuntimeKind(m.runtimeKind)
		}
		m.tab = TabRuntimes
		m.persistScope()
		cmd := m.openScope()
		return m, cmd

	case key.Matches(msg, m.keys.PickNamespace):
		m.mode = modePickNamespace
		m.pickerItems = append([]string{""}, m.namespaces...)
		m.pickerCursor = indexOf(m.pickerItems, m.namespace)
		return m, nil
	case key.Matches(msg, m.keys.PickCluster):
		m.mode = modePickCluster
		m.pickerItems = m.pickerItems[:0:0]
		for _, c := range m.clusters.Clusters() {
			m.pickerItems = append(m.pickerItems, c.Name)
		}
		m.pickerCursor = indexOf(m.pickerItems, m.cluster)
		return m, nil
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Escape):
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.page, m.cursor = 0, 0
		}
		return m, nil
	}

	page := m.pageRecords()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		} else if m.page > 0 {
			m.page--
			m.cursor = m.pageSize() - 1
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(page)-1 {
			m.cursor++
		} else if m.page < m.pageCount()-1 {
			m.page++
			m.cursor = 0
		}
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = len(page) - 1
	case key.Matches(msg, m.keys.PrevPage):
		if m.page > 0 {
			m.page--
		}
	case key.Matches(msg, m.keys.NextPage):
		if m.page < m.pageCount()-1 {
			m.page++
		}

	case key.Matches(msg, m.keys.Confirm):
		if rec, ok := m.cursorRecord(); ok {
			m.openDetail(rec)
		}
	case key.Matches(msg, m.keys.ToggleSelect):
		if rec, ok := m.cursorRecord(); ok && m.selection() != nil {
			m.selection().Toggle(rec.ID)
		}
	case key.Matches(msg, m.keys.SelectPage):
		if sel := m.selection(); sel != nil {
			ids := fluid.IDs(page)
			if sel.IsAllSelected(ids) {
				sel.DeselectAll(ids)
			} else {
				sel.SelectAll(ids)
			}
		}
	case key.Matches(msg, m.keys.ClearSelect):
		if sel := m.selection(); sel != nil {
			sel.Clear()
		}
	case key.Matches(msg, m.keys.Delete):
		return m.confirmDelete(m.selectedRecords())
	}
	m.clampCursor()
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = modeList
		m.detailID = ""
		return m, nil
	case key.Matches(msg, m.keys.NextTab):
		cmd := m.selectDetailTab(m.detailTab + 1)
		return m, cmd
	case key.Matches(msg, m.keys.PrevTab):
		cmd := m.selectDetailTab(m.detailTab - 1)
		return m, cmd
	case key.Matches(msg, m.keys.ToggleYAML):
		next := detailYAML
		if m.detailTab == detailYAML {
			next = detailStatus
		}
		cmd := m.selectDetailTab(next)
		return m, cmd
	case key.Matches(msg, m.keys.Delete):
		if rec, ok := m.snapshot.Find(m.detailID); ok {
			return m.confirmDelete([]fluid.Record{rec})
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) confirmDelete(records []fluid.Record) (tea.Model, tea.Cmd) {
	if len(records) == 0 || m.client == nil {
		return m, nil
	}
	m.pending = records
	m.mode = modeConfirmDelete
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Yes):
		records := m.pending
		m.pending = nil
		m.mode = modeList
		m.detailID = ""
		m.flash = fmt.Sprintf("Deleting %d %s...", len(records), plural(len(records), "resource"))
		return m, deleteCmd(m.ctx, m.client, m.sync, records)
	case key.Matches(msg, m.keys.No):
		m.pending = nil
		if m.detailID != "" {
			m.mode = modeDetail
		} else {
			m.mode = modeList
		}
	}
	return m, nil
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.pickerCursor > 0 {
			m.pickerCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.pickerCursor < len(m.pickerItems)-1 {
			m.pickerCursor++
		}
	case msg.Type == tea.KeyEsc:
		m.mode = modeList
	case key.Matches(msg, m.keys.Confirm):
		if len(m.pickerItems) == 0 {
			m.mode = modeList
			return m, nil
		}
		choice := m.pickerItems[m.pickerCursor]
		picking := m.mode
		m.mode = modeList
		if picking == modePickCluster {
			if choice == m.cluster && m.client != nil {
				return m, nil
			}
			return m.switchCluster(choice)
		}
		if choice == m.namespace {
			return m, nil
		}
		m.namespace = choice
		m.persistScope()
		cmd := m.openScope()
		return m, cmd
	}
	return m, nil
}

func (m Model) switchTab(tab Tab) (tea.Model, tea.Cmd) {
	if tab == m.tab && m.sync != nil {
		return m, nil
	}
	m.tab = tab
	m.persistScope()
	cmd := m.openScope()
	return m, cmd
}

// selectedRecords returns the selected records in display order, or the
// cursor row when nothing is selected.
func (m Model) selectedRecords() []fluid.Record {
	sel := m.selection()
	if sel != nil && sel.Len() > 0 {
		var out []fluid.Record
		for _, r := range m.snapshot.Records {
			if sel.Has(r.ID) {
				out = append(out, r)
			}
		}
		return out
	}
	if rec, ok := m.cursorRecord(); ok {
		return []fluid.Record{rec}
	}
	return nil
}

func nextRuntimeKind(current fluid.Kind) fluid.Kind {
	for i, k := range fluid.RuntimeKinds {
		if k == current {
			return fluid.RuntimeKinds[(i+1)%len(fluid.RuntimeKinds)]
		}
	}
	return fluid.RuntimeKinds[0]
}

func indexOf(items []string, want string) int {
	for i, item := range items {
		if item == want {
			return i
		}
	}
	return 0
}
