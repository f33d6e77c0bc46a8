package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Escape     key.Binding
	Confirm    key.Binding

	// Scope
	NextTab       key.Binding
	PrevTab       key.Binding
	TabDatasets   key.Binding
	TabRuntimes   key.Binding
	TabDataLoads  key.Binding
	CycleRuntime  key.Binding
	PickNamespace key.Binding
	PickCluster   key.Binding
	Search        key.Binding
	Refresh       key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PrevPage key.Binding
	NextPage key.Binding

	// Selection and actions
	ToggleSelect key.Binding
	SelectPage   key.Binding
	ClearSelect  key.Binding
	Delete       key.Binding
	ToggleYAML   key.Binding

	// Delete confirmation
	Yes key.Binding
	No  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back / clear search"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Open detail / choose"),
		),

		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous tab"),
		),
		TabDatasets: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Datasets"),
		),
		TabRuntimes: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Runtimes"),
		),
		TabDataLoads: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "DataLoads"),
		),
		CycleRuntime: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "Cycle runtime type"),
		),
		PickNamespace: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Choose namespace"),
		),
		PickCluster: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Choose cluster"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search by name"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh / retry / reconnect"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "First row"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Last row"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("h", "left", "pgup"),
			key.WithHelp("h/left", "Previous page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("l", "right", "pgdown"),
			key.WithHelp("l/right", "Next page"),
		),

		ToggleSelect: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "Select row"),
		),
		SelectPage: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Select / deselect page"),
		),
		ClearSelect: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Clear selection"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Delete selected"),
		),
		ToggleYAML: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "Summary / YAML"),
		),

		Yes: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y", "Confirm"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "Cancel"),
		),
	}
}

// helpGroups orders the bindings for the help overlay.
func (k keyMap) helpGroups() []struct {
	Title    string
	Bindings []key.Binding
} {
	return []struct {
		Title    string
		Bindings []key.Binding
	}{
		{"Scope", []key.Binding{k.NextTab, k.TabDatasets, k.TabRuntimes, k.TabDataLoads, k.CycleRuntime, k.PickNamespace, k.PickCluster, k.Search, k.Refresh}},
		{"Navigation", []key.Binding{k.Up, k.Down, k.Top, k.Bottom, k.PrevPage, k.NextPage, k.Confirm, k.Escape}},
		{"Selection", []key.Binding{k.ToggleSelect, k.SelectPage, k.ClearSelect, k.Delete}},
		{"Detail", []key.Binding{k.NextTab, k.PrevTab, k.ToggleYAML}},
		{"General", []key.Binding{k.CycleTheme, k.Help, k.Quit}},
	}
}
