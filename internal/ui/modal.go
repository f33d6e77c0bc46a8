package ui

import (
	"fmt"
	"strings"
)

const maxListedDeletes = 10

// renderConfirm renders the batch delete confirmation.
func (m Model) renderConfirm() string {
	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(styles.DangerText.Render(fmt.Sprintf("Delete %d %s?", len(m.pending), plural(len(m.pending), "resource"))))
	b.WriteString("\n\n")
	for i, r := range m.pending {
		if i == maxListedDeletes {
			b.WriteString(styles.MutedText.Render(fmt.Sprintf("  ...and %d more", len(m.pending)-maxListedDeletes)))
			b.WriteString("\n")
			break
		}
		b.WriteString(fmt.Sprintf("  %s/%s %s\n", r.Namespace, r.Name, styles.MutedText.Render(string(r.Kind))))
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("y confirm · n cancel"))
	return placeCenter(m.width, m.height, styles.Modal.Render(b.String()))
}

// renderPicker renders the namespace or cluster chooser.
func (m Model) renderPicker() string {
	styles := m.theme.Styles()
	title := "Choose namespace"
	if m.mode == modePickCluster {
		title = "Choose cluster"
	}

	servers := map[string]string{}
	for _, c := range m.clusters.Clusters() {
		servers[c.Name] = c.Server
	}

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(title))
	b.WriteString("\n\n")
	if len(m.pickerItems) == 0 {
		b.WriteString(styles.MutedText.Render("Nothing to choose from."))
		b.WriteString("\n")
	}
	for i, item := range m.pickerItems {
		label := item
		if m.mode == modePickNamespace && item == "" {
			label = "All namespaces"
		}
		if srv := servers[item]; m.mode == modePickCluster && srv != "" {
			label += "  " + styles.MutedText.Render(srv)
		}
		if i == m.pickerCursor {
			b.WriteString(styles.Cursor.Render("› " + label))
		} else {
			b.WriteString("  " + label)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("enter choose · esc cancel"))
	return placeCenter(m.width, m.height, styles.Modal.Render(b.String()))
}

// renderHelp renders the key binding overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("Keys"))
	b.WriteString("\n")
	for _, g := range m.keys.helpGroups() {
		b.WriteString("\n")
		b.WriteString(styles.ColumnHeader.Render(g.Title))
		b.WriteString("\n")
		for _, kb := range g.Bindings {
			h := kb.Help()
			b.WriteString("  ")
			b.WriteString(styles.InfoText.Render(padRight(h.Key, 12)))
			b.WriteString(h.Desc)
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("Press any key to close"))
	return placeCenter(m.width, m.height, styles.Modal.Render(b.String()))
}
