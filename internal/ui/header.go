package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/fluidboard/internal/fluid"
	"github.com/five82/fluidboard/internal/livesync"
)

// renderHeader renders the top bar: cluster, namespace and the connectivity
// indicator.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := lipgloss.Color(m.theme.Surface)
	on := func(s lipgloss.Style) lipgloss.Style { return s.Background(bg) }
	sep := on(styles.Text).Render("  ")

	cluster := m.cluster
	if cluster == "" {
		cluster = "no cluster"
	}
	namespace := m.namespace
	if namespace == "" {
		namespace = "all namespaces"
	}

	parts := []string{
		on(styles.Logo).Render("fluidboard"),
		on(styles.MutedText).Render("cluster ") + on(styles.Text).Render(cluster),
		on(styles.MutedText).Render("ns ") + on(styles.Text).Render(namespace),
		m.renderConnectivity(on),
	}
	if m.status.Refreshing > 0 {
		parts = append(parts, on(styles.FaintText).Render("refreshing"))
	}

	return lipgloss.NewStyle().
		Background(bg).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(max(m.width, 1)).
		Render(strings.Join(parts, sep))
}

func (m Model) renderConnectivity(on func(lipgloss.Style) lipgloss.Style) string {
	styles := m.theme.Styles()
	if m.sync == nil {
		return on(styles.MutedText).Render("○ OFFLINE")
	}
	st := m.status
	switch st.Mode() {
	case "live":
		return on(styles.SuccessText).Render("● LIVE")
	case "polling":
		return on(styles.WarningText.Bold(true)).Render("◌ POLLING")
	case "idle":
		return on(styles.MutedText).Render("○ IDLE")
	}
	label := "◌ CONNECTING"
	if st.RetryPending {
		label = fmt.Sprintf("◌ RECONNECTING %d/%d in %s", st.Attempts, m.maxAttempts(), st.RetryDelay)
	}
	return on(styles.InfoText).Render(label)
}

func (m Model) maxAttempts() int {
	if m.syncOpts.MaxAttempts > 0 {
		return m.syncOpts.MaxAttempts
	}
	return livesync.DefaultMaxAttempts
}

func (m Model) pollInterval() string {
	if m.syncOpts.PollInterval > 0 {
		return m.syncOpts.PollInterval.String()
	}
	return livesync.DefaultPollInterval.String()
}

// renderCommandBar renders the resource tabs, the search field and a help hint.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()
	var tabs []string
	for _, t := range []Tab{TabDatasets, TabRuntimes, TabDataLoads} {
		label := fmt.Sprintf("%d %s", int(t)+1, t)
		if t == TabRuntimes {
			label += " (" + m.runtimeKind.DisplayName() + ")"
		}
		if t == m.tab {
			tabs = append(tabs, styles.AccentText.Bold(true).Underline(true).Render(label))
		} else {
			tabs = append(tabs, styles.MutedText.Render(label))
		}
	}
	line := strings.Join(tabs, "   ")

	switch {
	case m.searching:
		line += "   " + m.search.View()
	case m.search.Value() != "":
		line += "   " + styles.InfoText.Render(fmt.Sprintf("filter: %q", m.search.Value()))
	}
	line += "   " + styles.FaintText.Render("? help")
	return line
}

// renderBanner shows the latest notice, or the persistent polling notice.
func (m Model) renderBanner() string {
	styles := m.theme.Styles()
	if m.flash != "" {
		return styles.InfoText.Render(m.flash)
	}
	if m.sync != nil && m.status.Polling {
		return styles.WarningText.Render(fmt.Sprintf(
			"Live updates unavailable; refreshing every %s. Press r to reconnect.", m.pollInterval()))
	}
	return ""
}

func kindTitle(k fluid.Kind) string {
	if k.IsRuntime() {
		return k.DisplayName() + " runtime"
	}
	return string(k)
}
