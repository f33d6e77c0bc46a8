package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/five82/fluidboard/internal/fluid"
	"github.com/five82/fluidboard/internal/livesync"
)

// Source is a cluster endpoint that can both list and watch.
type Source interface {
	livesync.Fetcher
	livesync.Dialer
}

// WatchScope runs a synchronizer for scope without the TUI. It writes a line
// whenever the connectivity mode changes and after every refresh, and returns
// once ctx is cancelled.
func WatchScope(ctx context.Context, src Source, scope fluid.Scope, opts livesync.Options, out io.Writer) error {
	sync := livesync.New(src, src, opts)
	if err := sync.Open(scope); err != nil {
		return fmt.Errorf("open %s: %w", scope, err)
	}
	defer sync.Close()

	var (
		lastMode    string
		lastUpdated time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-sync.Updates():
			if !ok {
				return nil
			}
		}

		status := sync.Status()
		if mode := status.Mode(); mode != lastMode {
			lastMode = mode
			fmt.Fprintf(out, "%s  %s  %s\n", stamp(), scope, modeLabel(status))
		}

		snap := sync.Snapshot()
		if snap.LastUpdated.IsZero() || snap.LastUpdated.Equal(lastUpdated) {
			continue
		}
		lastUpdated = snap.LastUpdated
		if snap.LastError != nil {
			label := "refresh failed:"
			if snap.IsOffline() {
				label = fmt.Sprintf("refresh failed (%d in a row):", snap.ConsecutiveFailures)
			}
			fmt.Fprintf(out, "%s  %s  %s %v\n", stamp(), scope, color.New(color.FgRed).Sprint(label), snap.LastError)
			continue
		}
		fmt.Fprintf(out, "%s  %s  %d %s%s\n", stamp(), scope, len(snap.Records), scope.Kind.Plural(), summarizePhases(snap.Records))
	}
}

func stamp() string {
	return time.Now().Format(time.TimeOnly)
}

func modeLabel(st livesync.Status) string {
	label := strings.ToUpper(st.Mode())
	switch st.Mode() {
	case "live":
		return color.GreenString("%s", label)
	case "polling":
		return color.YellowString("%s", label)
	case "connecting":
		if st.RetryPending {
			return color.YellowString("RECONNECTING (attempt %d in %s)", st.Attempts, st.RetryDelay)
		}
		return color.CyanString("%s", label)
	default:
		return label
	}
}

// summarizePhases renders " (Bound 2, NotBound 1)" in first-seen order.
func summarizePhases(records []fluid.Record) string {
	if len(records) == 0 {
		return ""
	}
	counts := map[string]int{}
	var order []string
	for _, rec := range records {
		if _, seen := counts[rec.Phase]; !seen {
			order = append(order, rec.Phase)
		}
		counts[rec.Phase]++
	}
	parts := make([]string, 0, len(order))
	for _, phase := range order {
		parts = append(parts, fmt.Sprintf("%s %d", phase, counts[phase]))
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
