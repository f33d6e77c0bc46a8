// Package ui provides the Bubble Tea terminal interface for fluidboard.
//
// # Architecture Overview
//
// Model is the root tea.Model. It shows one subscription scope at a time
// (cluster, namespace and resource kind) and owns exactly one
// livesync.Synchronizer for it. Changing any part of the scope closes that
// synchronizer, which tears down its watch, timers and pending refreshes,
// and opens a fresh one with an empty selection.
//
// The synchronizer is bridged into the Bubble Tea loop by waitForSync, a
// command that blocks on Synchronizer.Updates and returns a syncMsg tagged
// with the synchronizer it came from. Messages from a synchronizer that has
// since been replaced are dropped.
//
// # Package Structure
//
//   - model.go: Model, Options, scope switching, messages and commands
//   - input.go: key handling per mode (list, detail, confirm, pickers, search)
//   - list.go: name filtering, client-side pagination and the resource table
//   - header.go: cluster and namespace line, connectivity indicator, tabs
//   - detail.go: status, metadata, events and YAML tabs of the detail screen
//   - modal.go: delete confirmation, namespace and cluster pickers, help
//   - keys.go, theme.go: bindings and color themes
//
// # Screens
//
//   - Datasets, Runtimes and DataLoads tabs; the runtimes tab cycles through
//     the runtime types
//   - Detail: status, metadata, events or YAML for the row under the cursor
//   - Namespace picker ("All namespaces" first) and cluster picker
//
// # Connectivity
//
// The header shows LIVE while the watch is connected, CONNECTING or
// RECONNECTING while dialing, and POLLING once the synchronizer has fallen
// back to periodic refreshes. Polling also shows a one-line notice; it never
// blocks the table. When a list call fails the table is replaced by an error
// placeholder, and r retries. While polling, r also asks for a reconnect.
//
// # Selection
//
// Space toggles the row under the cursor, a selects or deselects the whole
// page, and x clears. The selection lives in the synchronizer, which
// intersects it with every new record set, so rows that disappear are never
// left selected. d deletes the selection (or the cursor row) after a
// confirmation, then asks for a refresh.
package ui
