// Package config loads fluidboard's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/fluidboard/config.toml
//  3. If the file does not exist, fall back to defaults
//  4. If the file exists but fields are missing, empty or non-positive, use defaults
//
// A file that fails to parse is an error; fluidboard does not guess at a
// half-read configuration.
//
// # Fields
//
//   - kubeconfig: kubeconfig path; empty uses $KUBECONFIG or ~/.kube/config
//   - context: default cluster; empty uses the kubeconfig current-context
//   - namespace: default namespace filter; empty means all namespaces
//   - log_file: log destination (default ~/.local/state/fluidboard/fluidboard.log)
//   - log_level: debug, info or error
//   - metrics_addr: listen address for /metrics; empty disables it
//
// The [sync] table tunes the live synchronizer. All values are
// milliseconds except max_attempts:
//
//	[sync]
//	backoff_base_ms = 1000
//	backoff_max_ms = 10000
//	max_attempts = 5
//	poll_interval_ms = 15000
//	debounce_ms = 1000
//	initial_events_window_ms = 2000
//
// # Path Expansion
//
// Paths starting with ~ are expanded to the user's home directory and made
// absolute.
package config
