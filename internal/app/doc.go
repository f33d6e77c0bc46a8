// Package app is the composition root of fluidboard.
//
// # Overview
//
// Setup loads the TOML config, the remembered preferences and the kubeconfig,
// opens the log sink and builds the cluster registry. The resulting Env is
// shared by the TUI and the headless subcommands.
//
//	┌──────────────┐
//	│   Setup()    │
//	└──────┬───────┘
//	       ├─────> config.Load()        ~/.config/fluidboard/config.toml
//	       ├─────> prefs.Load()         theme, cluster, namespace, kind
//	       ├─────> NewFileLogger()      slog text handler behind logr
//	       ├─────> kube.NewRegistry()   one cluster per kubeconfig context
//	       └─────> state.ClusterStore   current cluster, persisted on change
//
// # Precedence
//
// The starting cluster is the --context flag, then the remembered cluster,
// then the config context or kubeconfig current-context. Namespace and kind
// follow the same order: flag, remembered value, config.
//
// # Headless watch
//
// WatchScope drives one livesync.Synchronizer and prints connectivity changes
// and refresh results. It is the terminal-only counterpart of the TUI and is
// handy for checking whether a cluster serves watches at all.
//
// # Logging
//
// The TUI owns the terminal, so its logs go to a file. Headless commands log
// to stderr through a tint handler. Both are exposed as logr.Logger, so
// V(n) verbosity works the same everywhere.
//
// # Metrics
//
// When metrics_addr is set, ServeMetrics exposes the livesync counters and
// gauges in Prometheus format at /metrics.
package app
