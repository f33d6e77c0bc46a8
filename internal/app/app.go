package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-logr/logr"

	"github.com/five82/fluidboard/internal/config"
	"github.com/five82/fluidboard/internal/fluid"
	"github.com/five82/fluidboard/internal/kube"
	"github.com/five82/fluidboard/internal/livesync"
	"github.com/five82/fluidboard/internal/prefs"
	"github.com/five82/fluidboard/internal/state"
	"github.com/five82/fluidboard/internal/ui"
)

// Options configure the fluidboard application. Non-empty fields override the
// config file and remembered preferences.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/fluidboard/prefs.toml
	Kubeconfig string
	Context    string
	Namespace  string
	Kind       string
	LogLevel   string
	// Console, when set, receives logs instead of the configured log file.
	Console io.Writer
}

// Env is everything a command needs once config, prefs and kubeconfig are
// loaded.
type Env struct {
	Config    config.Config
	Prefs     prefs.Prefs
	PrefsPath string
	Log       logr.Logger
	Registry  *kube.Registry
	Clusters  *state.ClusterStore

	opts   Options
	closer io.Closer
}

// Setup loads configuration and builds the cluster registry.
func Setup(opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.Kubeconfig != "" {
		cfg.Kubeconfig = opts.Kubeconfig
	}
	if opts.Context != "" {
		cfg.Context = opts.Context
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	env := &Env{Config: cfg, Prefs: userPrefs, PrefsPath: opts.PrefsPath, opts: opts}
	if opts.Console != nil {
		env.Log = NewConsoleLogger(opts.Console, cfg.LogLevel)
	} else {
		log, closer, err := NewFileLogger(cfg.LogFile, cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		env.Log, env.closer = log, closer
	}

	reg, err := kube.NewRegistry(cfg.Kubeconfig, cfg.Context, env.Log)
	if err != nil {
		_ = env.Close()
		return nil, err
	}
	env.Registry = reg

	ready := false
	env.Clusters = state.NewClusterStore(func(name string) {
		if !ready {
			return
		}
		if err := prefs.Update(env.PrefsPath, func(p *prefs.Prefs) { p.Cluster = name }); err != nil {
			env.Log.Error(err, "saving cluster preference")
		}
	})
	env.Clusters.SetClusters(reg.Clusters())
	env.Clusters.SetCurrent(env.initialCluster())
	ready = true

	env.Log.Info("fluidboard started", "cluster", env.Clusters.Current(), "clusters", len(reg.Clusters()))
	return env, nil
}

// initialCluster prefers an explicit --context, then the remembered cluster,
// then the kubeconfig default.
func (e *Env) initialCluster() string {
	if e.opts.Context != "" && e.Registry.Has(e.opts.Context) {
		return e.opts.Context
	}
	if e.Prefs.Cluster != "" && e.Registry.Has(e.Prefs.Cluster) {
		return e.Prefs.Cluster
	}
	return e.Registry.Default()
}

// Scope resolves the starting scope for the current cluster.
func (e *Env) Scope() (fluid.Scope, error) {
	scope := fluid.Scope{Cluster: e.Clusters.Current(), Kind: fluid.KindDataset}

	switch {
	case e.opts.Namespace != "":
		scope.Namespace = e.opts.Namespace
	case e.Prefs.Namespace != "":
		scope.Namespace = e.Prefs.Namespace
	default:
		scope.Namespace = e.Config.Namespace
	}

	switch {
	case e.opts.Kind != "":
		kind, err := fluid.ParseKind(e.opts.Kind)
		if err != nil {
			return fluid.Scope{}, err
		}
		scope.Kind = kind
	case e.Prefs.Kind != "":
		if kind, err := fluid.ParseKind(e.Prefs.Kind); err == nil {
			scope.Kind = kind
		}
	}
	return scope, nil
}

// Client returns the client for cluster, or for the current cluster when
// cluster is empty.
func (e *Env) Client(cluster string) (*kube.Client, error) {
	if cluster == "" {
		cluster = e.Clusters.Current()
	}
	return e.Registry.ClientFor(cluster)
}

// SyncOptions converts the [sync] config table into synchronizer options.
func (e *Env) SyncOptions() livesync.Options {
	s := e.Config.Sync
	return livesync.Options{
		BackoffBase:         s.BackoffBase,
		BackoffMax:          s.BackoffMax,
		MaxAttempts:         s.MaxAttempts,
		PollInterval:        s.PollInterval,
		DebounceWindow:      s.Debounce,
		InitialEventsWindow: s.InitialEventsWindow,
		Logger:              e.Log,
	}
}

// StartMetrics serves Prometheus metrics when metrics_addr is configured.
func (e *Env) StartMetrics(ctx context.Context) error {
	if e.Config.MetricsAddr == "" {
		return nil
	}
	_, err := ServeMetrics(ctx, e.Config.MetricsAddr, e.Log)
	return err
}

// Close releases the log file.
func (e *Env) Close() error {
	if e.closer == nil {
		return nil
	}
	err := e.closer.Close()
	e.closer = nil
	return err
}

// connect adapts the registry to the UI. The explicit nil return keeps a
// failed lookup from becoming a non-nil interface.
func (e *Env) connect(cluster string) (ui.ClusterClient, error) {
	client, err := e.Registry.ClientFor(cluster)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Run boots the fluidboard TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) (err error) {
	env, err := Setup(opts)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, env.Close()) }()

	if err := env.StartMetrics(ctx); err != nil {
		return err
	}
	scope, err := env.Scope()
	if err != nil {
		return err
	}

	return ui.Run(ui.Options{
		Context:   ctx,
		Clusters:  env.Clusters,
		Connect:   env.connect,
		Namespace: scope.Namespace,
		Kind:      scope.Kind,
		ThemeName: env.Prefs.Theme,
		PrefsPath: env.PrefsPath,
		Sync:      env.SyncOptions(),
		Logger:    env.Log,
	})
}
