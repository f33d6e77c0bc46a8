package kube

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/go-logr/logr"
	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"

	"github.com/five82/fluidboard/internal/state"
)

// ErrUnknownCluster is returned for a cluster name with no kubeconfig context.
var ErrUnknownCluster = errors.New("unknown cluster")

// Registry maps cluster names to clients. Every kubeconfig context is one
// cluster.
type Registry struct {
	raw            clientcmdapi.Config
	rules          clientcmd.ConfigAccess
	defaultContext string
	log            logr.Logger

	mu      sync.Mutex
	clients map[string]*Client
}

// NewRegistry loads kubeconfig (the client-go default chain when path is
// empty). defaultContext, when set, overrides the file's current-context.
func NewRegistry(path, defaultContext string, log logr.Logger) (*Registry, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if path != "" {
		rules.ExplicitPath = path
	}
	raw, err := rules.Load()
	if err != nil {
		return nil, fmt.Errorf("load kubeconfig: %w", err)
	}
	if len(raw.Contexts) == 0 {
		return nil, errors.New("load kubeconfig: no contexts defined")
	}
	return newRegistry(*raw, rules, defaultContext, log), nil
}

// NewRegistryFromConfig builds a registry over an in-memory kubeconfig.
func NewRegistryFromConfig(raw clientcmdapi.Config, defaultContext string, log logr.Logger) *Registry {
	return newRegistry(raw, nil, defaultContext, log)
}

func newRegistry(raw clientcmdapi.Config, rules clientcmd.ConfigAccess, defaultContext string, log logr.Logger) *Registry {
	return &Registry{
		raw:            raw,
		rules:          rules,
		defaultContext: defaultContext,
		log:            log.WithName("kube"),
		clients:        make(map[string]*Client),
	}
}

// Clusters lists the kubeconfig contexts sorted by name.
func (r *Registry) Clusters() []state.Cluster {
	names := make([]string, 0, len(r.raw.Contexts))
	for name := range r.raw.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]state.Cluster, 0, len(names))
	for _, name := range names {
		cl := state.Cluster{Name: name}
		if cluster, ok := r.raw.Clusters[r.raw.Contexts[name].Cluster]; ok && cluster != nil {
			cl.Server = cluster.Server
		}
		out = append(out, cl)
	}
	return out
}

// Default returns the configured context, else the current-context, else
// the first context by name.
func (r *Registry) Default() string {
	for _, name := range []string{r.defaultContext, r.raw.CurrentContext} {
		if _, ok := r.raw.Contexts[name]; ok && name != "" {
			return name
		}
	}
	if clusters := r.Clusters(); len(clusters) > 0 {
		return clusters[0].Name
	}
	return ""
}

// Has reports whether name is a known cluster.
func (r *Registry) Has(name string) bool {
	_, ok := r.raw.Contexts[name]
	return ok
}

// ClientFor returns the cached client for cluster name, building it on first
// use.
func (r *Registry) ClientFor(name string) (*Client, error) {
	if !r.Has(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCluster, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[name]; ok {
		return c, nil
	}

	cfg, err := clientcmd.NewNonInteractiveClientConfig(r.raw, name, &clientcmd.ConfigOverrides{}, r.rules).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("build config for %s: %w", name, err)
	}
	c, err := NewClient(cfg, r.log.WithValues("cluster", name))
	if err != nil {
		return nil, fmt.Errorf("init client for %s: %w", name, err)
	}
	r.clients[name] = c
	return c, nil
}
