package state

import (
	"slices"
	"sync"
)

// Cluster is one entry of the cluster picker.
type Cluster struct {
	Name   string
	Server string
}

// ClusterStore holds the cluster list and the current choice. Components get
// it passed in rather than reaching for a global.
type ClusterStore struct {
	mu       sync.RWMutex
	clusters []Cluster
	current  string
	onChange func(string)
}

// NewClusterStore returns a store whose onChange, when non-nil, is called
// outside the lock each time the current cluster changes.
func NewClusterStore(onChange func(name string)) *ClusterStore {
	return &ClusterStore{onChange: onChange}
}

// Clusters returns a copy of the known clusters.
func (c *ClusterStore) Clusters() []Cluster {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.clusters)
}

// SetClusters replaces the cluster list. When the current choice is no
// longer listed it falls back to the first entry.
func (c *ClusterStore) SetClusters(clusters []Cluster) {
	c.mu.Lock()
	c.clusters = slices.Clone(clusters)
	changed := false
	if !c.hasLocked(c.current) {
		next := ""
		if len(c.clusters) > 0 {
			next = c.clusters[0].Name
		}
		changed = next != c.current
		c.current = next
	}
	current := c.current
	c.mu.Unlock()

	if changed {
		c.notify(current)
	}
}

// Current returns the selected cluster name.
func (c *ClusterStore) Current() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// SetCurrent selects a cluster. It reports false when name is not listed.
func (c *ClusterStore) SetCurrent(name string) bool {
	c.mu.Lock()
	if !c.hasLocked(name) {
		c.mu.Unlock()
		return false
	}
	changed := c.current != name
	c.current = name
	c.mu.Unlock()

	if changed {
		c.notify(name)
	}
	return true
}

func (c *ClusterStore) hasLocked(name string) bool {
	if name == "" {
		return false
	}
	return slices.ContainsFunc(c.clusters, func(cl Cluster) bool { return cl.Name == name })
}

func (c *ClusterStore) notify(name string) {
	if c.onChange != nil {
		c.onChange(name)
	}
}
