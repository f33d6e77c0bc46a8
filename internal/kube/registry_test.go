package kube

import (
	"errors"
	"testing"

	"github.com/go-logr/logr"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

func testKubeconfig() clientcmdapi.Config {
	cfg := clientcmdapi.NewConfig()
	cfg.Clusters["east"] = &clientcmdapi.Cluster{Server: "https://east.example.com:6443"}
	cfg.Clusters["west"] = &clientcmdapi.Cluster{Server: "https://west.example.com"}
	cfg.AuthInfos["admin"] = &clientcmdapi.AuthInfo{Token: "t"}
	cfg.Contexts["prod-west"] = &clientcmdapi.Context{Cluster: "west", AuthInfo: "admin"}
	cfg.Contexts["dev-east"] = &clientcmdapi.Context{Cluster: "east", AuthInfo: "admin"}
	cfg.CurrentContext = "prod-west"
	return *cfg
}

func TestRegistry_ClustersAndDefault(t *testing.T) {
	r := NewRegistryFromConfig(testKubeconfig(), "", logr.Discard())

	clusters := r.Clusters()
	if len(clusters) != 2 {
		t.Fatalf("Clusters = %#v", clusters)
	}
	if clusters[0].Name != "dev-east" || clusters[0].Server != "https://east.example.com:6443" {
		t.Fatalf("first cluster = %#v", clusters[0])
	}
	if got := r.Default(); got != "prod-west" {
		t.Fatalf("Default = %q, want current-context", got)
	}

	r = NewRegistryFromConfig(testKubeconfig(), "dev-east", logr.Discard())
	if got := r.Default(); got != "dev-east" {
		t.Fatalf("Default = %q, want configured context", got)
	}

	r = NewRegistryFromConfig(testKubeconfig(), "gone", logr.Discard())
	if got := r.Default(); got != "prod-west" {
		t.Fatalf("Default = %q, want fallback to current-context", got)
	}
}

func TestRegistry_ClientFor(t *testing.T) {
	r := NewRegistryFromConfig(testKubeconfig(), "", logr.Discard())

	if _, err := r.ClientFor("nope"); !errors.Is(err, ErrUnknownCluster) {
		t.Fatalf("ClientFor(nope) error = %v, want ErrUnknownCluster", err)
	}

	c1, err := r.ClientFor("dev-east")
	if err != nil {
		t.Fatalf("ClientFor returned error: %v", err)
	}
	if c1.baseURL.Host != "east.example.com:6443" {
		t.Fatalf("baseURL = %v", c1.baseURL)
	}
	c2, err := r.ClientFor("dev-east")
	if err != nil {
		t.Fatalf("ClientFor returned error: %v", err)
	}
	if c1 != c2 {
		t.Fatal("ClientFor should cache clients")
	}
}
