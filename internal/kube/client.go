package kube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/fields"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"github.com/five82/fluidboard/internal/fluid"
	"github.com/five82/fluidboard/internal/livesync"
)

// Compile-time checks that Client serves both synchronizer endpoints.
var (
	_ livesync.Fetcher = (*Client)(nil)
	_ livesync.Dialer  = (*Client)(nil)
)

const defaultUserAgent = "fluidboard/0.1"

// Client talks to one cluster's API server.
type Client struct {
	dynamic   dynamic.Interface
	core      kubernetes.Interface
	watchHTTP *http.Client
	baseURL   *url.URL
	userAgent string
	log       logr.Logger
}

// NewClient builds a Client for cfg.
func NewClient(cfg *rest.Config, log logr.Logger) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("rest config is nil")
	}
	cfg = rest.CopyConfig(cfg)
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	dyn, err := dynamic.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init dynamic client: %w", err)
	}
	core, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init core client: %w", err)
	}

	// Watches are long lived; the request context bounds them instead.
	watchCfg := rest.CopyConfig(cfg)
	watchCfg.Timeout = 0
	httpClient, err := rest.HTTPClientFor(watchCfg)
	if err != nil {
		return nil, fmt.Errorf("init watch transport: %w", err)
	}
	base, err := parseBaseURL(cfg.Host)
	if err != nil {
		return nil, err
	}
	return &Client{
		dynamic:   dyn,
		core:      core,
		watchHTTP: httpClient,
		baseURL:   base,
		userAgent: cfg.UserAgent,
		log:       log,
	}, nil
}

// NewClientFromInterfaces assembles a Client from prebuilt parts. baseURL and
// watchHTTP may be nil, in which case Watch reports a permanent failure.
func NewClientFromInterfaces(dyn dynamic.Interface, core kubernetes.Interface, baseURL *url.URL, watchHTTP *http.Client, log logr.Logger) *Client {
	return &Client{
		dynamic:   dyn,
		core:      core,
		watchHTTP: watchHTTP,
		baseURL:   baseURL,
		userAgent: defaultUserAgent,
		log:       log,
	}
}

func (c *Client) resource(kind fluid.Kind, namespace string) dynamic.ResourceInterface {
	res := c.dynamic.Resource(kind.GVR())
	if strings.TrimSpace(namespace) == "" {
		return res
	}
	return res.Namespace(namespace)
}

// List pulls every object of the scope's kind, decoded and sorted.
func (c *Client) List(ctx context.Context, scope fluid.Scope) ([]fluid.Record, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	list, err := c.resource(scope.Kind, scope.Namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", scope, err)
	}
	return fluid.DecodeList(scope.Kind, list), nil
}

// Get fetches one object.
func (c *Client) Get(ctx context.Context, kind fluid.Kind, namespace, name string) (*unstructured.Unstructured, error) {
	obj, err := c.resource(kind, namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s %s/%s: %w", kind, namespace, name, err)
	}
	return obj, nil
}

// Delete removes one object with background propagation.
func (c *Client) Delete(ctx context.Context, kind fluid.Kind, namespace, name string) error {
	policy := metav1.DeletePropagationBackground
	err := c.resource(kind, namespace).Delete(ctx, name, metav1.DeleteOptions{PropagationPolicy: &policy})
	if err != nil {
		return fmt.Errorf("delete %s %s/%s: %w", kind, namespace, name, err)
	}
	return nil
}

// Create submits obj. Only namespaced Fluid kinds are accepted.
func (c *Client) Create(ctx context.Context, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	if obj == nil {
		return nil, errors.New("object is nil")
	}
	kind, err := fluid.ParseKind(obj.GetKind())
	if err != nil {
		return nil, err
	}
	if string(kind) != obj.GetKind() || obj.GetAPIVersion() != kind.APIVersion() {
		return nil, fmt.Errorf("%w: %s %s", fluid.ErrUnknownKind, obj.GetAPIVersion(), obj.GetKind())
	}
	ns := obj.GetNamespace()
	if strings.TrimSpace(ns) == "" {
		return nil, fmt.Errorf("create %s %s: namespace is required", kind, obj.GetName())
	}
	created, err := c.resource(kind, ns).Create(ctx, obj, metav1.CreateOptions{})
	if err != nil {
		return nil, fmt.Errorf("create %s %s/%s: %w", kind, ns, obj.GetName(), err)
	}
	return created, nil
}

// Namespaces returns namespace names in sorted order.
func (c *Client) Namespaces(ctx context.Context) ([]string, error) {
	list, err := c.core.CoreV1().Namespaces().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list namespaces: %w", err)
	}
	names := make([]string, 0, len(list.Items))
	for _, ns := range list.Items {
		names = append(names, ns.Name)
	}
	sort.Strings(names)
	return names, nil
}

// Events lists the core events recorded against the object with uid,
// newest first.
func (c *Client) Events(ctx context.Context, namespace, uid string) ([]fluid.Event, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, errors.New("list events: object uid is empty")
	}
	selector := fields.OneTermEqualSelector("involvedObject.uid", uid).String()
	list, err := c.core.CoreV1().Events(namespace).List(ctx, metav1.ListOptions{FieldSelector: selector})
	if err != nil {
		return nil, fmt.Errorf("list events for %s: %w", uid, err)
	}
	events := make([]fluid.Event, 0, len(list.Items))
	for _, ev := range list.Items {
		// Some servers and fakes ignore the field selector.
		if string(ev.InvolvedObject.UID) != uid {
			continue
		}
		events = append(events, decodeEvent(ev))
	}
	fluid.SortEvents(events)
	return events, nil
}

func decodeEvent(ev corev1.Event) fluid.Event {
	out := fluid.Event{
		Type:    ev.Type,
		Reason:  ev.Reason,
		Message: strings.TrimSpace(ev.Message),
		Source:  ev.Source.Component,
		Count:   ev.Count,
	}
	if out.Source == "" {
		out.Source = ev.ReportingController
	}
	switch {
	case !ev.LastTimestamp.IsZero():
		out.LastSeen = ev.LastTimestamp.Time
	case !ev.EventTime.IsZero():
		out.LastSeen = ev.EventTime.Time
	case !ev.FirstTimestamp.IsZero():
		out.LastSeen = ev.FirstTimestamp.Time
	default:
		out.LastSeen = ev.CreationTimestamp.Time
	}
	if out.Count == 0 && ev.Series != nil {
		out.Count = ev.Series.Count
	}
	return out
}

func parseBaseURL(host string) (*url.URL, error) {
	trimmed := strings.TrimSpace(host)
	if trimmed == "" {
		return nil, errors.New("cluster server address is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse server %q: %w", host, err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
