// Package kube provides the Kubernetes access layer for fluidboard.
//
// # Overview
//
// Client wraps one cluster's API server and serves both synchronizer
// endpoints:
//
//   - List: the pull endpoint, a dynamic-client list of one Fluid kind
//     decoded into fluid.Record values
//   - Watch: the push endpoint, a streaming GET on the collection path with
//     watch=true, read as newline-delimited JSON frames
//
// It also enumerates namespaces for the namespace picker and carries the
// Get, Create and Delete calls used by the detail screen and the CLI.
//
// Registry turns kubeconfig contexts into clusters and caches one Client per
// context:
//
//	reg, err := kube.NewRegistry("", "", log)
//	client, err := reg.ClientFor(reg.Default())
//	records, err := client.List(ctx, fluid.Scope{Kind: fluid.KindDataset})
//
// # Watch Frames
//
// Each line of the watch body is one metav1.WatchEvent. ADDED, MODIFIED and
// DELETED frames become fluid.ChangeEvent values carrying only the object ID.
// BOOKMARK frames are ignored, ERROR frames are logged, and lines that fail to
// decode are logged and dropped without ending the stream.
//
// # Error Classification
//
// Watch marks failures that a retry cannot fix with livesync.Permanent:
// requests that cannot be built and HTTP 401, 403, 404 and 405 responses.
// Everything else (refused connections, 5xx, throttling) is transient and
// goes through the synchronizer's backoff.
package kube
