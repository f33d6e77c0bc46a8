// Package fluid describes the Fluid custom resources the console shows.
//
// # Overview
//
// Fluid publishes its API under data.fluid.io/v1alpha1. This package names the
// kinds fluidboard understands (Dataset, DataLoad and the runtime family),
// maps them onto REST resources, and turns raw unstructured payloads into
// Record values with every optional field resolved once:
//
//	list, _ := dyn.Resource(fluid.KindDataset.GVR()).Namespace(ns).List(ctx, opts)
//	records := fluid.DecodeList(fluid.KindDataset, list)
//
// Missing display values become Placeholder ("-"). Runtime phases fall back to
// status.state, replica counts fall back to spec.replicas, and cache fields fall
// back from status.cacheStates to the flattened status fields.
//
// # Identity
//
// Every record and every ChangeEvent carries an ObjectID: the object's UID, or
// namespace/name/kind when the payload has none. Selection state is keyed by it.
//
// # Manifests
//
// DatasetRequest builds the objects the create-dataset flow submits: a Dataset,
// an optional runtime with the same name, and an optional DataLoad.
package fluid
