// Package state provides thread-safe state containers shared between the
// synchronizer and the UI.
//
// # Overview
//
// Two containers live here:
//
//   - Store holds the Record Set for one subscription scope: the records from
//     the last successful list call plus error and freshness bookkeeping.
//   - ClusterStore holds the cluster list and the user's current choice. It is
//     created by the app and handed to whoever needs it; nothing reads it
//     through package-level state.
//
// # Architecture
//
// The Store follows a producer-consumer pattern:
//
//	Producer (livesync loop):       Consumer (UI):
//	┌──────────────────────┐       ┌────────────────────┐
//	│ fetcher.List()       │       │                    │
//	│      ↓               │       │                    │
//	│ store.Update()       │──────→│ store.Snapshot()   │
//	│      ↓               │(mutex)│      ↓             │
//	│ wait for trigger     │       │ render table       │
//	└──────────────────────┘       └────────────────────┘
//
// Only the refresh completion path of a synchronizer writes to its Store.
// Everything else reads snapshots.
//
// # Update Semantics
//
//	// Success: replace the record set
//	store.Update(records, nil, now)
//	→ snapshot.Records = records
//	→ snapshot.Loaded = true
//	→ snapshot.LastError = nil
//	→ snapshot.LastUpdated = now
//	→ snapshot.ConsecutiveFailures = 0
//
//	// Failure: keep old records, record the error
//	store.Update(nil, err, now)
//	→ snapshot.Records = <unchanged>
//	→ snapshot.LastError = err
//	→ snapshot.LastUpdated = now
//	→ snapshot.ConsecutiveFailures++
//
// The UI decides what to do with a failed snapshot. The list screen replaces
// the table with an error placeholder and a retry action rather than showing
// the kept records as if they were current.
//
// # Defensive Copying
//
// Update and Snapshot copy the record slice so the UI can sort or filter a
// snapshot without racing the next refresh. Decoded records are treated as
// immutable, so the copy is shallow.
//
// # Testing Considerations
//
// Both containers are usable without setup:
//
//	store := &state.Store{}                  // zero value ready
//	clusters := state.NewClusterStore(nil)   // no change callback
package state
