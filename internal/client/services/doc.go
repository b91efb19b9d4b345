// Package services contains the application services of the travel journal
// client.
//
//   - SyncEngine: one sequential pass over every syncable table, uploading
//     staged media, pushing rows and flipping their synched flag, with
//     per-row failure isolation. Concurrent triggers share one pass.
//   - Session: the online flag, the current user and credential, and the
//     TriggerSync entry point.
//   - AuthService: offline signup and login against the local users table,
//     and adoption of an externally acquired bearer token.
//   - Watcher: periodic backend health probe that flips the session online
//     and triggers a pass on reconnect.
//   - Journal: capture flows that stage media and insert rows in one
//     transaction, plus photo deletion and eviction of uploaded assets.
package services
