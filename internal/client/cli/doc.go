// Package cli provides the interactive geosync command-line client.
//
// It wires configuration, the local SQLite store, the remote client and the
// sync services, then runs a REPL that works offline and syncs on demand
// when the server is reachable. A background watcher keeps the
// online/offline mode shown in the prompt current.
//
// Key features:
//   - List countries, states and cities
//   - Add, rename and delete records (changes are queued for sync)
//   - Sync and status
//   - Full reset of cloud and local data
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
