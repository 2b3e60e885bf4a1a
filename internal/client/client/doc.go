// Package client contains the client-side building blocks that talk to the
// outside world: the remote sync API and the local database bootstrap.
//
// # Overview
//
//  1. A transport-agnostic contract (Client) for the remote store:
//     FetchQueue, Save, TruncateAll and Ping.
//  2. HTTPClient, the REST/form implementation of that contract.
//  3. InitDatabase and RunMigrations, which open the local SQLite store and
//     apply the embedded goose migrations.
//
// # Error Handling
//
// Conditions are exposed as sentinel errors matched with errors.Is:
// ErrUnavailable (transport), ErrRejected (remote answered without
// confirming), ErrUnauthorized and ErrNotConfigured.
package client
