// Package logging is the structured logging surface shared by geosync.
//
// The server logs JSON to stdout; the client writes to a rotated file so
// the REPL output stays clean. Both go through Logger.
package logging

import "context"

// Logger takes a message plus alternating key and value args:
//
//	log.Warn(ctx, "push rejected", "table", t, "uuid", id, "error", err)
//
// Sync code attaches table, queue_id, uuid and operation through With so
// every line of one entry carries them.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	With(args ...any) Logger
}
