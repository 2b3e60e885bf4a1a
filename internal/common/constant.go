// Package common contains shared constants, identifiers and sentinel errors
// used by both the geosync client and the reference server.
package common

// ResetTokenHeaderName is the HTTP header carrying the shared secret that
// authorizes a full cloud truncate.
const ResetTokenHeaderName = "X-Reset-Token"
