// Package services contains the application services of the geosync client:
// the geography mutation API, the sync engine, the reachability gate and
// device identity.
//
// Services own no package-level state. Each is constructed with the shared
// *sql.DB and builds repositories per call, bound either to the database or
// to the transaction the call runs in.
package services
