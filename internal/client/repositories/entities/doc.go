// Package entities provides the client-side persistence layer for the
// geography tables: countries, states and cities.
//
// # Data Model
//
// Each row carries a uuid, a name, an optional parent reference
// (country_uuid on states, state_uuid on cities), a last_updated timestamp
// and a nullable deleted_at. Rows are never physically removed outside of a
// full reset; deleted_at marks them as gone for listings while keeping them
// for sync propagation.
//
// # Conflict resolution
//
// Local writes (Save, SoftDelete) always win. Writes coming from the remote
// (ApplyRemote, ApplyRemoteDelete) only land when their last_updated is not
// older than the stored one. Timestamps use timex.TimestampLayout, so the
// comparison is done in SQL on the strings.
//
// Typical Usage
//
//	repo := entities.NewSQLiteRepository(db)
//	id, _ := repo.Save(ctx, models.TableCountries, &models.Record{Name: "Testland"})
//	rows, _ := repo.List(ctx, models.TableCountries)
//	err := repo.SoftDeleteIfChildless(ctx, models.TableCountries, id, timex.Now())
package entities
