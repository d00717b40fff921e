// Package database provides SQLite connection management and schema
// migrations for bridge-local persistence.
//
// The bridge keeps a small local database for snapshot history so that
// recent device readings survive restarts and are queryable without the
// time-series backend. SQLite in WAL mode with a single writer connection
// is enough at this scale (one device, one row every scan interval at
// most).
//
// Migrations are embedded SQL files applied in version order. Each
// migration runs in its own transaction, so a failed migration leaves
// earlier ones committed and later ones unapplied.
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// The database file is created with 0600 permissions since snapshot
// history can reveal occupancy patterns.
package database
