// Package database provides SQLite connectivity and schema migrations for
// the devmodel journal.
//
// The database holds a single table of lifecycle events (see package
// journal). Migrations are plain SQL files embedded by package migrations
// and applied in version order, each inside its own transaction.
//
// Security Considerations:
//   - All queries use parameterised statements
//   - The database file is chmod 0600 after opening
//
// Usage:
//
//	db, err := database.Open(ctx, cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with an
// optional .down.sql companion. New columns must be NULLABLE or carry a
// DEFAULT so older binaries keep working against a newer schema.
package database
