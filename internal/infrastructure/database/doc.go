// Package database opens the SQLite file shared by the element database and
// the persistence store and applies the embedded schema migrations.
//
// The file is opened with one connection, foreign keys on and, by default,
// WAL journaling. Only the controller goroutine writes, so the single
// connection never contends with itself; the API reads through the same
// pool.
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with a
// matching .down.sql, and are registered by the migrations package:
//
//	import _ "github.com/nerrad567/gray-logic-audio/migrations"
package database
