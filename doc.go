// Package relic coordinates typed SQL access to an embedded database.
//
// A coordinator owns one engine connection and schedules callers into
// scopes: Read scopes run concurrently up to a configured cap, a
// Transaction scope runs exclusively inside an engine transaction.
// Admission is first-come-first-served, so a waiting writer is never
// starved by a stream of readers.
//
//	db, err := relic.Open(ctx, relic.Config{
//	    Dialect: dialect.SQLite,
//	    DSN:     "file:app.db",
//	    Schema:  appSchema,
//	})
//
//	err = db.Transaction(ctx, func(tx *relic.Tx) error {
//	    _, err := tx.Exec(ctx, db.Builder().
//	        Insert("users").
//	        Assign(name.Set("Bob")))
//	    return err
//	})
//
// The callback's return value decides the outcome: nil commits, an
// error or a panic rolls back. Nested Transaction calls run on
// savepoints, so an inner failure rewinds only the inner work.
//
// Statements are built with the typed builders of dialect/sql and the
// column tokens of schema; malformed statements fail before the engine
// sees them, and results are read through the typed Cursor accessors.
package relic
