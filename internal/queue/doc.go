// Package queue persists release items in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages database connections, schema initialization, stats queries,
// stuck-item recovery, and status transitions. Items carry the release title,
// the quality descriptor as it stands after the last stage, and whether any
// component of it was assumed rather than detected.
//
// The database is treated as transient storage for in-flight work rather than
// a long-term archive. Schema changes bump the version in schema.go; users
// clear the database to adopt the new schema.
//
// Treat this package as the single source of truth for queue semantics; when you
// add new statuses or item fields, update schema.sql and bump schemaVersion.
package queue
