// Package history persists a record of every render in SQLite.
//
// The database lives at <state_dir>/history.db. Schema versioning follows a
// single schema_version row; a mismatch is reported as ErrSchemaMismatch and
// the file can simply be deleted, since history is informational only.
package history
