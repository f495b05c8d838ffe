// Package sqlite provides a ports.DataClient backed by database/sql and the
// CGO-free modernc.org/sqlite driver, with embedded migrations for session tables.
package sqlite
