/*
Package tablesession is a session-persistence backend that keeps web sessions as rows of a relational table.

Every write appends a new row; the newest row of a session (highest id) is its current payload. Older rows are pruned
probabilistically after writes, and rows past the maximum lifetime are removed by garbage collection.

# Concept

The store speaks to storage only through a narrow query-builder style contract (ports.DataClient): select the first
value of a column, insert a row, delete by conditions. Adapters implement that contract for SQLite, Redis and memory,
so the session logic in pkg/session stays the same regardless of where rows live.

# Table Layout

	id           auto-increment key, strictly increasing per insert
	session_id   opaque session identifier
	time_created unix seconds at insert
	session_data base64 of the payload

# Usage

	store, err := tablesession.NewMemoryStore(domain.DefaultTable)
	if err != nil {
		log.Fatal(err)
	}

	_ = store.Write(ctx, "abc", "user|s:5:\"alice\";")
	data, _ := store.Read(ctx, "abc")

For a durable store use NewSQLiteStore, which creates the table and its indexes on first open.
*/
package tablesession
