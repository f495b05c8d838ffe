/*
Package domain contains the core models of the session table.

It defines the row shape persisted by every adapter, the predicate language used
to address rows, identifier validation and the error taxonomy shared by the
session store and the data clients. The package has no I/O.

# Key Entities

  - Record: One stored snapshot of a session payload.
  - Row: Column/value map handed to a data client on insert.
  - Query and Condition: Single-value select and conjunctive predicates (=, <, <=).
  - Errors: ConfigurationError, CorruptedDataError, StoreError and QueryError.
*/
package domain
