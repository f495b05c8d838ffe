/*
Package ports defines the driven ports (interfaces) of the session store.

These interfaces decouple the store from concrete backends, allowing the same
session semantics to run on SQLite, Redis or process memory.

# Key Interfaces

  - DataClient: Minimal relational access (single-value select, insert, conditional delete).
  - Handler: The pluggable session-storage verbs (open, read, write, destroy, close, gc).
  - Clock and RandomSource: Injected capabilities keeping pruning and gc deterministic in tests.
*/
package ports
