/*
Package session implements the table-backed session store.

A Store maps the session-storage verbs onto row operations of a ports.DataClient.
Every write appends a row, the current payload of a session is its row with the
greatest id, and superseded rows are pruned probabilistically after writes.

The store takes no locks. Concurrent writers of the same session race and the
insert that receives the highest id wins.
*/
package session
