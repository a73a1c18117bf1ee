// Package feedback persists the append-only history of generation, accept,
// and reject events and derives acceptance statistics from it.
//
// Storage is SQLite. Events are never updated or deleted; statistics are
// always recomputed from the full log so repeated queries over an unchanged
// database return identical results.
package feedback
