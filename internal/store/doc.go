// Package store persists the history of finished entries as an append-only
// JSONL journal. entrystackd appends to it; the CLI reads and prunes it.
package store
