// Package dataset loads the cleaned ODI CSV tables into an immutable Snapshot.
//
// The Loader validates each table header against an explicit Schema, discards
// malformed rows, and left-joins player names onto every player id column. A
// Cache memoises the Snapshot per source-file fingerprint so request handlers
// can share one read-only copy until the files on disk change.
package dataset
