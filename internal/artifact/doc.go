// Package artifact persists rendered report artifacts to disk.
//
// The Writer creates parent directories as needed and wraps failures in
// ErrDestinationUnwritable. Failures are isolated per artifact: the caller
// records them and keeps producing the remaining artifacts.
//
// Capabilities models the skip flags as one explicit structure instead of
// scattered conditionals, so the set of artifacts a run produces is visible
// in a single place.
package artifact
