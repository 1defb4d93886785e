// Package engine keeps a collection of named records synchronized with a
// small set of flat text files.
//
// The engine reads each target file into an in-memory record list on
// demand (prefetch), binds loaded records to externally supplied
// desired-state specs, lets callers mutate individual records through
// per-spec handles, and rewrites exactly the targets that changed - once,
// with all current records serialized back out, preceded by a one-time
// backup of the previous content and a generated warning header.
//
// Design model: single-threaded, one synchronization pass per engine use
// (prefetch, bind, mutate, flush). Flush is reentrant and fully drains
// the dirty target set every time it runs, so several handles sharing a
// target never re-trigger a write already satisfied by an earlier flush.
//
// Line-level parsing and physical file access are external collaborators:
// see the parser and accessor packages.
package engine
