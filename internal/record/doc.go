// Package record defines the data model shared by the parser, accessor,
// and engine layers: the Record entry itself and the Spec contract for
// externally supplied desired state.
//
// A Record belongs to exactly one target (a flat file treated as the unit
// of read/write/backup). A prefetch pass replaces the entire in-memory
// record set wholesale; the engine calls that set a generation.
package record
