// Package parser converts target text to ordered record sequences and back.
//
// The engine treats a Parser as an external collaborator: it never inspects
// line syntax itself. A Parser must round-trip: serializing the records
// produced by parsing some text reproduces semantically equivalent content.
package parser

import (
	"fmt"
	"time"

	"github.com/flatsync/flatsync/internal/record"
)

// Parser is the line-level codec for one flat file format.
type Parser interface {
	// Parse converts raw target text into an ordered record sequence.
	// Comment and blank lines become non-data records preserved verbatim.
	Parse(text string) ([]*record.Record, error)

	// Serialize writes records back out as target text, in order.
	Serialize(records []*record.Record) (string, error)

	// NonData reports whether a record kind carries no data (comments,
	// blank lines). Non-data records are never matched against specs.
	NonData(kind record.Kind) bool

	// Fields lists the attribute names valid for this format's data
	// records, in column order.
	Fields() []string

	// Key names the attribute that serves as a record's unique name
	// within a target, or "" for formats with only positional records.
	Key() string

	// Header returns the generated warning header to prepend on every
	// write. The timestamp comes from the engine's clock so tests stay
	// deterministic.
	Header(now time.Time) string
}

// Header renders the standard autogeneration warning used by the shipped
// parsers. commentPrefix is the format's line-comment introducer.
func Header(commentPrefix, format string, now time.Time) string {
	return fmt.Sprintf(
		"%s HEADER: This %s file was autogenerated at %s by flatsync.\n"+
			"%s HEADER: While it can still be managed manually, it is definitely not recommended.\n",
		commentPrefix, format, now.Format(time.RFC3339),
		commentPrefix)
}
