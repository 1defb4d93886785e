package parser

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/flatsync/flatsync/internal/record"
)

// KeyValue parses "key<sep>value" formats (environment files, simple
// daemon configs). The key doubles as the record name; the single data
// attribute is "value".
type KeyValue struct {
	format  string
	sep     string
	comment string
}

// NewKeyValue creates a key/value parser. sep is the key/value separator
// as written on disk (typically "=").
func NewKeyValue(format, sep string) *KeyValue {
	return &KeyValue{format: format, sep: sep, comment: "#"}
}

// Parse implements Parser.
func (p *KeyValue) Parse(text string) ([]*record.Record, error) {
	text = norm.NFC.String(text)

	var records []*record.Record
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			records = append(records, &record.Record{Kind: record.KindBlank, Text: line})

		case strings.HasPrefix(trimmed, p.comment):
			records = append(records, &record.Record{Kind: record.KindComment, Text: line})

		default:
			key, value, found := strings.Cut(trimmed, p.sep)
			if !found {
				return nil, fmt.Errorf("line %d: missing %q separator", i+1, p.sep)
			}
			key = strings.TrimSpace(key)
			if key == "" {
				return nil, fmt.Errorf("line %d: empty key", i+1)
			}
			records = append(records, &record.Record{
				Kind:   record.KindData,
				Name:   key,
				Fields: map[string]string{"value": strings.TrimSpace(value)},
			})
		}
	}

	return records, nil
}

// Serialize implements Parser.
func (p *KeyValue) Serialize(records []*record.Record) (string, error) {
	var b strings.Builder
	for _, rec := range records {
		if p.NonData(rec.Kind) {
			b.WriteString(rec.Text)
			b.WriteString("\n")
			continue
		}
		if rec.Name == "" {
			return "", fmt.Errorf("record %s: key/value records require a name", rec)
		}
		b.WriteString(rec.Name)
		b.WriteString(p.sep)
		b.WriteString(rec.Fields["value"])
		b.WriteString("\n")
	}
	return b.String(), nil
}

// NonData implements Parser.
func (p *KeyValue) NonData(kind record.Kind) bool {
	return kind != record.KindData
}

// Fields implements Parser.
func (p *KeyValue) Fields() []string {
	return []string{"value"}
}

// Key implements Parser. Key/value records are named by their key itself,
// which is not one of the data fields, so this reports "" and the engine
// relies on Record.Name directly.
func (p *KeyValue) Key() string {
	return ""
}

// Header implements Parser.
func (p *KeyValue) Header(now time.Time) string {
	return Header(p.comment, p.format, now)
}
