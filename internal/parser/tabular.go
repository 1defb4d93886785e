package parser

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/flatsync/flatsync/internal/record"
)

// Tabular parses whitespace-separated column formats such as hosts files
// or fstab. Each data line maps one column per configured field; the last
// field may optionally absorb all remaining columns (space-joined), for
// formats with a trailing variable-length list.
//
// Input text is NFC normalized before splitting so that equal-looking
// names compare equal regardless of the source file's composition form.
type Tabular struct {
	format   string
	key      string
	fields   []string
	joinRest bool
	comment  string
	required int
}

// TabularOption configures a Tabular parser.
type TabularOption func(*Tabular)

// WithJoinRest makes the last configured field absorb every remaining
// column, space-joined. Without it, extra columns are a parse error.
func WithJoinRest() TabularOption {
	return func(t *Tabular) { t.joinRest = true }
}

// WithCommentPrefix overrides the line-comment introducer (default "#").
func WithCommentPrefix(prefix string) TabularOption {
	return func(t *Tabular) { t.comment = prefix }
}

// WithRequired sets how many leading fields a data line must provide.
// Defaults to all configured fields when joinRest is off, and all but the
// trailing rest-field when it is on.
func WithRequired(n int) TabularOption {
	return func(t *Tabular) { t.required = n }
}

// NewTabular creates a column parser. format names the file format in the
// generated header, key names the field holding a record's unique name
// ("" for purely positional formats), and fields gives the column order.
func NewTabular(format, key string, fields []string, opts ...TabularOption) *Tabular {
	t := &Tabular{
		format:   format,
		key:      key,
		fields:   fields,
		comment:  "#",
		required: -1,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.required < 0 {
		t.required = len(fields)
		if t.joinRest {
			t.required = len(fields) - 1
		}
	}
	return t
}

// Parse implements Parser.
func (t *Tabular) Parse(text string) ([]*record.Record, error) {
	text = norm.NFC.String(text)

	var records []*record.Record
	lines := strings.Split(text, "\n")
	// A trailing newline yields one final empty element, not a blank line.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	for i, line := range lines {
		switch {
		case strings.TrimSpace(line) == "":
			records = append(records, &record.Record{Kind: record.KindBlank, Text: line})

		case strings.HasPrefix(strings.TrimSpace(line), t.comment):
			records = append(records, &record.Record{Kind: record.KindComment, Text: line})

		default:
			rec, err := t.parseData(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			records = append(records, rec)
		}
	}

	return records, nil
}

func (t *Tabular) parseData(line string) (*record.Record, error) {
	cols := strings.Fields(line)
	if len(cols) < t.required {
		return nil, fmt.Errorf("expected at least %d columns, got %d", t.required, len(cols))
	}
	if !t.joinRest && len(cols) > len(t.fields) {
		return nil, fmt.Errorf("expected at most %d columns, got %d", len(t.fields), len(cols))
	}

	rec := &record.Record{Kind: record.KindData, Fields: make(map[string]string, len(t.fields))}
	for i, field := range t.fields {
		if i >= len(cols) {
			break
		}
		if t.joinRest && i == len(t.fields)-1 {
			rec.Fields[field] = strings.Join(cols[i:], " ")
		} else {
			rec.Fields[field] = cols[i]
		}
	}
	if t.key != "" {
		rec.Name = rec.Fields[t.key]
	}
	return rec, nil
}

// Serialize implements Parser. Data records emit their fields in column
// order, tab-separated, omitting empty trailing columns. Non-data records
// emit their original text verbatim.
func (t *Tabular) Serialize(records []*record.Record) (string, error) {
	var b strings.Builder
	for _, rec := range records {
		if t.NonData(rec.Kind) {
			b.WriteString(rec.Text)
			b.WriteString("\n")
			continue
		}

		// Every required column must hold a value, or the written line
		// would not survive a re-parse.
		for i, field := range t.fields {
			if i >= t.required {
				break
			}
			if rec.Fields[field] == "" {
				return "", fmt.Errorf("record %s: missing required field %q", rec, field)
			}
		}

		cols := make([]string, 0, len(t.fields))
		for _, field := range t.fields {
			cols = append(cols, rec.Fields[field])
		}
		for len(cols) > 0 && cols[len(cols)-1] == "" {
			cols = cols[:len(cols)-1]
		}

		b.WriteString(strings.Join(cols, "\t"))
		b.WriteString("\n")
	}
	return b.String(), nil
}

// NonData implements Parser.
func (t *Tabular) NonData(kind record.Kind) bool {
	return kind != record.KindData
}

// Fields implements Parser.
func (t *Tabular) Fields() []string {
	return t.fields
}

// Key implements Parser.
func (t *Tabular) Key() string {
	return t.key
}

// Header implements Parser.
func (t *Tabular) Header(now time.Time) string {
	return Header(t.comment, t.format, now)
}
