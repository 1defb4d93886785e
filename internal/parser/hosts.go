package parser

// NewHosts returns a parser for hosts(5)-style files: an address column,
// a canonical hostname serving as the record name, and an optional list
// of aliases absorbed into the trailing field.
func NewHosts() *Tabular {
	return NewTabular("hosts", "name", []string{"ip", "name", "aliases"}, WithJoinRest())
}
