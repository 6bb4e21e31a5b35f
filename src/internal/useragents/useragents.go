package useragents

import (
	"regexp"
)

// DefaultIdentifier names the built-in entry present in every table.
const DefaultIdentifier = "default"

var identifierRegexp = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]*$`)

// IsValidIdentifier reports whether id may be used as a user-agent identifier.
func IsValidIdentifier(id string) bool {
	return identifierRegexp.MatchString(id)
}

// Info describes one user agent. Value may contain {{placeholders}}, see Expand.
type Info struct {
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	Value      string `json:"value"`
}

// BuiltinDefault is used when the resource does not override "default".
var BuiltinDefault = Info{
	Identifier: DefaultIdentifier,
	Title:      "Default",
	Value:      "Mozilla/5.0 ({{platform}}) AppleWebKit/{{engineVersion}} (KHTML, like Gecko) netpolicy/{{applicationVersion}} Safari/{{engineVersion}}",
}

// Table is an immutable, ordered set of user agents. The default entry is
// always present and always first.
type Table struct {
	order []string
	byID  map[string]Info
}

// NewTable returns a table holding only the built-in default.
func NewTable() *Table {
	return &Table{
		order: []string{DefaultIdentifier},
		byID:  map[string]Info{DefaultIdentifier: BuiltinDefault},
	}
}

// Identifiers returns identifiers in display order.
func (t *Table) Identifiers() []string {
	return append([]string(nil), t.order...)
}

// Len returns the number of entries including the default.
func (t *Table) Len() int {
	return len(t.order)
}

// Get returns the entry for id.
func (t *Table) Get(id string) (Info, bool) {
	info, ok := t.byID[id]
	return info, ok
}

// Resolve returns the entry for id, or the default entry when id is unknown.
func (t *Table) Resolve(id string) Info {
	if info, ok := t.byID[id]; ok {
		return info
	}
	return t.byID[DefaultIdentifier]
}

// All returns every entry in display order.
func (t *Table) All() []Info {
	out := make([]Info, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.byID[id])
	}
	return out
}
