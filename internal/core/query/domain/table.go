package domain

import (
	"regexp"
	"strings"

	"github.com/satishbabariya/restdb/internal/core/fault"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// ValidIdentifier reports whether name is a plain SQL identifier.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// CheckIdentifier returns an InvalidIdentifier fault for anything that is
// not a plain SQL identifier.
func CheckIdentifier(name string) error {
	if !ValidIdentifier(name) {
		return fault.New(fault.InvalidIdentifier, name)
	}
	return nil
}

// Table identifies a table, optionally qualified by schema.
type Table struct {
	Schema string
	Name   string
}

// ParseTable parses `schema.table` or `table`. A bare name is qualified with
// defaultSchema when one is configured.
func ParseTable(object, defaultSchema string) (Table, error) {
	parts := strings.Split(object, ".")
	var t Table
	switch len(parts) {
	case 1:
		t = Table{Schema: defaultSchema, Name: parts[0]}
	case 2:
		t = Table{Schema: parts[0], Name: parts[1]}
	default:
		return Table{}, fault.New(fault.InvalidTableName, object)
	}
	if t.Name == "" || (len(parts) == 2 && t.Schema == "") {
		return Table{}, fault.New(fault.InvalidTableName, object)
	}
	if t.Schema != "" {
		if err := CheckIdentifier(t.Schema); err != nil {
			return Table{}, err
		}
	}
	if err := CheckIdentifier(t.Name); err != nil {
		return Table{}, err
	}
	return t, nil
}

// String returns the canonical `schema.table` (or `table`) spelling used in
// SQL and as the key cache identifier.
func (t Table) String() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}
