// Package domain contains the request and result model shared by the
// compiler, the generators and the executor.
package domain

import (
	"strconv"
	"strings"
	"unicode"
)

// Verb is the leading SQL keyword of a statement, upper-cased.
type Verb string

const (
	// Select reads rows.
	Select Verb = "SELECT"
	// Insert creates rows.
	Insert Verb = "INSERT"
	// Update modifies rows.
	Update Verb = "UPDATE"
	// Delete removes rows.
	Delete Verb = "DELETE"
)

// Statement is SQL text with `?` placeholders and its positional arguments.
type Statement struct {
	SQL  string
	Args []interface{}
}

// Verb returns the first token of the SQL text, upper-cased.
func (s Statement) Verb() Verb {
	return VerbOf(s.SQL)
}

// VerbOf returns the first token of sql, upper-cased.
func VerbOf(sql string) Verb {
	fields := strings.FieldsFunc(strings.TrimSpace(sql), func(r rune) bool {
		return unicode.IsSpace(r) || r == '('
	})
	if len(fields) == 0 {
		return ""
	}
	return Verb(strings.ToUpper(fields[0]))
}

// Placeholders counts the `?` markers outside quoted literals and identifiers.
func (s Statement) Placeholders() int {
	count := 0
	scanPlaceholders(s.SQL, func(int) { count++ })
	return count
}

// NumberPlaceholders rewrites each `?` outside quoted literals and
// identifiers as `$1`, `$2`, ... in order.
func NumberPlaceholders(sql string) string {
	var b strings.Builder
	b.Grow(len(sql) + 8)
	last, n := 0, 0
	scanPlaceholders(sql, func(at int) {
		n++
		b.WriteString(sql[last:at])
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
		last = at + 1
	})
	if n == 0 {
		return sql
	}
	b.WriteString(sql[last:])
	return b.String()
}

// scanPlaceholders calls fn with the byte offset of every `?` outside quotes.
// Doubled quotes inside a literal close and reopen it, which leaves the
// state correct.
func scanPlaceholders(sql string, fn func(at int)) {
	var quote rune
	for i, r := range sql {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"' || r == '`':
			quote = r
		case r == '?':
			fn(i)
		}
	}
}

// Balanced reports whether the placeholder count equals the argument count.
func (s Statement) Balanced() bool {
	return s.Placeholders() == len(s.Args)
}
