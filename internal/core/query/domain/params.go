package domain

import (
	"net/url"
	"strings"
)

// ParameterSet holds request parameters. Names are case-sensitive and keep
// the order in which they first appeared; values keep their request order.
type ParameterSet struct {
	names  []string
	values map[string][]string
}

// NewParameterSet returns an empty set.
func NewParameterSet() *ParameterSet {
	return &ParameterSet{values: make(map[string][]string)}
}

// ParseParameters decodes a raw URL query preserving parameter order.
func ParseParameters(rawQuery string) (*ParameterSet, error) {
	ps := NewParameterSet()
	for _, pair := range strings.FieldsFunc(rawQuery, func(r rune) bool { return r == '&' }) {
		name, value, _ := strings.Cut(pair, "=")
		var err error
		if name, err = url.QueryUnescape(name); err != nil {
			return nil, err
		}
		if value, err = url.QueryUnescape(value); err != nil {
			return nil, err
		}
		if name == "" {
			continue
		}
		ps.Add(name, value)
	}
	return ps, nil
}

// Add appends value to name.
func (p *ParameterSet) Add(name, value string) *ParameterSet {
	if _, ok := p.values[name]; !ok {
		p.names = append(p.names, name)
	}
	p.values[name] = append(p.values[name], value)
	return p
}

// Len returns the number of distinct names.
func (p *ParameterSet) Len() int {
	if p == nil {
		return 0
	}
	return len(p.names)
}

// Names returns the parameter names in first-appearance order.
func (p *ParameterSet) Names() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Values returns the values of name.
func (p *ParameterSet) Values(name string) []string {
	if p == nil {
		return nil
	}
	return p.values[name]
}

// First returns the first value of name.
func (p *ParameterSet) First(name string) (string, bool) {
	vs := p.Values(name)
	if len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// Has reports whether name was supplied.
func (p *ParameterSet) Has(name string) bool {
	return len(p.Values(name)) > 0
}
