package template

import (
	"fmt"
	"sort"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/satishbabariya/restdb/internal/core/generator"
	"github.com/satishbabariya/restdb/internal/core/query/domain"
)

// File is the YAML layout of a template file.
//
//	scope: reports
//	generators:
//	  users:
//	    query:
//	      byName: SELECT * FROM rp.users WHERE us_name = :us_name
//	    exec:
//	      touch: UPDATE rp.users SET us_seen = 1 WHERE us_name = :us_name
type File struct {
	Scope      string                `yaml:"scope"`
	Generators map[string]Definition `yaml:"generators"`
}

// Definition lists the operations of one generator.
type Definition struct {
	Query map[string]string `yaml:"query"`
	Exec  map[string]string `yaml:"exec"`
}

// Set is the compiled content of one template file.
type Set struct {
	// Path is the file the set was loaded from.
	Path string

	generators map[string]*generator.Operations
}

// Parse compiles the templates in data.
func Parse(path string, data []byte) (*Set, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if !domain.ValidIdentifier(file.Scope) {
		return nil, fmt.Errorf("%s: invalid scope %q", path, file.Scope)
	}

	set := &Set{Path: path, generators: make(map[string]*generator.Operations)}
	for name, def := range file.Generators {
		if !domain.ValidIdentifier(name) {
			return nil, fmt.Errorf("%s: invalid generator name %q", path, name)
		}
		ops := &generator.Operations{
			Query: make(map[string]generator.Func, len(def.Query)),
			Exec:  make(map[string]generator.Func, len(def.Exec)),
		}
		for op, src := range def.Query {
			t, err := Compile(src)
			if err != nil {
				return nil, fmt.Errorf("%s: %s.%s: %w", path, name, op, err)
			}
			ops.Query[op] = t.Func(false)
		}
		for op, src := range def.Exec {
			t, err := Compile(src)
			if err != nil {
				return nil, fmt.Errorf("%s: %s.%s: %w", path, name, op, err)
			}
			ops.Exec[op] = t.Func(true)
		}
		set.generators[file.Scope+"."+name] = ops
	}
	return set, nil
}

// LoadFile reads and compiles one template file.
func LoadFile(fs afero.Fs, path string) (*Set, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	return Parse(path, data)
}

// Load compiles every file matching the glob patterns.
func Load(fs afero.Fs, patterns []string) ([]*Set, error) {
	var sets []*Set
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := afero.Glob(fs, pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid template pattern %q: %w", pattern, err)
		}
		sort.Strings(matches)
		for _, path := range matches {
			if seen[path] {
				continue
			}
			seen[path] = true
			set, err := LoadFile(fs, path)
			if err != nil {
				return nil, err
			}
			sets = append(sets, set)
		}
	}
	return sets, nil
}

// Names returns the qualified generator names in the set, sorted.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.generators))
	for name := range s.generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds the set's generators to reg and returns their names.
func (s *Set) Register(reg *generator.Registry) []string {
	for name, ops := range s.generators {
		ops := ops
		reg.Register(name, func() (generator.Generator, error) { return ops, nil })
	}
	return s.Names()
}
