// Package template builds generators from SQL templates declared in YAML.
//
// A template is plain SQL with `:name` markers:
//
//	SELECT * FROM rp.users WHERE us_name = :us_name
//
// Each marker becomes a `?` placeholder bound to the first value of the
// request parameter of that name; exec templates fall back to the field of
// the first body record.
package template

import (
	"context"
	"fmt"
	"strings"

	"github.com/satishbabariya/restdb/internal/core/fault"
	"github.com/satishbabariya/restdb/internal/core/generator"
	"github.com/satishbabariya/restdb/internal/core/query/domain"
)

// Template is a compiled SQL template.
type Template struct {
	// SQL uses `?` placeholders.
	SQL string

	// Params names the value bound to each placeholder, in order.
	Params []string
}

// Compile tokenizes src and replaces every `:name` marker with `?`.
func Compile(src string) (*Template, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("empty template")
	}
	parsed, err := sqlParser.ParseString("", src)
	if err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}

	t := &Template{}
	var sb strings.Builder
	for _, part := range parsed.Parts {
		switch {
		case part.Param != nil:
			sb.WriteString("?")
			t.Params = append(t.Params, strings.TrimPrefix(*part.Param, ":"))
		case part.Mark != nil:
			return nil, fmt.Errorf("positional placeholder in template, use :name instead")
		case part.Text != nil:
			sb.WriteString(*part.Text)
		}
	}
	t.SQL = strings.TrimSpace(sb.String())
	return t, nil
}

// Bind collects the arguments for one request.
func (t *Template) Bind(in generator.Input, fromRecords bool) ([]interface{}, error) {
	args := make([]interface{}, 0, len(t.Params))
	for _, name := range t.Params {
		if v, ok := in.Params.First(name); ok {
			args = append(args, v)
			continue
		}
		if fromRecords && len(in.Records) > 0 {
			if v, ok := in.Records[0].Get(name); ok {
				args = append(args, v)
				continue
			}
		}
		return nil, fault.New(fault.MissingTemplateValue, name)
	}
	return args, nil
}

// Func returns the generator operation running the template.
func (t *Template) Func(fromRecords bool) generator.Func {
	return func(_ context.Context, in generator.Input) (domain.Statement, error) {
		args, err := t.Bind(in, fromRecords)
		if err != nil {
			return domain.Statement{}, err
		}
		return domain.Statement{SQL: t.SQL, Args: args}, nil
	}
}
