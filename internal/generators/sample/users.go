// Package sample provides the bundled `sample.users` generator, an example
// of hand-written SQL generators over the rp.users table.
package sample

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/satishbabariya/restdb/internal/core/fault"
	"github.com/satishbabariya/restdb/internal/core/generator"
	"github.com/satishbabariya/restdb/internal/core/query/domain"
)

// Name is the qualified name the generator registers under.
const Name = "sample.users"

const defaultPageSize = 5

var orderTerm = regexp.MustCompile(`(?i)^[A-Za-z_][A-Za-z0-9_]*(\s+(ASC|DESC))?$`)

func init() {
	generator.Register(Name, New)
}

// New builds the users generator.
func New() (generator.Generator, error) {
	return &generator.Operations{
		Query: map[string]generator.Func{
			"select": selectUsers,
		},
		Exec: map[string]generator.Func{
			"insert": insertUser,
			"update": updateUser,
			"delete": deleteUser,
		},
	}, nil
}

// selectUsers filters by us_name and pages with page (zero based) and size.
func selectUsers(_ context.Context, in generator.Input) (domain.Statement, error) {
	var sb strings.Builder
	var args []interface{}
	sb.WriteString("SELECT * FROM rp.users")

	if name, ok := in.Params.First("us_name"); ok {
		sb.WriteString(" WHERE us_name = ?")
		args = append(args, name)
	}

	if orderBy, ok := in.Params.First("orderBy"); ok {
		terms := strings.Split(orderBy, ",")
		for i, term := range terms {
			terms[i] = strings.TrimSpace(term)
			if !orderTerm.MatchString(terms[i]) {
				return domain.Statement{}, fault.New(fault.InvalidIdentifier, orderBy)
			}
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(terms, ", "))
	}

	page := intParam(in.Params, "page", -1)
	size := intParam(in.Params, "size", defaultPageSize)
	if page > -1 {
		sb.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, size, page*size)
	}

	return domain.Statement{SQL: sb.String(), Args: args}, nil
}

func insertUser(_ context.Context, in generator.Input) (domain.Statement, error) {
	if len(in.Records) == 0 {
		return domain.Statement{}, fault.New(fault.MissingBody)
	}
	rec := in.Records[0]
	return domain.Statement{
		SQL:  "INSERT INTO rp.users (us_name, us_last, us_email) VALUES (?, ?, ?)",
		Args: []interface{}{field(rec, "us_name"), field(rec, "us_last"), field(rec, "us_email")},
	}, nil
}

func updateUser(_ context.Context, in generator.Input) (domain.Statement, error) {
	name, last, err := userKey(in.Params)
	if err != nil {
		return domain.Statement{}, err
	}
	if len(in.Records) == 0 {
		return domain.Statement{}, fault.New(fault.MissingBody)
	}
	return domain.Statement{
		SQL:  "UPDATE rp.users SET us_email = ? WHERE us_name = ? AND us_last = ?",
		Args: []interface{}{field(in.Records[0], "us_email"), name, last},
	}, nil
}

func deleteUser(_ context.Context, in generator.Input) (domain.Statement, error) {
	name, last, err := userKey(in.Params)
	if err != nil {
		return domain.Statement{}, err
	}
	return domain.Statement{
		SQL:  "DELETE FROM rp.users WHERE us_name = ? AND us_last = ?",
		Args: []interface{}{name, last},
	}, nil
}

func userKey(params *domain.ParameterSet) (string, string, error) {
	name, ok := params.First("us_name")
	if !ok {
		return "", "", fault.New(fault.MissingTemplateValue, "us_name")
	}
	last, ok := params.First("us_last")
	if !ok {
		return "", "", fault.New(fault.MissingTemplateValue, "us_last")
	}
	return name, last, nil
}

func intParam(params *domain.ParameterSet, name string, fallback int) int {
	v, ok := params.First(name)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func field(rec domain.Record, name string) interface{} {
	v, _ := rec.Get(name)
	return v
}
