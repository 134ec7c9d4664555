// Package fault provides the error type shared by every restdb layer.
//
// A fault carries a Kind, which maps to a stable RSTnnnnE code and an HTTP
// status, the arguments of its message, and an optional cause. Messages are
// rendered by the i18n package at the HTTP boundary.
package fault

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors used to classify driver failures.
var (
	// ErrUniqueConstraint indicates a unique constraint violation.
	ErrUniqueConstraint = errors.New("restdb: unique constraint violation")

	// ErrForeignKeyConstraint indicates a foreign key constraint violation.
	ErrForeignKeyConstraint = errors.New("restdb: foreign key constraint violation")

	// ErrNullConstraint indicates a not-null constraint violation.
	ErrNullConstraint = errors.New("restdb: null constraint violation")

	// ErrConnection indicates a database connection error.
	ErrConnection = errors.New("restdb: connection error")
)

// Kind identifies a failure condition.
type Kind string

const (
	Internal Kind = "Internal"

	// Validation.
	AllRowsDisallowed            Kind = "AllRowsDisallowed"
	AmbiguousInsertValue         Kind = "AmbiguousInsertValue"
	MissingBody                  Kind = "MissingBody"
	EmptyRecord                  Kind = "EmptyRecord"
	RecordShapeMismatch          Kind = "RecordShapeMismatch"
	TooManyUpdateRecords         Kind = "TooManyUpdateRecords"
	DuplicateKeyValue            Kind = "DuplicateKeyValue"
	KeyValueConflictsWithBody    Kind = "KeyValueConflictsWithBody"
	TooManyKeyValues             Kind = "TooManyKeyValues"
	NonKeyFieldConflictsWithBody Kind = "NonKeyFieldConflictsWithBody"
	AmbiguousNonKeyValue         Kind = "AmbiguousNonKeyValue"
	IncompleteKey                Kind = "IncompleteKey"
	MissingKeyValues             Kind = "MissingKeyValues"
	KeyCountMismatch             Kind = "KeyCountMismatch"
	NonKeyFieldInDelete          Kind = "NonKeyFieldInDelete"
	AmbiguousKeyValue            Kind = "AmbiguousKeyValue"
	NothingToUpdate              Kind = "NothingToUpdate"
	NoPrimaryKey                 Kind = "NoPrimaryKey"
	InvalidTableName             Kind = "InvalidTableName"
	InvalidIdentifier            Kind = "InvalidIdentifier"
	MalformedObjectName          Kind = "MalformedObjectName"
	MalformedBody                Kind = "MalformedBody"
	MalformedQuery               Kind = "MalformedQuery"
	MissingTemplateValue         Kind = "MissingTemplateValue"

	// Not found.
	RecordNotFound    Kind = "RecordNotFound"
	GeneratorNotFound Kind = "GeneratorNotFound"
	OperationNotFound Kind = "OperationNotFound"

	// Configuration.
	MetadataDisabled Kind = "MetadataDisabled"

	// Metadata.
	UnsupportedMetadataOperation Kind = "UnsupportedMetadataOperation"
	MetadataFailed               Kind = "MetadataFailed"

	// Execution.
	QueryFailed            Kind = "QueryFailed"
	SelectFailed           Kind = "SelectFailed"
	InsertFailed           Kind = "InsertFailed"
	UpdateFailed           Kind = "UpdateFailed"
	DeleteFailed           Kind = "DeleteFailed"
	ExecuteFailed          Kind = "ExecuteFailed"
	PrimaryKeyLookupFailed Kind = "PrimaryKeyLookupFailed"
)

type kindInfo struct {
	code   string
	status int
}

var kinds = map[Kind]kindInfo{
	Internal:                     {"RST0000E", http.StatusInternalServerError},
	QueryFailed:                  {"RST0001E", http.StatusInternalServerError},
	SelectFailed:                 {"RST0001E", http.StatusInternalServerError},
	AmbiguousInsertValue:         {"RST0002E", http.StatusInternalServerError},
	InsertFailed:                 {"RST0003E", http.StatusInternalServerError},
	MissingBody:                  {"RST0004E", http.StatusInternalServerError},
	GeneratorNotFound:            {"RST0005E", http.StatusNotFound},
	DeleteFailed:                 {"RST0006E", http.StatusInternalServerError},
	ExecuteFailed:                {"RST0007E", http.StatusInternalServerError},
	PrimaryKeyLookupFailed:       {"RST0007E", http.StatusInternalServerError},
	TooManyKeyValues:             {"RST0008E", http.StatusInternalServerError},
	AmbiguousNonKeyValue:         {"RST0009E", http.StatusInternalServerError},
	TooManyUpdateRecords:         {"RST0010E", http.StatusInternalServerError},
	KeyValueConflictsWithBody:    {"RST0011E", http.StatusInternalServerError},
	NonKeyFieldConflictsWithBody: {"RST0012E", http.StatusInternalServerError},
	UpdateFailed:                 {"RST0013E", http.StatusInternalServerError},
	MissingKeyValues:             {"RST0014E", http.StatusInternalServerError},
	NonKeyFieldInDelete:          {"RST0015E", http.StatusInternalServerError},
	IncompleteKey:                {"RST0016E", http.StatusInternalServerError},
	KeyCountMismatch:             {"RST0016E", http.StatusInternalServerError},
	AmbiguousKeyValue:            {"RST0017E", http.StatusInternalServerError},
	InvalidTableName:             {"RST0018E", http.StatusInternalServerError},
	RecordNotFound:               {"RST0019E", http.StatusNotFound},
	AllRowsDisallowed:            {"RST0020E", http.StatusInternalServerError},
	MalformedObjectName:          {"RST0021E", http.StatusInternalServerError},
	MetadataDisabled:             {"RST0022E", http.StatusInternalServerError},
	MetadataFailed:               {"RST0023E", http.StatusInternalServerError},
	UnsupportedMetadataOperation: {"RST0024E", http.StatusInternalServerError},
	DuplicateKeyValue:            {"RST0025E", http.StatusInternalServerError},
	OperationNotFound:            {"RST0026E", http.StatusNotFound},
	NothingToUpdate:              {"RST0027E", http.StatusInternalServerError},
	NoPrimaryKey:                 {"RST0028E", http.StatusInternalServerError},
	MalformedBody:                {"RST0029E", http.StatusInternalServerError},
	InvalidIdentifier:            {"RST0030E", http.StatusInternalServerError},
	EmptyRecord:                  {"RST0031E", http.StatusInternalServerError},
	RecordShapeMismatch:          {"RST0032E", http.StatusInternalServerError},
	MissingTemplateValue:         {"RST0033E", http.StatusInternalServerError},
	MalformedQuery:               {"RST0034E", http.StatusInternalServerError},
}

// Kinds returns every known kind.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	return out
}

// Code returns the stable error code of the kind.
func (k Kind) Code() string {
	if info, ok := kinds[k]; ok {
		return info.code
	}
	return kinds[Internal].code
}

// Status returns the HTTP status reported for the kind.
func (k Kind) Status() int {
	if info, ok := kinds[k]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// Error is a restdb failure.
type Error struct {
	// Kind identifies the condition.
	Kind Kind

	// Args are the message arguments, in catalog order.
	Args []interface{}

	// Cause is the underlying error, if any.
	Cause error
}

// New creates a fault without a cause.
func New(kind Kind, args ...interface{}) *Error {
	return &Error{Kind: kind, Args: args}
}

// Wrap creates a fault around cause.
func Wrap(kind Kind, cause error, args ...interface{}) *Error {
	return &Error{Kind: kind, Args: args, Cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "restdb [%s] %s", e.Kind.Code(), e.Kind)
	if len(e.Args) > 0 {
		b.WriteString(" ")
		b.WriteString(strings.TrimSuffix(strings.TrimPrefix(fmt.Sprint(e.Args), "["), "]"))
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a fault of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// As returns the outermost fault in err's chain.
func As(err error) (*Error, bool) {
	var f *Error
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// KindOf returns the kind of the outermost fault in err's chain, or
// Internal when err carries none.
func KindOf(err error) Kind {
	if f, ok := As(err); ok {
		return f.Kind
	}
	return Internal
}

// IsKind reports whether err carries a fault of the given kind.
func IsKind(err error, kind Kind) bool {
	return errors.Is(err, &Error{Kind: kind})
}

// IsNotFound reports whether err maps to a 404.
func IsNotFound(err error) bool {
	return KindOf(err).Status() == http.StatusNotFound
}

// IsUniqueConstraint checks if an error is a unique constraint violation.
func IsUniqueConstraint(err error) bool {
	return errors.Is(err, ErrUniqueConstraint)
}
