package template

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// sqlLexer splits template text so that `:name` markers are found outside
// quoted literals and identifiers, and `::` casts are left alone.
var sqlLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `'(?:''|[^'])*'`},
	{Name: "QuotedIdent", Pattern: `"(?:""|[^"])*"`},
	{Name: "Cast", Pattern: `::`},
	{Name: "Param", Pattern: `:[\p{L}_][\p{L}\p{N}_]*`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Mark", Pattern: `\?`},
	{Name: "Text", Pattern: `[^':"?]+`},
})

// sqlText is the token stream of a template.
type sqlText struct {
	Parts []*sqlPart `@@*`
}

type sqlPart struct {
	Param *string `  @Param`
	Mark  *string `| @Mark`
	Text  *string `| @(String | QuotedIdent | Cast | Colon | Text)`
}

var sqlParser = participle.MustBuild[sqlText](
	participle.Lexer(sqlLexer),
)
