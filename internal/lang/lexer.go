// Package lang implements TagSpeak's lexer, AST, and recursive-descent
// parser. Lexing uses participle's lexer.Simple tokenizer; the packet
// grammar itself is hand-written rather than built from participle's
// struct-tag grammar, since the required diagnostics (caret-accurate
// line/column, a specific taxonomy of parse error codes) need parser-level
// control a declarative grammar builder doesn't expose.
package lang

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// simpleLexer tokenizes TagSpeak source. Rules are tried in order, so
// multi-character operators are listed before their single-character
// prefixes (">=" before ">", "==" before bare identifiers, etc).
var simpleLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "LineComment", Pattern: `(#|//)[^\n]*`},
	{Name: "BlockComment", Pattern: `(?s)/\*.*?\*/`},
	{Name: "String", Pattern: `"([^"\\]|\\.)*"`},
	{Name: "Number", Pattern: `\d+(\.\d+)?`},
	// Path covers bare file paths and URLs used unquoted in @arg position
	// (out.json, ../outside.json, /script.tgsk, https://host/p) — listed
	// before Ident so a run containing a separator wins over a plain word.
	{Name: "Path", Pattern: `[A-Za-z][A-Za-z0-9+.-]*://[^\s\]}),]*|(\.\.?/|/)[A-Za-z0-9_~./-]*|[A-Za-z0-9_~-]+([./][A-Za-z0-9_~-]+)+`},
	{Name: "Eq", Pattern: `==`},
	{Name: "Ne", Pattern: `!=`},
	{Name: "Le", Pattern: `<=`},
	{Name: "Ge", Pattern: `>=`},
	{Name: "And", Pattern: `&&`},
	{Name: "Or", Pattern: `\|\|`},
	{Name: "Lt", Pattern: `<`},
	{Name: "Gt", Pattern: `>`},
	{Name: "Bang", Pattern: `!`},
	{Name: "LBracket", Pattern: `\[`},
	{Name: "RBracket", Pattern: `\]`},
	{Name: "LBrace", Pattern: `\{`},
	{Name: "RBrace", Pattern: `\}`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Comma", Pattern: `,`},
	{Name: "At", Pattern: `@`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Plus", Pattern: `\+`},
	{Name: "Minus", Pattern: `-`},
	{Name: "Star", Pattern: `\*`},
	{Name: "Slash", Pattern: `/`},
	{Name: "Percent", Pattern: `%`},
	// Dot is the fallback for a lone '.' continuing a path expression after
	// a '[index]' segment (e.g. the ".c" in "a.b[2].c"), where the Path
	// rule above can't reach across the brackets in one token.
	{Name: "Dot", Pattern: `\.`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
})

// Token is a lexed token with its source position, translated from
// participle's lexer.Token using the definition's reverse symbol table.
type Token struct {
	Kind   string
	Value  string
	Line   int
	Col    int
	Offset int
}

func (t Token) Is(kind string) bool { return t.Kind == kind }

// Tokenize runs the lexer over src, discarding whitespace and comments, and
// returns the full token stream plus an EOF sentinel.
func Tokenize(filename, src string) ([]Token, error) {
	symbols := simpleLexer.Symbols()
	names := make(map[lexer.TokenType]string, len(symbols))
	for name, tt := range symbols {
		names[tt] = name
	}

	lx, err := simpleLexer.Lex(filename, strings.NewReader(src))
	if err != nil {
		return nil, err
	}

	var out []Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF() {
			out = append(out, Token{Kind: "EOF", Line: tok.Pos.Line, Col: tok.Pos.Column, Offset: tok.Pos.Offset})
			return out, nil
		}
		name := names[tok.Type]
		if name == "Whitespace" || name == "LineComment" || name == "BlockComment" {
			continue
		}
		out = append(out, Token{Kind: name, Value: tok.Value, Line: tok.Pos.Line, Col: tok.Pos.Column, Offset: tok.Pos.Offset})
	}
}
