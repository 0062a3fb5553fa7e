package strut

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Pattern is a route path in strut syntax. Parameters are declared in braces
// with an optional type: /users/{id:int}/files/{rest:*}. Untyped parameters
// ({slug}) resolve as raw strings.
type Pattern string

// PartKind represents the kind of a pattern part.
type PartKind int

const (
	StaticPart PartKind = iota
	ParamPart
	WildcardPart
)

// Part is a single piece of a parsed Pattern. For static parts Value holds
// the literal text, for parameters the parameter name. ParamType is the
// declared type of a typed parameter, empty otherwise.
type Part struct {
	Kind      PartKind
	Value     string
	ParamType string
}

// pattern grammar, built with participle over a small brace-aware lexer
type patternAST struct {
	Pieces []patternPiece `parser:"@@*"`
}

type patternPiece struct {
	Static *string    `parser:"@(Chunk | Colon | Star)"`
	Param  *paramExpr `parser:"| LBrace @@ RBrace"`
}

type paramExpr struct {
	Wildcard bool   `parser:"@Star"`
	Name     string `parser:"| @Chunk"`
	Type     string `parser:"(Colon @(Chunk | Star))?"`
}

var patternLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "LBrace", Pattern: `\{`},
	{Name: "RBrace", Pattern: `\}`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Star", Pattern: `\*`},
	{Name: "Chunk", Pattern: `[^{}:*]+`},
})

var patternParser = participle.MustBuild[patternAST](
	participle.Lexer(patternLexer),
	participle.UseLookahead(2),
)

// Raw returns the original pattern text.
func (p Pattern) Raw() string {
	return string(p)
}

// Parts parses the pattern into its parts. Adjacent static runs are merged
// into a single part.
func (p Pattern) Parts() ([]Part, error) {
	if p == "" {
		return nil, nil
	}

	ast, err := patternParser.ParseString("", string(p))
	if err != nil {
		return nil, fmt.Errorf("invalid route pattern %q: %w", string(p), err)
	}

	var parts []Part
	for _, piece := range ast.Pieces {
		switch {
		case piece.Static != nil:
			if n := len(parts); n > 0 && parts[n-1].Kind == StaticPart {
				parts[n-1].Value += *piece.Static
				continue
			}
			parts = append(parts, Part{Kind: StaticPart, Value: *piece.Static})
		case piece.Param != nil:
			parts = append(parts, piece.Param.part())
		}
	}
	return parts, nil
}

func (e *paramExpr) part() Part {
	if e.Wildcard {
		return Part{Kind: WildcardPart, Value: "*"}
	}
	if e.Type == "*" {
		// named wildcard, {rest:*}
		return Part{Kind: WildcardPart, Value: e.Name}
	}
	return Part{Kind: ParamPart, Value: e.Name, ParamType: e.Type}
}

// Params returns the parameter and wildcard parts of the pattern in
// declaration order.
func (p Pattern) Params() ([]Part, error) {
	parts, err := p.Parts()
	if err != nil {
		return nil, err
	}
	var params []Part
	for _, part := range parts {
		if part.Kind != StaticPart {
			params = append(params, part)
		}
	}
	return params, nil
}

// Join concatenates two patterns, collapsing the duplicate slash at the seam.
func (p Pattern) Join(other Pattern) Pattern {
	a, b := string(p), string(other)
	switch {
	case a == "":
		return other
	case b == "":
		return p
	}
	if a[len(a)-1] == '/' && b[0] == '/' {
		return Pattern(a + b[1:])
	}
	if a[len(a)-1] != '/' && b[0] != '/' {
		return Pattern(a + "/" + b)
	}
	return Pattern(a + b)
}
