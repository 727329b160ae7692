// Package query parses the small search-query grammar ("~1234", ">=625",
// "1e-3") into an immutable Node tree a matcher can evaluate against raw
// process memory. Parsing happens once per search, before any scan starts.
package query

import "fmt"

// Comparator is a closed set; the grammar can never produce a value outside
// it, so switches over Comparator elsewhere default-panic rather than
// silently falling through.
type Comparator int

const (
	Approx Comparator = iota // default when no comparator prefix is given
	Eq
	Neq
	Gt
	Gte
	Lt
	Lte
)

func (c Comparator) String() string {
	switch c {
	case Approx:
		return "~"
	case Eq:
		return "="
	case Neq:
		return "!="
	case Gt:
		return ">"
	case Gte:
		return ">="
	case Lt:
		return "<"
	case Lte:
		return "<="
	default:
		panic(fmt.Sprintf("query: unknown comparator %d", c))
	}
}

// ConstantMatcher holds both interpretations of a parsed numeric literal.
// AsInt is set iff the literal fits a signed 64-bit integer exactly.
// AsFloat is always set for anything that parses as a float at all (which
// is any literal matching Num), paired with its decimal precision.
type ConstantMatcher struct {
	AsInt     int64
	HasInt    bool
	AsFloat   float64
	Precision int32 // trailing decimal digits minus exponent
	HasFloat  bool
}

// Node is the query AST: either a bare Constant or a comparator applied to
// one. Val is always, ultimately, a Constant — the grammar has no way to
// nest MatchExpr inside MatchExpr.
type Node interface {
	isNode()
}

// Constant wraps a literal with no comparator prefix; evaluates as Approx.
type Constant struct {
	Matcher ConstantMatcher
}

func (Constant) isNode() {}

// MatchExpr is a comparator applied to a constant value.
type MatchExpr struct {
	Op  Comparator
	Val Node
}

func (MatchExpr) isNode() {}

// ParseError reports why a query string didn't match the grammar. The UI
// surfaces Error() verbatim and never starts a scan.
type ParseError struct {
	Input string
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("query: %q: %s", e.Input, e.Msg)
}
