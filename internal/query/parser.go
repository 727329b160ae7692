package query

import (
	"strconv"
	"strings"
)

// parser walks a query string byte by byte. pos is the next unconsumed
// byte; the grammar is ASCII-only so byte indexing is safe.
type parser struct {
	input string
	pos   int
}

// Parse compiles a search-query string into a Node. See the package doc
// for the accepted grammar.
func Parse(input string) (Node, error) {
	p := &parser{input: input}
	p.skipWhitespace()

	comparator, hasComparator := p.parseComparator()
	p.skipWhitespace()

	lit, err := p.parseNum()
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()

	if p.pos != len(p.input) {
		return nil, &ParseError{Input: input, Msg: "unexpected trailing input after number"}
	}

	matcher, err := buildMatcher(lit)
	if err != nil {
		return nil, &ParseError{Input: input, Msg: err.Error()}
	}

	constant := Constant{Matcher: matcher}
	if !hasComparator {
		return constant, nil
	}
	return MatchExpr{Op: comparator, Val: constant}, nil
}

func (p *parser) skipWhitespace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

// parseComparator consumes the longest matching comparator token, if any.
// Two-byte comparators are tried before their one-byte prefixes so ">="
// never lexes as ">" followed by a stray "=".
func (p *parser) parseComparator() (Comparator, bool) {
	rest := p.input[p.pos:]
	switch {
	case strings.HasPrefix(rest, ">="):
		p.pos += 2
		return Gte, true
	case strings.HasPrefix(rest, "<="):
		p.pos += 2
		return Lte, true
	case strings.HasPrefix(rest, "!="):
		p.pos += 2
		return Neq, true
	}

	if p.pos >= len(p.input) {
		return Approx, false
	}
	switch p.input[p.pos] {
	case '>':
		p.pos++
		return Gt, true
	case '<':
		p.pos++
		return Lt, true
	case '=':
		p.pos++
		return Eq, true
	case '~':
		p.pos++
		return Approx, true
	default:
		return Approx, false
	}
}

// literal holds a raw parsed number decomposed into the pieces the grammar
// names, before either numeric interpretation is attempted.
type literal struct {
	text           string // full numeric token, for int/float parsing
	trailingDigits int    // digits after the decimal point, 0 if none
	exponent       int32  // value of the Exp clause, 0 if absent
}

// parseNum consumes Sign? Digits (TrailingDecimal)? (Exp FloatPower)? and
// returns the pieces needed to compute decimal precision.
func (p *parser) parseNum() (literal, error) {
	start := p.pos

	if p.pos < len(p.input) && (p.input[p.pos] == '+' || p.input[p.pos] == '-') {
		p.pos++
	}
	digitsStart := p.pos
	for p.pos < len(p.input) && isDigit(p.input[p.pos]) {
		p.pos++
	}
	if p.pos == digitsStart {
		return literal{}, &ParseError{Input: p.input, Msg: "expected a digit"}
	}

	trailing := 0
	if p.pos < len(p.input) && p.input[p.pos] == '.' {
		p.pos++
		fracStart := p.pos
		for p.pos < len(p.input) && isDigit(p.input[p.pos]) {
			p.pos++
		}
		trailing = p.pos - fracStart
		if trailing == 0 {
			return literal{}, &ParseError{Input: p.input, Msg: "expected digits after decimal point"}
		}
	}

	var exponent int32
	if p.pos < len(p.input) && (p.input[p.pos] == 'e' || p.input[p.pos] == 'E') {
		expStart := p.pos
		p.pos++
		if p.pos < len(p.input) && (p.input[p.pos] == '+' || p.input[p.pos] == '-') {
			p.pos++
		}
		digStart := p.pos
		for p.pos < len(p.input) && isDigit(p.input[p.pos]) {
			p.pos++
		}
		if p.pos == digStart {
			return literal{}, &ParseError{Input: p.input, Msg: "expected digits in exponent"}
		}
		v, err := strconv.ParseInt(p.input[expStart+1:p.pos], 10, 32)
		if err != nil {
			return literal{}, &ParseError{Input: p.input, Msg: "exponent out of range"}
		}
		exponent = int32(v)
	}

	return literal{
		text:           p.input[start:p.pos],
		trailingDigits: trailing,
		exponent:       exponent,
	}, nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// buildMatcher attempts both numeric interpretations of a literal. A bare
// integer like "625" sets both AsInt and AsFloat (precision 0); "625.1"
// fails the int parse (decimal point) and sets only AsFloat.
func buildMatcher(lit literal) (ConstantMatcher, error) {
	var m ConstantMatcher

	if v, err := strconv.ParseInt(lit.text, 10, 64); err == nil {
		m.AsInt = v
		m.HasInt = true
	}

	f, err := strconv.ParseFloat(lit.text, 64)
	if err != nil {
		return ConstantMatcher{}, err
	}
	m.AsFloat = f
	m.Precision = int32(lit.trailingDigits) - lit.exponent
	m.HasFloat = true

	return m, nil
}
