package query

import "testing"

func TestParseBareInteger(t *testing.T) {
	n, err := Parse("625")
	if err != nil {
		t.Fatal(err)
	}
	c, ok := n.(Constant)
	if !ok {
		t.Fatalf("expected Constant, got %T", n)
	}
	if !c.Matcher.HasInt || c.Matcher.AsInt != 625 {
		t.Fatalf("AsInt = %v (%v)", c.Matcher.AsInt, c.Matcher.HasInt)
	}
	if !c.Matcher.HasFloat || c.Matcher.AsFloat != 625.0 || c.Matcher.Precision != 0 {
		t.Fatalf("AsFloat = %v precision %v", c.Matcher.AsFloat, c.Matcher.Precision)
	}
}

func TestParseFloatOnly(t *testing.T) {
	n, err := Parse("625.1")
	if err != nil {
		t.Fatal(err)
	}
	c := n.(Constant)
	if c.Matcher.HasInt {
		t.Fatal("625.1 should not parse as an integer")
	}
	if c.Matcher.AsFloat != 625.1 || c.Matcher.Precision != 1 {
		t.Fatalf("AsFloat = %v precision %v", c.Matcher.AsFloat, c.Matcher.Precision)
	}
}

func TestParseScientificNotation(t *testing.T) {
	n, err := Parse("6.25e2")
	if err != nil {
		t.Fatal(err)
	}
	c := n.(Constant)
	if c.Matcher.AsFloat != 625.0 {
		t.Fatalf("AsFloat = %v, want 625", c.Matcher.AsFloat)
	}
	if c.Matcher.Precision != -2 {
		t.Fatalf("precision = %v, want -2", c.Matcher.Precision)
	}
}

func TestParseComparators(t *testing.T) {
	cases := map[string]Comparator{
		">=625": Gte,
		"<=625": Lte,
		"!=625": Neq,
		">625":  Gt,
		"<625":  Lt,
		"=625":  Eq,
		"~625":  Approx,
	}
	for input, want := range cases {
		n, err := Parse(input)
		if err != nil {
			t.Fatalf("%q: %v", input, err)
		}
		expr, ok := n.(MatchExpr)
		if !ok {
			t.Fatalf("%q: expected MatchExpr, got %T", input, n)
		}
		if expr.Op != want {
			t.Fatalf("%q: op = %v, want %v", input, expr.Op, want)
		}
	}
}

func TestParseDefaultsToApprox(t *testing.T) {
	n, err := Parse("  625  ")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := n.(Constant); !ok {
		t.Fatalf("bare literal should parse as Constant, got %T", n)
	}
}

func TestParseNegative(t *testing.T) {
	n, err := Parse("-17")
	if err != nil {
		t.Fatal(err)
	}
	c := n.(Constant)
	if c.Matcher.AsInt != -17 {
		t.Fatalf("AsInt = %v, want -17", c.Matcher.AsInt)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	cases := []string{"", "abc", "1.2.3", "1e", ">=", "1 2"}
	for _, input := range cases {
		if _, err := Parse(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}
