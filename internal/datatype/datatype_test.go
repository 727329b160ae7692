package datatype

import "testing"

func TestSizeConsistency(t *testing.T) {
	cases := map[DataType]string{
		I32: "625",
		I64: "625",
		F32: "625.1",
		F64: "625.1",
	}
	for dt, s := range cases {
		b, err := dt.ToBytes(s)
		if err != nil {
			t.Fatalf("%v.ToBytes(%q): %v", dt, s, err)
		}
		if len(b) != dt.Size() {
			t.Fatalf("%v: got %d bytes, want %d", dt, len(b), dt.Size())
		}
	}
}

func TestIntegerRoundTrip(t *testing.T) {
	for _, dt := range []DataType{I32, I64} {
		b, err := dt.ToBytes("625")
		if err != nil {
			t.Fatalf("%v: %v", dt, err)
		}
		if got := dt.FromBytes(b); got != "625" {
			t.Fatalf("%v: got %q, want %q", dt, got, "625")
		}
	}
}

func TestNegativeIntegerRoundTrip(t *testing.T) {
	b, err := I32.ToBytes("-17")
	if err != nil {
		t.Fatal(err)
	}
	if got := I32.FromBytes(b); got != "-17" {
		t.Fatalf("got %q, want -17", got)
	}
}

func TestFloatRoundTripExact(t *testing.T) {
	b, err := F64.ToBytes("625.5")
	if err != nil {
		t.Fatal(err)
	}
	if got := F64.FromBytes(b); got != "625.5" {
		t.Fatalf("got %q, want 625.5", got)
	}
}

func TestDisplayFixedVsScientific(t *testing.T) {
	b, _ := F64.ToBytes("625.1")
	if got := F64.Display(b); got != "625.10" {
		t.Fatalf("got %q, want 625.10", got)
	}

	big, _ := F64.ToBytes("1e30")
	got := F64.Display(big)
	if got[len(got)-4] != 'e' {
		t.Fatalf("expected scientific notation, got %q", got)
	}
}

func TestAllOrder(t *testing.T) {
	want := [4]DataType{I32, I64, F32, F64}
	if All != want {
		t.Fatalf("All = %v, want %v", All, want)
	}
}

func TestParseDataType(t *testing.T) {
	for _, name := range []string{"i32", "I32", "4 bytes"} {
		if dt, ok := ParseDataType(name); !ok || dt != I32 {
			t.Fatalf("ParseDataType(%q) = %v, %v", name, dt, ok)
		}
	}
	if _, ok := ParseDataType("nope"); ok {
		t.Fatalf("expected ParseDataType to reject unknown name")
	}
}
