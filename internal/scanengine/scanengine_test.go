package scanengine

import (
	"encoding/binary"
	"testing"

	"github.com/xyproto/memscan/internal/procmem"
	"github.com/xyproto/memscan/internal/query"
	"github.com/xyproto/memscan/internal/result"
)

// fakeProcess is an in-memory stand-in for a real target, single page.
type fakeProcess struct {
	base procmem.VirtualAddr
	mem  []byte
}

func (f *fakeProcess) Pid() uint32 { return 1 }

func (f *fakeProcess) QueryPages() ([]procmem.VirtualPage, error) {
	return []procmem.VirtualPage{{Start: f.base, Size: uint64(len(f.mem)), Writable: true}}, nil
}

func (f *fakeProcess) Read(addr procmem.VirtualAddr, buf []byte) error {
	off := int(addr - f.base)
	if off < 0 || off+len(buf) > len(f.mem) {
		return &procmem.ReadError{Addr: addr, Want: len(buf)}
	}
	copy(buf, f.mem[off:off+len(buf)])
	return nil
}

func (f *fakeProcess) Write(addr procmem.VirtualAddr, data []byte) error {
	off := int(addr - f.base)
	if off < 0 || off+len(data) > len(f.mem) {
		return &procmem.WriteError{Addr: addr, Want: len(data)}
	}
	copy(f.mem[off:off+len(data)], data)
	return nil
}

func (f *fakeProcess) Close() error { return nil }

func drain(ch <-chan result.SearchResult) []result.SearchResult {
	var out []result.SearchResult
	for r := range ch {
		out = append(out, r)
	}
	return out
}

func mustParse(t *testing.T, s string) query.Node {
	t.Helper()
	n, err := query.Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return n
}

func newFixture() *fakeProcess {
	mem := make([]byte, 32)
	binary.NativeEndian.PutUint32(mem[0:4], 100)
	binary.NativeEndian.PutUint32(mem[8:12], 200)
	binary.NativeEndian.PutUint32(mem[16:20], 100)
	return &fakeProcess{base: procmem.VirtualAddr(0x1000), mem: mem}
}

func TestFullScanFindsAllMatches(t *testing.T) {
	proc := newFixture()
	s := NewSession()
	out := s.Start(proc, mustParse(t, "100"), nil)
	results := drain(out)

	count := 0
	for _, r := range results {
		if r.DataType.Name() == "4 bytes" && r.Display() == "100" {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected 2 matches for literal 100, got %d (all: %+v)", count, results)
	}
}

func TestRefinementMonotonicity(t *testing.T) {
	proc := newFixture()
	s := NewSession()
	first := drain(s.Start(proc, mustParse(t, "100"), nil))

	s2 := NewSession()
	second := drain(s2.Start(proc, mustParse(t, ">50"), first))

	if len(second) > len(first) {
		t.Fatalf("refinement grew the result set: %d -> %d", len(first), len(second))
	}
	for _, r := range second {
		match := false
		for _, p := range first {
			if p.Address == r.Address && p.DataType == r.DataType {
				match = true
			}
		}
		if !match {
			t.Fatalf("refinement produced an address not in the prior set: %+v", r)
		}
	}
}

func TestRefinementEmptyOnImpossibleQuery(t *testing.T) {
	proc := newFixture()
	s := NewSession()
	first := drain(s.Start(proc, mustParse(t, "100"), nil))
	if len(first) == 0 {
		t.Fatal("fixture setup produced no initial matches")
	}

	s2 := NewSession()
	second := drain(s2.Start(proc, mustParse(t, "<50"), first))
	if len(second) != 0 {
		t.Fatalf("expected empty refinement for <50, got %+v", second)
	}
}

func TestIdempotentRefinement(t *testing.T) {
	proc := newFixture()
	s := NewSession()
	first := drain(s.Start(proc, mustParse(t, "100"), nil))

	s2 := NewSession()
	second := drain(s2.Start(proc, mustParse(t, ">50"), first))

	s3 := NewSession()
	third := drain(s3.Start(proc, mustParse(t, ">50"), second))

	if len(second) != len(third) {
		t.Fatalf("two identical refinements diverged: %d vs %d", len(second), len(third))
	}
}

func TestLoadingFlagClearsAfterDrain(t *testing.T) {
	proc := newFixture()
	s := NewSession()
	out := s.Start(proc, mustParse(t, "100"), nil)
	drain(out)
	if s.Loading() {
		t.Fatal("expected Loading() to be false once the channel is closed and drained")
	}
}
