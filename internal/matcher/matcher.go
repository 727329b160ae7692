// Package matcher evaluates a compiled query against raw process memory,
// either a full page (page scan) or a single previously-found address
// (refinement's single-slot test).
package matcher

import (
	"encoding/binary"
	"math"

	"github.com/xyproto/memscan/internal/datatype"
	"github.com/xyproto/memscan/internal/query"
)

// Hit is one matching interpretation at one offset within a page or at a
// single tested address. The same address can produce more than one Hit
// (e.g. both I32 and F32 at the same offset); that's intentional, callers
// disambiguate by DataType.
type Hit struct {
	Offset   int // byte offset from the scan's base address
	DataType datatype.DataType
	Value    []byte
}

// compiledQuery flattens a query.Node into the comparator and constant a
// slot test actually needs, resolved once per scan rather than per slot.
type compiledQuery struct {
	op      query.Comparator
	matcher query.ConstantMatcher
}

// Compile extracts the comparator and constant from a parsed query. Every
// Node the parser produces is either a bare Constant (implicit Approx) or
// a MatchExpr wrapping one; anything else is a parser bug.
func Compile(n query.Node) compiledQuery {
	switch v := n.(type) {
	case query.Constant:
		return compiledQuery{op: query.Approx, matcher: v.Matcher}
	case query.MatchExpr:
		c, ok := v.Val.(query.Constant)
		if !ok {
			panic("matcher: MatchExpr.Val is not a Constant")
		}
		return compiledQuery{op: v.Op, matcher: c.Matcher}
	default:
		panic("matcher: unknown query.Node implementation")
	}
}

// ScanPage evaluates every word-aligned offset in mem against cq, emitting
// one Hit per matching interpretation. pageBase is added to each Hit's
// Offset by the caller if it needs an absolute address; ScanPage itself
// works in page-relative offsets.
func ScanPage(mem []byte, n query.Node) []Hit {
	cq := Compile(n)
	var hits []Hit

	words := len(mem) / 4
	for i := 0; i < words; i++ {
		off := i * 4

		if cq.matcher.HasInt {
			i32 := int32(binary.NativeEndian.Uint32(mem[off : off+4]))
			if testInt(cq.op, int64(i32), int64(int32(cq.matcher.AsInt))) {
				hits = append(hits, Hit{Offset: off, DataType: datatype.I32, Value: cloneSlot(mem, off, 4)})
			}
		}
		if cq.matcher.HasFloat {
			f32 := math.Float32frombits(binary.NativeEndian.Uint32(mem[off : off+4]))
			if testFloat(cq.op, float64(f32), cq.matcher.AsFloat, cq.matcher.Precision) {
				hits = append(hits, Hit{Offset: off, DataType: datatype.F32, Value: cloneSlot(mem, off, 4)})
			}
		}

		// 8-byte interpretations only start from even I32 indices so they
		// stay 8-byte aligned within the page.
		if i%2 == 0 && off+8 <= len(mem) {
			if cq.matcher.HasInt {
				i64 := int64(binary.NativeEndian.Uint64(mem[off : off+8]))
				if testInt(cq.op, i64, cq.matcher.AsInt) {
					hits = append(hits, Hit{Offset: off, DataType: datatype.I64, Value: cloneSlot(mem, off, 8)})
				}
			}
			if cq.matcher.HasFloat {
				f64 := math.Float64frombits(binary.NativeEndian.Uint64(mem[off : off+8]))
				if testFloat(cq.op, f64, cq.matcher.AsFloat, cq.matcher.Precision) {
					hits = append(hits, Hit{Offset: off, DataType: datatype.F64, Value: cloneSlot(mem, off, 8)})
				}
			}
		}
	}
	return hits
}

// TestSlot re-evaluates a single previously-found (dataType, raw) pair
// against n, for refinement passes. Reports whether it still matches.
func TestSlot(n query.Node, dt datatype.DataType, raw []byte) bool {
	cq := Compile(n)
	switch dt {
	case datatype.I32:
		if !cq.matcher.HasInt {
			return false
		}
		return testInt(cq.op, int64(int32(binary.NativeEndian.Uint32(raw))), int64(int32(cq.matcher.AsInt)))
	case datatype.I64:
		if !cq.matcher.HasInt {
			return false
		}
		return testInt(cq.op, int64(binary.NativeEndian.Uint64(raw)), cq.matcher.AsInt)
	case datatype.F32:
		if !cq.matcher.HasFloat {
			return false
		}
		v := float64(math.Float32frombits(binary.NativeEndian.Uint32(raw)))
		return testFloat(cq.op, v, cq.matcher.AsFloat, cq.matcher.Precision)
	case datatype.F64:
		if !cq.matcher.HasFloat {
			return false
		}
		v := math.Float64frombits(binary.NativeEndian.Uint64(raw))
		return testFloat(cq.op, v, cq.matcher.AsFloat, cq.matcher.Precision)
	default:
		return false
	}
}

func cloneSlot(mem []byte, off, size int) []byte {
	out := make([]byte, size)
	copy(out, mem[off:off+size])
	return out
}

// testInt applies an integer comparator. Approx degrades to Eq: integers
// have no fractional precision to be approximate about.
func testInt(op query.Comparator, v, target int64) bool {
	switch op {
	case query.Approx, query.Eq:
		return v == target
	case query.Neq:
		return v != target
	case query.Gt:
		return v > target
	case query.Gte:
		return v >= target
	case query.Lt:
		return v < target
	case query.Lte:
		return v <= target
	default:
		panic("matcher: unknown comparator")
	}
}

// tolerance returns 10^(-precision), the width a float comparator tolerates
// around the target value.
func tolerance(precision int32) float64 {
	return math.Pow(10, -float64(precision))
}

func testFloat(op query.Comparator, v, target float64, precision int32) bool {
	tol := tolerance(precision)
	lower, upper := target-tol, target+tol
	switch op {
	case query.Approx:
		margin := 0.999 * tol
		return v > target-margin && v < target+margin
	case query.Eq:
		return v >= lower && v <= upper
	case query.Neq:
		return v < lower || v > upper
	case query.Gt:
		return v > target
	case query.Gte:
		return v >= target
	case query.Lt:
		return v < target
	case query.Lte:
		return v <= target
	default:
		panic("matcher: unknown comparator")
	}
}
