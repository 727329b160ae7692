// Package datatype enumerates the numeric shapes memscan can search for and
// edit: two integer widths and two float widths, all read and written in the
// host's native byte order.
package datatype

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
)

// DataType is a closed set of four numeric shapes. The set is fixed by
// design: adding a fifth shape means widening this type, not registering
// a plugin.
type DataType int

const (
	I32 DataType = iota
	I64
	F32
	F64
)

// All fixes the iteration order GUI/CLI selectors must present.
var All = [4]DataType{I32, I64, F32, F64}

// Name returns the stable display name used by selectors.
func (t DataType) Name() string {
	switch t {
	case I32:
		return "4 bytes"
	case I64:
		return "8 bytes"
	case F32:
		return "Float"
	case F64:
		return "Double"
	default:
		return "unknown"
	}
}

func (t DataType) String() string { return t.Name() }

// Size returns the width in bytes. I32/F32 are 4; I64/F64 are 8.
func (t DataType) Size() int {
	switch t {
	case I32, F32:
		return 4
	case I64, F64:
		return 8
	default:
		panic(fmt.Sprintf("datatype: unknown variant %d", t))
	}
}

// ParseDataType maps a selector name (flag value or display name) back to a
// DataType, for CLI/GUI round-tripping.
func ParseDataType(name string) (DataType, bool) {
	switch name {
	case "i32", "I32", "4 bytes":
		return I32, true
	case "i64", "I64", "8 bytes":
		return I64, true
	case "f32", "F32", "Float":
		return F32, true
	case "f64", "F64", "Double":
		return F64, true
	default:
		return 0, false
	}
}

// FromBytes decodes value (native-endian, exactly Size() bytes) to its
// canonical decimal string.
func (t DataType) FromBytes(value []byte) string {
	switch t {
	case I32:
		return strconv.FormatInt(int64(int32(binary.NativeEndian.Uint32(value))), 10)
	case I64:
		return strconv.FormatInt(int64(binary.NativeEndian.Uint64(value)), 10)
	case F32:
		return strconv.FormatFloat(float64(math.Float32frombits(binary.NativeEndian.Uint32(value))), 'f', -1, 32)
	case F64:
		return strconv.FormatFloat(math.Float64frombits(binary.NativeEndian.Uint64(value)), 'f', -1, 64)
	default:
		panic(fmt.Sprintf("datatype: unknown variant %d", t))
	}
}

// ToBytes parses a user-typed string into exactly Size() bytes, native-endian.
func (t DataType) ToBytes(value string) ([]byte, error) {
	buf := make([]byte, t.Size())
	switch t {
	case I32:
		v, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("datatype: parse %q as i32: %w", value, err)
		}
		binary.NativeEndian.PutUint32(buf, uint32(int32(v)))
	case I64:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("datatype: parse %q as i64: %w", value, err)
		}
		binary.NativeEndian.PutUint64(buf, uint64(v))
	case F32:
		v, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return nil, fmt.Errorf("datatype: parse %q as f32: %w", value, err)
		}
		binary.NativeEndian.PutUint32(buf, math.Float32bits(float32(v)))
	case F64:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("datatype: parse %q as f64: %w", value, err)
		}
		binary.NativeEndian.PutUint64(buf, math.Float64bits(v))
	default:
		panic(fmt.Sprintf("datatype: unknown variant %d", t))
	}
	return buf, nil
}

// Display renders value for on-screen presentation. Integers use the same
// rendering as FromBytes; floats use fixed notation with two fraction
// digits when the magnitude is "normal" (|log2(v)| < 10), and scientific
// notation with two fraction digits otherwise.
func (t DataType) Display(value []byte) string {
	switch t {
	case I32, I64:
		return t.FromBytes(value)
	case F32:
		return displayFloat(float64(math.Float32frombits(binary.NativeEndian.Uint32(value))))
	case F64:
		return displayFloat(math.Float64frombits(binary.NativeEndian.Uint64(value)))
	default:
		panic(fmt.Sprintf("datatype: unknown variant %d", t))
	}
}

func displayFloat(v float64) string {
	if v == 0 {
		return "0.00"
	}
	mag := math.Log2(math.Abs(v))
	if math.Abs(mag) < 10 {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	return strconv.FormatFloat(v, 'e', 2, 64)
}
