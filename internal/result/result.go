// Package result defines the record a scan emits for each matching address.
package result

import (
	"fmt"

	"github.com/xyproto/memscan/internal/datatype"
	"github.com/xyproto/memscan/internal/procmem"
)

// SearchResult is one matching slot: an address, the interpretation that
// matched there, and the raw bytes read at discovery time. Value is always
// exactly DataType.Size() bytes, native endian.
type SearchResult struct {
	Address  procmem.VirtualAddr
	DataType datatype.DataType
	Value    []byte
}

// Display renders Value using DataType's presentation rules.
func (r SearchResult) Display() string {
	return r.DataType.Display(r.Value)
}

func (r SearchResult) String() string {
	return fmt.Sprintf("%s\t%s\t%s", r.Address, r.DataType, r.Display())
}
