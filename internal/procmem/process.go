// Package procmem opens a live, foreign process and gives read/write access
// to its virtual address space, region by region. Enumeration, reads and
// writes are all best-effort against a target that can unmap or reprotect
// memory between calls; callers see that as an error on the specific call,
// never a panic.
package procmem

import "fmt"

// VirtualPage describes one committed, writable region of a target
// process's address space as returned by page enumeration.
type VirtualPage struct {
	Start     VirtualAddr
	Size      uint64
	Writable  bool
	Oversized bool // true if Size exceeds MaxPageBytes; skip rather than read
}

// End returns the address one past the last byte of the page.
func (p VirtualPage) End() VirtualAddr {
	return p.Start + VirtualAddr(p.Size)
}

func (p VirtualPage) String() string {
	return fmt.Sprintf("%s..%s (%d bytes)", p.Start, p.End(), p.Size)
}

// MaxPageBytes is the largest single region a full scan will read.
// QueryPages flags any region above this as Oversized rather than
// truncating it; the scan engine skips Oversized pages entirely, since
// partial-page scanning above the cap is out of scope. A package-level
// var, not a const, so memconfig can override it from the environment.
var MaxPageBytes uint64 = 0x20000000 // 512 MiB

// ProcessInfo is a lightweight, pre-open description of a running process,
// returned by ListAll before any handle is acquired.
type ProcessInfo struct {
	Pid  uint32
	Name string
}

func (p ProcessInfo) String() string {
	return fmt.Sprintf("%d\t%s", p.Pid, p.Name)
}

// Process is a handle to an already-opened target process. Implementations
// live in the per-OS files in this package; exactly one is compiled in for
// any given build.
type Process interface {
	// Pid returns the target's process ID.
	Pid() uint32

	// QueryPages enumerates the target's committed, writable regions in
	// address order, capped at MaxRegions and userSpaceCeiling.
	QueryPages() ([]VirtualPage, error)

	// Read copies exactly len(buf) bytes from addr into buf. A short
	// or failed read returns a *ReadError and leaves buf unspecified.
	Read(addr VirtualAddr, buf []byte) error

	// Write copies all of data to addr in the target. A short or
	// failed write returns a *WriteError.
	Write(addr VirtualAddr, data []byte) error

	// Close releases the underlying OS handle. Safe to call once;
	// a second call is a no-op.
	Close() error
}

// isOversized reports whether size exceeds MaxPageBytes. The region's real
// size is kept either way; oversized pages are skipped outright by the
// scan engine rather than read up to the cap.
func isOversized(size uint64) bool {
	return size > MaxPageBytes
}
