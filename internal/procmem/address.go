// address.go - Strongly typed addresses to prevent mixing target addresses with Go pointers
package procmem

import "fmt"

// VirtualAddr represents an address in the target process's virtual address space.
// Kept distinct from uintptr so a target address is never accidentally dereferenced
// as a local pointer.
type VirtualAddr uint64

func (v VirtualAddr) String() string {
	return fmt.Sprintf("0x%x", uint64(v))
}

// userSpaceCeiling is the highest address page enumeration will walk to
// (48-bit user space, the Win32/x86-64 convention).
const userSpaceCeiling VirtualAddr = 0x7FFF_FFFF_FFFF

// MaxRegions bounds VirtualPage enumeration so a corrupt or adversarial
// address space can't spin the walk forever. A package-level var, not a
// const, so memconfig can override it from the environment at startup.
var MaxRegions = 20000
