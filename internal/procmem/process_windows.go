//go:build windows

package procmem

import (
	"strings"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// psapi.dll exposes process enumeration and module-name queries that
// golang.org/x/sys/windows doesn't wrap directly. NewLazySystemDLL/NewProc
// are the same primitives x/sys/windows itself is built on, so this stays
// within the package's own idiom rather than reaching for cgo.
var (
	modPsapi                     = windows.NewLazySystemDLL("psapi.dll")
	procEnumProcesses            = modPsapi.NewProc("EnumProcesses")
	procGetProcessImageFileNameW = modPsapi.NewProc("GetProcessImageFileNameW")
)

const (
	openFlagsRead  = windows.PROCESS_QUERY_INFORMATION | windows.PROCESS_VM_READ
	openFlagsWrite = openFlagsRead | windows.PROCESS_VM_WRITE | windows.PROCESS_VM_OPERATION
)

type windowsProcess struct {
	pid    uint32
	handle windows.Handle
}

// Open acquires a handle to pid with read and write access. Callers that
// only need to read should still get read access for free; there is no
// cheaper read-only path worth a second code path here.
func Open(pid uint32) (Process, error) {
	h, err := windows.OpenProcess(openFlagsWrite, false, pid)
	if err != nil {
		// Fall back to read-only: some processes (protected/system) refuse
		// PROCESS_VM_WRITE but still allow inspection.
		h, err = windows.OpenProcess(openFlagsRead, false, pid)
		if err != nil {
			return nil, &OsError{Op: "OpenProcess", Pid: pid, Err: err}
		}
	}
	return &windowsProcess{pid: pid, handle: h}, nil
}

func (p *windowsProcess) Pid() uint32 { return p.pid }

func (p *windowsProcess) Close() error {
	if p.handle == 0 {
		return nil
	}
	err := windows.CloseHandle(p.handle)
	p.handle = 0
	if err != nil {
		return &OsError{Op: "CloseHandle", Pid: p.pid, Err: err}
	}
	return nil
}

// QueryPages walks the target's address space with VirtualQueryEx. A region
// is reported only if it's committed and its protection allows writes:
// read-only regions can be scanned but never poked, so they're excluded up
// front rather than surfaced as results the user can't act on.
func (p *windowsProcess) QueryPages() ([]VirtualPage, error) {
	var pages []VirtualPage
	var addr uintptr
	for len(pages) < MaxRegions && VirtualAddr(addr) < userSpaceCeiling {
		var mbi windows.MemoryBasicInformation
		err := windows.VirtualQueryEx(p.handle, addr, &mbi, unsafe.Sizeof(mbi))
		if err != nil {
			break // no more regions at or above addr
		}
		if mbi.RegionSize == 0 {
			break // defend against a stalled walk
		}
		if mbi.State == windows.MEM_COMMIT && isWritableProtect(mbi.Protect) {
			pages = append(pages, VirtualPage{
				Start:     VirtualAddr(mbi.BaseAddress),
				Size:      uint64(mbi.RegionSize),
				Writable:  true,
				Oversized: isOversized(uint64(mbi.RegionSize)),
			})
		}
		next := addr + mbi.RegionSize
		if next <= addr {
			break // wraparound
		}
		addr = next
	}
	return pages, nil
}

func isWritableProtect(protect uint32) bool {
	switch protect &^ (windows.PAGE_GUARD | windows.PAGE_NOCACHE | windows.PAGE_WRITECOMBINE) {
	case windows.PAGE_READWRITE, windows.PAGE_EXECUTE_READWRITE,
		windows.PAGE_WRITECOPY, windows.PAGE_EXECUTE_WRITECOPY:
		return true
	default:
		return false
	}
}

func (p *windowsProcess) Read(addr VirtualAddr, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	var n uintptr
	err := windows.ReadProcessMemory(p.handle, uintptr(addr), &buf[0], uintptr(len(buf)), &n)
	if err != nil {
		return &ReadError{Addr: addr, Want: len(buf), Err: err}
	}
	if int(n) != len(buf) {
		return &ReadError{Addr: addr, Want: len(buf), Got: int(n)}
	}
	return nil
}

func (p *windowsProcess) Write(addr VirtualAddr, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	var n uintptr
	err := windows.WriteProcessMemory(p.handle, uintptr(addr), &data[0], uintptr(len(data)), &n)
	if err != nil {
		return &WriteError{Addr: addr, Want: len(data), Err: err}
	}
	if int(n) != len(data) {
		return &WriteError{Addr: addr, Want: len(data), Got: int(n)}
	}
	return nil
}

// ListAll enumerates running processes system-wide. The PID array grows
// to used+128 bytes whenever EnumProcesses reports the buffer came back
// exactly full, retried at least twice before giving up, since an exactly
// full return is ambiguous between "that's everything" and "truncated".
func ListAll() ([]ProcessInfo, error) {
	needed := uint32(1024)
	var pids []uint32
	var used uint32

	for attempt := 0; attempt < 3; attempt++ {
		count := needed / 4
		pids = make([]uint32, count)
		var got uint32
		r1, _, callErr := procEnumProcesses.Call(
			uintptr(unsafe.Pointer(&pids[0])),
			uintptr(needed),
			uintptr(unsafe.Pointer(&got)),
		)
		if r1 == 0 {
			return nil, &OsError{Op: "EnumProcesses", Err: callErr}
		}
		used = got
		if used < needed {
			break
		}
		needed = used + 128
	}

	n := used / 4
	infos := make([]ProcessInfo, 0, n)
	for _, pid := range pids[:n] {
		if pid == 0 {
			continue
		}
		infos = append(infos, ProcessInfo{Pid: pid, Name: queryImageName(pid)})
	}
	return infos, nil
}

// queryImageName best-effort resolves pid's executable name. A process
// that refuses PROCESS_QUERY_INFORMATION (most system processes) reports
// "UNKNOWN" rather than failing the whole listing.
func queryImageName(pid uint32) string {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_INFORMATION, false, pid)
	if err != nil {
		return "UNKNOWN"
	}
	defer windows.CloseHandle(h)

	buf := make([]uint16, 260)
	r1, _, _ := procGetProcessImageFileNameW.Call(
		uintptr(h),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(len(buf)),
	)
	if r1 == 0 {
		return "UNKNOWN"
	}
	full := syscall.UTF16ToString(buf)
	if full == "" {
		return "UNKNOWN"
	}
	if idx := strings.LastIndexByte(full, '\\'); idx >= 0 {
		return full[idx+1:]
	}
	return full
}
