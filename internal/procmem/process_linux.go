//go:build linux

package procmem

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

type linuxProcess struct {
	pid    uint32
	mem    *os.File
	closed bool
}

// Open checks the target exists and opens /proc/<pid>/mem for combined
// read/write (falling back to read-only, mirroring a process that refuses
// ptrace-level access but still exposes a readable mem file).
func Open(pid uint32) (Process, error) {
	path := fmt.Sprintf("/proc/%d", pid)
	if _, err := os.Stat(path); err != nil {
		return nil, &OsError{Op: "stat /proc/<pid>", Pid: pid, Err: err}
	}

	f, err := os.OpenFile(fmt.Sprintf("/proc/%d/mem", pid), os.O_RDWR, 0)
	if err != nil {
		f, err = os.Open(fmt.Sprintf("/proc/%d/mem", pid))
		if err != nil {
			return nil, &OsError{Op: "open /proc/<pid>/mem", Pid: pid, Err: err}
		}
	}
	return &linuxProcess{pid: pid, mem: f}, nil
}

func (p *linuxProcess) Pid() uint32 { return p.pid }

func (p *linuxProcess) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	if err := p.mem.Close(); err != nil {
		return &OsError{Op: "close mem", Pid: p.pid, Err: err}
	}
	return nil
}

func (p *linuxProcess) Read(addr VirtualAddr, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	n, err := p.mem.ReadAt(buf, int64(addr))
	if err != nil || n != len(buf) {
		return &ReadError{Addr: addr, Want: len(buf), Got: n, Err: err}
	}
	return nil
}

func (p *linuxProcess) Write(addr VirtualAddr, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	n, err := p.mem.WriteAt(data, int64(addr))
	if err != nil || n != len(data) {
		return &WriteError{Addr: addr, Want: len(data), Got: n, Err: err}
	}
	return nil
}

// QueryPages parses /proc/<pid>/maps. A region is reported only if its
// permission string starts with "rw": read-only regions can be scanned but
// never poked, so they're excluded up front rather than surfaced as
// results the user can't act on.
func (p *linuxProcess) QueryPages() ([]VirtualPage, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/maps", p.pid))
	if err != nil {
		return nil, &OsError{Op: "open maps", Pid: p.pid, Err: err}
	}
	defer f.Close()

	var pages []VirtualPage
	sc := bufio.NewScanner(f)
	for sc.Scan() && len(pages) < MaxRegions {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		bounds := strings.SplitN(fields[0], "-", 2)
		if len(bounds) != 2 {
			continue
		}
		start, err := strconv.ParseUint(bounds[0], 16, 64)
		if err != nil {
			continue
		}
		end, err := strconv.ParseUint(bounds[1], 16, 64)
		if err != nil || end <= start {
			continue
		}
		perms := fields[1]
		if len(perms) < 2 || perms[0] != 'r' || perms[1] != 'w' {
			continue
		}
		if VirtualAddr(start) >= userSpaceCeiling {
			break
		}
		size := end - start
		pages = append(pages, VirtualPage{
			Start:     VirtualAddr(start),
			Size:      size,
			Writable:  perms[1] == 'w',
			Oversized: isOversized(size),
		})
	}
	return pages, sc.Err()
}

// ListAll walks /proc for numeric entries and lists every one of them; no
// pid is opened or dropped here. A pid whose comm can't be read (permission
// denied, or the process exited after readdir) is listed with the name
// "UNKNOWN" rather than failing the whole listing.
func ListAll() ([]ProcessInfo, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, &OsError{Op: "readdir /proc", Err: err}
	}

	infos := make([]ProcessInfo, 0, len(entries))
	for _, e := range entries {
		pid64, err := strconv.ParseUint(e.Name(), 10, 32)
		if err != nil {
			continue
		}
		pid := uint32(pid64)
		infos = append(infos, ProcessInfo{Pid: pid, Name: readComm(pid)})
	}
	return infos, nil
}

func readComm(pid uint32) string {
	b, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pid))
	if err != nil {
		return "UNKNOWN"
	}
	return strings.TrimSpace(string(b))
}

// pageSize is exposed for callers that want to align scan chunk sizes to
// the host's native page size; kept here since unix.Getpagesize is the
// Linux-idiomatic source for it.
func pageSize() int {
	return unix.Getpagesize()
}
