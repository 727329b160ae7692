package procmem

import "testing"

func TestVirtualPageEnd(t *testing.T) {
	p := VirtualPage{Start: VirtualAddr(0x1000), Size: 0x200}
	if got, want := p.End(), VirtualAddr(0x1200); got != want {
		t.Fatalf("End() = %s, want %s", got, want)
	}
}

func TestIsOversized(t *testing.T) {
	if !isOversized(MaxPageBytes + 1) {
		t.Fatal("expected true above MaxPageBytes")
	}
	if isOversized(4096) {
		t.Fatal("expected false for a normal page")
	}
}

func TestVirtualAddrString(t *testing.T) {
	if got, want := VirtualAddr(0xdeadbeef).String(), "0xdeadbeef"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestProcessInfoString(t *testing.T) {
	pi := ProcessInfo{Pid: 42, Name: "target.exe"}
	if got, want := pi.String(), "42\ttarget.exe"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
