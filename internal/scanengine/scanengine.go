// Package scanengine drives a full or refinement scan over a process's
// memory and streams matches back through a channel, off the caller's
// goroutine. One scan runs at a time per Session; starting a new one
// closes the previous worker's cancel channel, and that worker exits
// before its next page or at its pending send.
package scanengine

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/xyproto/memscan/internal/matcher"
	"github.com/xyproto/memscan/internal/procmem"
	"github.com/xyproto/memscan/internal/query"
	"github.com/xyproto/memscan/internal/result"
)

// VerboseMode gates the scan engine's own diagnostic chatter (oversize-page
// skips, unreadable pages). It's a package-level switch rather than a
// Session field so cmd/memscan can flip it once from a CLI flag and have
// every package that checks it agree.
var VerboseMode bool

// Session holds the state a UI needs to drive one target: whether a scan
// is in flight, and the cancel channel of the current scan.
type Session struct {
	loading atomic.Bool
	cancel  chan struct{}
}

// NewSession returns an idle session with no scan running.
func NewSession() *Session {
	return &Session{}
}

// Loading reports whether a scan is currently in flight. Advisory only;
// a caller draining the channel Start returned will see its closure
// regardless of when it last checked Loading.
func (s *Session) Loading() bool {
	return s.loading.Load()
}

// Start launches a scan in a new goroutine and returns a channel of
// results. Calling Start again abandons the previous scan: its cancel
// channel is closed, so the old worker gives up a blocked send and stops
// reading pages.
//
// prior is nil (or empty) for a full scan; non-empty triggers refinement
// over exactly those addresses.
func (s *Session) Start(proc procmem.Process, n query.Node, prior []result.SearchResult) <-chan result.SearchResult {
	if s.cancel != nil {
		close(s.cancel)
	}
	cancel := make(chan struct{})
	s.cancel = cancel

	// Unbuffered: each send waits until the caller receives it, so the
	// worker scans no faster than the caller drains.
	out := make(chan result.SearchResult)
	s.loading.Store(true)

	go func() {
		defer close(out)
		defer s.loading.Store(false)
		if len(prior) == 0 {
			fullScan(proc, n, out, cancel)
		} else {
			refine(proc, n, prior, out, cancel)
		}
	}()

	return out
}

// fullScan enumerates every committed, writable page and hands each one's
// bytes to the matcher, address order within a page, page order by
// enumeration order.
func fullScan(proc procmem.Process, n query.Node, out chan<- result.SearchResult, cancel <-chan struct{}) {
	pages, err := proc.QueryPages()
	if err != nil {
		if VerboseMode {
			fmt.Fprintf(os.Stderr, "memscan: query pages: %v\n", err)
		}
		return
	}

	for _, page := range pages {
		select {
		case <-cancel:
			return
		default:
		}

		if page.Oversized {
			if VerboseMode {
				fmt.Fprintf(os.Stderr, "memscan: skipping oversize page %s\n", page)
			}
			continue
		}

		buf := make([]byte, page.Size)
		if err := proc.Read(page.Start, buf); err != nil {
			if VerboseMode {
				fmt.Fprintf(os.Stderr, "memscan: unreadable page %s: %v\n", page, err)
			}
			continue // unreadable page is treated as empty, not a scan failure
		}

		for _, hit := range matcher.ScanPage(buf, n) {
			sr := result.SearchResult{
				Address:  page.Start + procmem.VirtualAddr(hit.Offset),
				DataType: hit.DataType,
				Value:    hit.Value,
			}
			select {
			case out <- sr:
			case <-cancel:
				return
			}
		}
	}
}

// refine re-reads each prior address and re-tests it in isolation. An
// address whose page became unreadable is silently dropped, never
// reported as an error: the prior result simply doesn't survive.
func refine(proc procmem.Process, n query.Node, prior []result.SearchResult, out chan<- result.SearchResult, cancel <-chan struct{}) {
	for _, p := range prior {
		select {
		case <-cancel:
			return
		default:
		}

		size := p.DataType.Size()
		buf := make([]byte, size)
		if err := proc.Read(p.Address, buf); err != nil {
			if VerboseMode {
				fmt.Fprintf(os.Stderr, "memscan: dropping %s (%s): %v\n", p.Address, p.DataType, err)
			}
			continue
		}

		if !matcher.TestSlot(n, p.DataType, buf) {
			continue
		}

		sr := result.SearchResult{Address: p.Address, DataType: p.DataType, Value: buf}
		select {
		case out <- sr:
		case <-cancel:
			return
		}
	}
}

