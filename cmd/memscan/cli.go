package main

// cli.go - User-friendly command-line interface for memscan
//
// Subcommands:
// - memscan list                                   enumerate attachable processes
// - memscan scan  -pid N -type i32 'query'          first-pass scan, streams to stdout
// - memscan refine -pid N -in f 'query'             refine a prior address list
// - memscan peek  -pid N -type i32 -addr 0x...       read one address
// - memscan poke  -pid N -type i32 -addr 0x... -value V   write one address
// - memscan help / version

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xyproto/memscan/internal/datatype"
	"github.com/xyproto/memscan/internal/procmem"
	"github.com/xyproto/memscan/internal/query"
	"github.com/xyproto/memscan/internal/result"
	"github.com/xyproto/memscan/internal/scanengine"
)

// CommandContext holds flags common to every subcommand.
type CommandContext struct {
	Verbose bool
}

// RunCLI dispatches the subcommand named by args[0].
func RunCLI(args []string, verbose bool) error {
	ctx := &CommandContext{Verbose: verbose}

	if len(args) == 0 {
		return cmdHelp(ctx)
	}

	subcmd := args[0]
	rest := args[1:]

	switch subcmd {
	case "list":
		return cmdList(ctx, rest)
	case "scan":
		return cmdScan(ctx, rest)
	case "refine":
		return cmdRefine(ctx, rest)
	case "peek":
		return cmdPeek(ctx, rest)
	case "poke":
		return cmdPoke(ctx, rest)
	case "help", "--help", "-h":
		return cmdHelp(ctx)
	case "version", "--version", "-V":
		fmt.Println(versionString)
		return nil
	default:
		return fmt.Errorf("unknown command: %s\n\nRun 'memscan help' for usage information", subcmd)
	}
}

func cmdList(ctx *CommandContext, args []string) error {
	procs, err := procmem.ListAll()
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	for _, p := range procs {
		fmt.Println(p.String())
	}
	return nil
}

func cmdScan(ctx *CommandContext, args []string) error {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	pid := fs.Int("pid", 0, "target process id")
	typeName := fs.String("type", "i32", "data type: i32, i64, f32, f64")
	outPath := fs.String("out", "", "write matched addresses to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("usage: memscan scan -pid N -type i32 'query'")
	}
	queryStr := fs.Arg(0)

	n, err := query.Parse(queryStr)
	if err != nil {
		return err
	}
	dt, ok := datatype.ParseDataType(*typeName)
	if !ok {
		return fmt.Errorf("scan: unknown -type %q", *typeName)
	}

	proc, err := procmem.Open(uint32(*pid))
	if err != nil {
		return err
	}
	defer proc.Close()

	scanengine.VerboseMode = ctx.Verbose

	start := time.Now()
	session := scanengine.NewSession()
	ch := session.Start(proc, n, nil)

	results := streamResults(filterByType(ch, dt))
	fmt.Fprintf(os.Stderr, "memscan: %d matches in %s\n", len(results), time.Since(start).Round(time.Millisecond))

	if *outPath != "" {
		return writeResultFile(*outPath, results)
	}
	return nil
}

func cmdRefine(ctx *CommandContext, args []string) error {
	fs := flag.NewFlagSet("refine", flag.ContinueOnError)
	pid := fs.Int("pid", 0, "target process id")
	inPath := fs.String("in", "", "prior address/type list (required)")
	outPath := fs.String("out", "", "write refined addresses to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("usage: memscan refine -pid N -in results.txt 'query'")
	}
	if *inPath == "" {
		return fmt.Errorf("refine: -in is required")
	}
	queryStr := fs.Arg(0)

	n, err := query.Parse(queryStr)
	if err != nil {
		return err
	}

	prior, err := readResultFile(*inPath)
	if err != nil {
		return fmt.Errorf("refine: %w", err)
	}

	proc, err := procmem.Open(uint32(*pid))
	if err != nil {
		return err
	}
	defer proc.Close()

	scanengine.VerboseMode = ctx.Verbose

	start := time.Now()
	session := scanengine.NewSession()
	ch := session.Start(proc, n, prior)

	results := streamResults(ch)
	fmt.Fprintf(os.Stderr, "memscan: %d matches in %s\n", len(results), time.Since(start).Round(time.Millisecond))

	if *outPath != "" {
		return writeResultFile(*outPath, results)
	}
	return nil
}

func cmdPeek(ctx *CommandContext, args []string) error {
	fs := flag.NewFlagSet("peek", flag.ContinueOnError)
	pid := fs.Int("pid", 0, "target process id")
	typeName := fs.String("type", "i32", "data type: i32, i64, f32, f64")
	addrStr := fs.String("addr", "", "address, e.g. 0x7ff6a0001000")
	if err := fs.Parse(args); err != nil {
		return err
	}

	dt, ok := datatype.ParseDataType(*typeName)
	if !ok {
		return fmt.Errorf("peek: unknown -type %q", *typeName)
	}
	addr, err := parseAddr(*addrStr)
	if err != nil {
		return fmt.Errorf("peek: %w", err)
	}

	proc, err := procmem.Open(uint32(*pid))
	if err != nil {
		return err
	}
	defer proc.Close()

	buf := make([]byte, dt.Size())
	if err := proc.Read(addr, buf); err != nil {
		return err
	}
	fmt.Println(dt.Display(buf))
	return nil
}

func cmdPoke(ctx *CommandContext, args []string) error {
	fs := flag.NewFlagSet("poke", flag.ContinueOnError)
	pid := fs.Int("pid", 0, "target process id")
	typeName := fs.String("type", "i32", "data type: i32, i64, f32, f64")
	addrStr := fs.String("addr", "", "address, e.g. 0x7ff6a0001000")
	value := fs.String("value", "", "value to write, decimal")
	if err := fs.Parse(args); err != nil {
		return err
	}

	dt, ok := datatype.ParseDataType(*typeName)
	if !ok {
		return fmt.Errorf("poke: unknown -type %q", *typeName)
	}
	addr, err := parseAddr(*addrStr)
	if err != nil {
		return fmt.Errorf("poke: %w", err)
	}
	buf, err := dt.ToBytes(*value)
	if err != nil {
		return err
	}

	proc, err := procmem.Open(uint32(*pid))
	if err != nil {
		return err
	}
	defer proc.Close()

	if err := proc.Write(addr, buf); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "memscan: write ok")
	return nil
}

// filterByType narrows a scan's output to one interpretation, since a
// single address can otherwise surface under more than one data type.
func filterByType(ch <-chan result.SearchResult, dt datatype.DataType) <-chan result.SearchResult {
	out := make(chan result.SearchResult)
	go func() {
		defer close(out)
		for r := range ch {
			if r.DataType == dt {
				out <- r
			}
		}
	}()
	return out
}

func streamResults(ch <-chan result.SearchResult) []result.SearchResult {
	var out []result.SearchResult
	for r := range ch {
		fmt.Println(r.String())
		out = append(out, r)
	}
	return out
}

// writeResultFile persists one "addr<TAB>type" pair per line. Deliberately
// dumb: no header, no checksum, no binary encoding, so it's easy to hand-edit
// between a scan and a refine.
func writeResultFile(path string, results []result.SearchResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\n", r.Address, r.DataType.Name())
	}
	return w.Flush()
}

func readResultFile(path string) ([]result.SearchResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []result.SearchResult
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return nil, fmt.Errorf("malformed line %q", line)
		}
		addr, err := parseAddr(fields[0])
		if err != nil {
			return nil, err
		}
		dt, ok := datatype.ParseDataType(fields[1])
		if !ok {
			return nil, fmt.Errorf("unknown data type %q", fields[1])
		}
		out = append(out, result.SearchResult{Address: addr, DataType: dt})
	}
	return out, sc.Err()
}

func parseAddr(s string) (procmem.VirtualAddr, error) {
	s = strings.TrimPrefix(s, "0x")
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return procmem.VirtualAddr(v), nil
}

func cmdHelp(ctx *CommandContext) error {
	fmt.Printf(`memscan - an interactive process memory inspector (Version %s)

USAGE:
    memscan <command> [arguments]

COMMANDS:
    list                                          list attachable processes
    scan   -pid N [-type i32] [-out file] QUERY   first-pass scan, streams matches
    refine -pid N -in file [-out file] QUERY       refine a prior address list
    peek   -pid N -type i32 -addr 0x...            read a single address
    poke   -pid N -type i32 -addr 0x... -value V   write a single address
    help                                           show this help message
    version                                        show version information

QUERY SYNTAX:
    [comparator] number
    comparator := >= | <= | != | > | < | = | ~  (default ~, approximate match)
    number     := signed decimal, optional fraction, optional scientific exponent

EXAMPLES:
    memscan list
    memscan scan -pid 4242 -type i32 -out found.txt '100'
    memscan refine -pid 4242 -in found.txt '>50'
    memscan peek -pid 4242 -type f32 -addr 0x7ff6a0001000
    memscan poke -pid 4242 -type i32 -addr 0x7ff6a0001000 -value 999

`, versionString)
	return nil
}
