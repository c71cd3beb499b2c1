package main

import (
	"fmt"
	"io"
	"math/rand"
	"slices"
	"strconv"
	"strings"
	"time"

	"ewah/ewah"
	"ewah/internal/catalog"
	"ewah/internal/common"
)

// session holds the named bitmaps of one shell.
type session struct {
	out     io.Writer
	catalog *catalog.Catalog
	history *History
	rnd     *rand.Rand
	bitmaps map[string]*ewah.Bitmap
}

type command struct {
	usage string
	help  string
	args  int // minimum number of arguments
	run   func(s *session, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"new":       {"new <name>", "create an empty bitmap", 1, cmdNew},
		"set":       {"set <name> <pos>...", "set bits in increasing order", 2, cmdSet},
		"add":       {"add <name> <hexword> [bits]", "append a literal word", 2, cmdAdd},
		"fill":      {"fill <name> <0|1> <words>", "append a run of empty words", 3, cmdFill},
		"size":      {"size <name> <bits>", "grow the logical size", 2, cmdSize},
		"and":       {"and <dst> <a> <b>", "dst = a AND b", 3, cmdMerge},
		"or":        {"or <dst> <a> <b>", "dst = a OR b", 3, cmdMerge},
		"andnot":    {"andnot <dst> <a> <b>", "dst = a AND NOT b", 3, cmdMerge},
		"not":       {"not <name>", "complement in place", 1, cmdNot},
		"clone":     {"clone <dst> <src>", "copy a bitmap", 2, cmdClone},
		"equal":     {"equal <a> <b>", "compare set bits", 2, cmdEqual},
		"card":      {"card <name>", "count set bits", 1, cmdCard},
		"positions": {"positions <name> [limit]", "list set positions", 1, cmdPositions},
		"dump":      {"dump <name> [-w]", "show segments, -w with literal words", 1, cmdDump},
		"stats":     {"stats <name>", "show encoding statistics", 1, cmdStats},
		"json":      {"json <name>", "print as JSON", 1, cmdJSON},
		"seed":      {"seed <name> <bits> <density>", "fill a bitmap with random bits", 3, cmdSeed},
		"save":      {"save <name>", "write a bitmap to the catalog", 1, cmdSave},
		"load":      {"load <name>", "read a bitmap from the catalog", 1, cmdLoad},
		"rm":        {"rm <name>", "delete a bitmap from the catalog", 1, cmdRemove},
		"inspect":   {"inspect <file>", "show a serialized bitmap file", 1, cmdInspect},
		"list":      {"list", "list bitmaps in memory and in the catalog", 0, cmdList},
		"history":   {"history [n]", "show recent commands", 0, cmdHistory},
		"help":      {"help", "show this text", 0, cmdHelp},
	}
}

func newSession(out io.Writer, cat *catalog.Catalog) *session {
	return &session{
		out:     out,
		catalog: cat,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		bitmaps: make(map[string]*ewah.Bitmap),
	}
}

// exec runs one input line. It reports whether the shell should exit.
func (s *session) exec(line string) (bool, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false, nil
	}
	name := strings.ToLower(parts[0])
	if name == "exit" || name == "quit" {
		return true, nil
	}

	cmd, ok := commands[name]
	if !ok {
		return false, fmt.Errorf("unknown command %q", name)
	}
	args := parts[1:]
	if len(args) < cmd.args {
		return false, fmt.Errorf("usage: %s", cmd.usage)
	}
	return false, cmd.run(s, append([]string{name}, args...))
}

// complete offers command names for the first word and bitmap names after.
func (s *session) complete(line string) []string {
	var out []string
	if !strings.Contains(line, " ") {
		for name := range commands {
			if strings.HasPrefix(name, line) {
				out = append(out, name)
			}
		}
		slices.Sort(out)
		return out
	}

	i := strings.LastIndex(line, " ")
	head, word := line[:i+1], line[i+1:]
	for _, name := range s.names() {
		if strings.HasPrefix(name, word) {
			out = append(out, head+name)
		}
	}
	return out
}

func (s *session) names() []string {
	names := make([]string, 0, len(s.bitmaps))
	for name := range s.bitmaps {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (s *session) get(name string) (*ewah.Bitmap, error) {
	b, ok := s.bitmaps[name]
	if !ok {
		return nil, fmt.Errorf("no bitmap named %q", name)
	}
	return b, nil
}

// getOrNew returns the named bitmap, creating it if absent.
func (s *session) getOrNew(name string) *ewah.Bitmap {
	b, ok := s.bitmaps[name]
	if !ok {
		b = ewah.New()
		s.bitmaps[name] = b
	}
	return b
}

func parseUint(arg string) (uint64, error) {
	v, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", arg)
	}
	return v, nil
}

func cmdNew(s *session, args []string) error {
	s.bitmaps[args[1]] = ewah.New()
	fmt.Fprintln(s.out, "ok")
	return nil
}

func cmdSet(s *session, args []string) error {
	b := s.getOrNew(args[1])
	for _, arg := range args[2:] {
		pos, err := parseUint(arg)
		if err != nil {
			return err
		}
		if err := b.Set(pos); err != nil {
			return err
		}
	}
	fmt.Fprintln(s.out, "ok")
	return nil
}

func cmdAdd(s *session, args []string) error {
	word, err := strconv.ParseUint(strings.TrimPrefix(args[2], "0x"), 16, 64)
	if err != nil {
		return fmt.Errorf("invalid hex word %q", args[2])
	}
	bits := 64
	if len(args) > 3 {
		if bits, err = strconv.Atoi(args[3]); err != nil || bits < 0 || bits > 64 {
			return fmt.Errorf("bits must be in [0, 64]")
		}
	}
	n := s.getOrNew(args[1]).AddBits(word, bits)
	fmt.Fprintf(s.out, "ok (%d words written)\n", n)
	return nil
}

func cmdFill(s *session, args []string) error {
	var v bool
	switch args[2] {
	case "0":
	case "1":
		v = true
	default:
		return fmt.Errorf("fill value must be 0 or 1")
	}
	n, err := parseUint(args[3])
	if err != nil {
		return err
	}
	written := s.getOrNew(args[1]).AddStreamOfEmptyWords(v, n)
	fmt.Fprintf(s.out, "ok (%d words written)\n", written)
	return nil
}

func cmdSize(s *session, args []string) error {
	b, err := s.get(args[1])
	if err != nil {
		return err
	}
	n, err := parseUint(args[2])
	if err != nil {
		return err
	}
	if !b.SetSizeInBits(n) {
		return fmt.Errorf("size %d is below current size %d", n, b.SizeInBits())
	}
	fmt.Fprintln(s.out, "ok")
	return nil
}

func cmdMerge(s *session, args []string) error {
	a, err := s.get(args[2])
	if err != nil {
		return err
	}
	b, err := s.get(args[3])
	if err != nil {
		return err
	}

	start := time.Now()
	var out *ewah.Bitmap
	switch args[0] {
	case "and":
		out = a.And(b)
	case "or":
		out = a.Or(b)
	case "andnot":
		out = a.AndNot(b)
	}
	s.bitmaps[args[1]] = out
	common.LogDuration(start, "%s %s %s -> %s", args[0], args[2], args[3], args[1])
	fmt.Fprintf(s.out, "%s: %d bits set, %d bytes\n", args[1], out.Cardinality(), out.SizeInBytes())
	return nil
}

func cmdNot(s *session, args []string) error {
	b, err := s.get(args[1])
	if err != nil {
		return err
	}
	b.Not()
	fmt.Fprintln(s.out, "ok")
	return nil
}

func cmdClone(s *session, args []string) error {
	b, err := s.get(args[2])
	if err != nil {
		return err
	}
	s.bitmaps[args[1]] = b.Clone()
	fmt.Fprintln(s.out, "ok")
	return nil
}

func cmdEqual(s *session, args []string) error {
	a, err := s.get(args[1])
	if err != nil {
		return err
	}
	b, err := s.get(args[2])
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, a.Equal(b))
	return nil
}

func cmdCard(s *session, args []string) error {
	b, err := s.get(args[1])
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, b.Cardinality())
	return nil
}

func cmdSave(s *session, args []string) error {
	b, err := s.get(args[1])
	if err != nil {
		return err
	}
	entry, err := s.catalog.Save(args[1], b)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "saved %s to %s\n", entry.Name, entry.File)
	return nil
}

func cmdLoad(s *session, args []string) error {
	b, err := s.catalog.Load(args[1])
	if err != nil {
		return err
	}
	s.bitmaps[args[1]] = b
	fmt.Fprintf(s.out, "loaded %s (%d bits)\n", args[1], b.SizeInBits())
	return nil
}

func cmdRemove(s *session, args []string) error {
	if err := s.catalog.Remove(args[1]); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "ok")
	return nil
}

func cmdList(s *session, args []string) error {
	for _, name := range s.names() {
		b := s.bitmaps[name]
		fmt.Fprintf(s.out, "  %-16s %10d bits %10d set %8s\n",
			name, b.SizeInBits(), b.Cardinality(), common.HumanBytes(uint64(b.SizeInBytes())))
	}
	if entries := s.catalog.Current().Entries; len(entries) > 0 {
		fmt.Fprintln(s.out, "saved:")
		for _, e := range entries {
			fmt.Fprintf(s.out, "  %-16s %10d bits %10d set %8s\n",
				e.Name, e.SizeInBits, e.Cardinality, common.HumanBytes(uint64(e.SizeInBytes)))
		}
	}
	return nil
}

func cmdHistory(s *session, args []string) error {
	if s.history == nil {
		return fmt.Errorf("history is disabled")
	}
	n := 20
	if len(args) > 1 {
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid count %q", args[1])
		}
		n = v
	}
	for _, cmd := range s.history.recent(n) {
		fmt.Fprintln(s.out, cmd)
	}
	return nil
}

func cmdHelp(s *session, args []string) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		c := commands[name]
		fmt.Fprintf(s.out, "  %-30s %s\n", c.usage, c.help)
	}
	fmt.Fprintf(s.out, "  %-30s %s\n", "exit", "leave the shell")
	return nil
}
