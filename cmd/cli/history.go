package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/peterh/liner"
)

const maxHistorySize = 1000

// History is the shell's command log. Consecutive repeats are collapsed,
// only the newest maxHistorySize commands are kept, and every accepted
// command is mirrored into the line editor when one is attached.
type History struct {
	file     string
	commands []string
	editor   *liner.State
}

// defaultHistoryFile is ~/.ewah_history.
func defaultHistoryFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ewah_history"), nil
}

// openHistory reads file if it exists and replays it into editor, which may
// be nil.
func openHistory(file string, editor *liner.State) (*History, error) {
	h := &History{file: file}

	f, err := os.Open(file)
	if errors.Is(err, os.ErrNotExist) {
		h.editor = editor
		return h, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		h.add(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}

	// Replay only what survived trimming.
	h.editor = editor
	for _, cmd := range h.commands {
		h.mirror(cmd)
	}
	return h, nil
}

// add records cmd and reports whether it was kept.
func (h *History) add(cmd string) bool {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return false
	}
	if n := len(h.commands); n > 0 && h.commands[n-1] == cmd {
		return false
	}

	h.commands = append(h.commands, cmd)
	if over := len(h.commands) - maxHistorySize; over > 0 {
		h.commands = slices.Delete(h.commands, 0, over)
	}
	h.mirror(cmd)
	return true
}

func (h *History) mirror(cmd string) {
	if h.editor != nil {
		h.editor.AppendHistory(cmd)
	}
}

// save rewrites the history file through a buffered writer.
func (h *History) save() error {
	f, err := os.Create(h.file)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, cmd := range h.commands {
		w.WriteString(cmd)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// recent returns the last n commands, or all of them when n <= 0.
func (h *History) recent(n int) []string {
	if n <= 0 || n > len(h.commands) {
		return h.commands
	}
	return h.commands[len(h.commands)-n:]
}
