package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"ewah/internal/catalog"
	"ewah/internal/common"
)

var (
	catalogDir string
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "ewah-cli",
	Short: "Interactive shell for building and combining EWAH bitmaps",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		common.LoggingEnabled = !quiet
		return run()
	},
}

func init() {
	home, _ := os.UserHomeDir()
	rootCmd.Flags().StringVarP(&catalogDir, "dir", "d", filepath.Join(home, ".ewah"), "directory for saved bitmaps")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress timing output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cat, err := catalog.Open(catalogDir)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	s := newSession(os.Stdout, cat)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(s.complete)

	var hist *History
	file, err := defaultHistoryFile()
	if err == nil {
		hist, err = openHistory(file, line)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: history disabled: %v\n", err)
	} else {
		s.history = hist
		defer func() {
			if err := hist.save(); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to save history: %v\n", err)
			}
		}()
	}

	fmt.Println("ewah - compressed bitmap shell")
	fmt.Printf("catalog: %s (%d saved)\n", cat.Dir(), len(cat.Current().Entries))
	fmt.Println(`type "help" for commands`)

	for {
		input, err := line.Prompt("ewah> ")
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return nil
		}
		if err != nil {
			return fmt.Errorf("input error: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if hist != nil {
			hist.add(input)
		} else {
			line.AppendHistory(input)
		}

		quit, err := s.exec(input)
		if err != nil {
			fmt.Printf("error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}
