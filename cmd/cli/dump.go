package main

import (
	"fmt"

	"github.com/goccy/go-json"

	"ewah/internal/render"
)

func cmdPositions(s *session, args []string) error {
	b, err := s.get(args[1])
	if err != nil {
		return err
	}
	limit := uint64(0)
	if len(args) > 2 {
		if limit, err = parseUint(args[2]); err != nil {
			return err
		}
	}

	count := uint64(0)
	for p := range b.All() {
		if limit > 0 && count == limit {
			fmt.Fprintln(s.out, "...")
			break
		}
		fmt.Fprintln(s.out, p)
		count++
	}
	return nil
}

func cmdDump(s *session, args []string) error {
	b, err := s.get(args[1])
	if err != nil {
		return err
	}
	words := len(args) > 2 && args[2] == "-w"
	return render.Segments(s.out, b, words)
}

func cmdStats(s *session, args []string) error {
	b, err := s.get(args[1])
	if err != nil {
		return err
	}
	return render.Stats(s.out, args[1], b.Stats())
}

func cmdJSON(s *session, args []string) error {
	b, err := s.get(args[1])
	if err != nil {
		return err
	}
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, string(data))
	return nil
}
