package main

import (
	"fmt"
	"path/filepath"

	"ewah/internal/catalog"
	"ewah/internal/render"
)

// cmdInspect shows a serialized bitmap file without adding it to the
// session.
func cmdInspect(s *session, args []string) error {
	path := args[1]
	b, err := catalog.ReadFile(path)
	if err != nil {
		return err
	}

	if err := render.Stats(s.out, filepath.Base(path), b.Stats()); err != nil {
		return err
	}
	fmt.Fprintln(s.out)
	return render.Segments(s.out, b, false)
}
