package catalog

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"ewah/ewah"
)

// ReadFile decodes a serialized bitmap from path.
func ReadFile(path string) (*ewah.Bitmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b, err := ewah.ReadBitmap(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return b, nil
}

// WriteFile atomically replaces path with the serialized form of b.
func WriteFile(path string, b *ewah.Bitmap) error {
	return writeAtomic(path, func(w io.Writer) error {
		bw := bufio.NewWriter(w)
		if _, err := ewah.WriteBitmap(bw, b); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		return bw.Flush()
	})
}

// ReadFiles decodes every path with at most jobs files in flight. Results
// are in the order of paths. The first failure cancels the rest.
func ReadFiles(ctx context.Context, paths []string, jobs int) ([]*ewah.Bitmap, error) {
	out := make([]*ewah.Bitmap, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := ReadFile(path)
			if err != nil {
				return err
			}
			out[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
