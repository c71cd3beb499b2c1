package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ewah/ewah"
	"ewah/internal/catalog"
	"ewah/internal/common"
)

var (
	combineOp     string
	combineOutput string
)

// combine folds bitmaps left to right with op. The result spans the
// largest input, so "or" keeps bits past the first bitmap's size.
func combine(op string, bitmaps []*ewah.Bitmap) (*ewah.Bitmap, error) {
	if len(bitmaps) == 0 {
		return nil, errors.New("no input bitmaps")
	}
	var fn func(a, b *ewah.Bitmap) *ewah.Bitmap
	switch op {
	case "and":
		fn = (*ewah.Bitmap).And
	case "or":
		fn = (*ewah.Bitmap).Or
	case "andnot":
		fn = (*ewah.Bitmap).AndNot
	default:
		return nil, fmt.Errorf("unknown operation %q (expected and, or or andnot)", op)
	}

	var size uint64
	for _, b := range bitmaps {
		size = max(size, b.SizeInBits())
	}
	acc := bitmaps[0].Clone()
	acc.SetSizeInBits(size)
	for _, b := range bitmaps[1:] {
		acc = fn(acc, b)
	}
	return acc, nil
}

var combineCmd = &cobra.Command{
	Use:   "combine [file...]",
	Short: "Combine bitmap files with and, or or andnot.",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if combineOutput == "" {
			return errors.New("--output is required")
		}
		bitmaps, err := catalog.ReadFiles(cmd.Context(), args, jobs)
		if err != nil {
			return err
		}

		start := time.Now()
		out, err := combine(combineOp, bitmaps)
		if err != nil {
			return err
		}
		common.LogDuration(start, "%s of %d bitmaps", combineOp, len(bitmaps))

		if err := catalog.WriteFile(combineOutput, out); err != nil {
			return err
		}
		if jsonOut {
			return writeJSON(cmd.OutOrStdout(), out.Stats())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d bits, %d set, %d bytes\n",
			combineOutput, out.SizeInBits(), out.Cardinality(), out.SizeInBytes())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(combineCmd)

	combineCmd.Flags().StringVarP(&combineOp, "op", "p", "or", "Operation: and, or or andnot")
	combineCmd.Flags().StringVarP(&combineOutput, "output", "o", "", "File to write the result to")
}
