package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ewah/ewah"
	"ewah/internal/catalog"
	"ewah/internal/render"
)

var segmentsWords bool

type jsonSegment struct {
	RunningBit    bool     `json:"runningBit"`
	RunningLength uint64   `json:"runningLength"`
	Literals      []string `json:"literals"`
}

var segmentsCmd = &cobra.Command{
	Use:   "segments [file]",
	Short: "Print the segment structure of a bitmap file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := catalog.ReadFile(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !jsonOut {
			return render.Segments(out, b, segmentsWords)
		}

		segments := []jsonSegment{}
		b.Segments(func(s ewah.Segment) bool {
			lits := make([]string, len(s.Literals))
			for i, w := range s.Literals {
				lits[i] = fmt.Sprintf("%016x", w)
			}
			segments = append(segments, jsonSegment{s.RunningBit, s.RunningLength, lits})
			return true
		})
		return writeJSON(out, segments)
	},
}

func init() {
	rootCmd.AddCommand(segmentsCmd)

	segmentsCmd.Flags().BoolVarP(&segmentsWords, "words", "w", false, "Print every literal word")
}
