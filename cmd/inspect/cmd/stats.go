package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"ewah/ewah"
	"ewah/internal/catalog"
	"ewah/internal/common"
	"ewah/internal/render"
)

type fileStats struct {
	File string `json:"file"`
	ewah.Stats
	UncompressedBytes uint64 `json:"uncompressedBytes"`
}

var statsCmd = &cobra.Command{
	Use:   "stats [file...]",
	Short: "Summarize the encoding of one or more bitmap files.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		bitmaps, err := catalog.ReadFiles(cmd.Context(), args, jobs)
		if err != nil {
			return err
		}
		common.LogDuration(start, "loaded %d files", len(args))

		out := cmd.OutOrStdout()
		if jsonOut {
			all := make([]fileStats, len(bitmaps))
			for i, b := range bitmaps {
				st := b.Stats()
				all[i] = fileStats{File: args[i], Stats: st, UncompressedBytes: st.UncompressedBytes()}
			}
			return writeJSON(out, all)
		}

		for i, b := range bitmaps {
			if i > 0 {
				fmt.Fprintln(out)
			}
			if err := render.Stats(out, filepath.Base(args[i]), b.Stats()); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
