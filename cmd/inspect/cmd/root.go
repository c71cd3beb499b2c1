package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"ewah/internal/common"
)

var (
	quiet   bool
	jsonOut bool
	jobs    int
)

var rootCmd = &cobra.Command{
	Use:   "ewah-inspect",
	Short: "Inspect and combine serialized EWAH bitmaps",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		common.LoggingEnabled = !quiet
	},
	SilenceUsage: true,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress timing output")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "print JSON instead of text")
	rootCmd.PersistentFlags().IntVarP(&jobs, "jobs", "J", runtime.NumCPU(), "files to load concurrently")
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
