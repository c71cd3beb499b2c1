package cmd

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"ewah/internal/catalog"
)

var positionsLimit uint64

var positionsCmd = &cobra.Command{
	Use:   "positions [file]",
	Short: "Print the set bit positions of a bitmap file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := catalog.ReadFile(args[0])
		if err != nil {
			return err
		}
		if jsonOut {
			return writeJSON(cmd.OutOrStdout(), b)
		}

		w := bufio.NewWriter(cmd.OutOrStdout())
		count := uint64(0)
		for p := range b.All() {
			if positionsLimit > 0 && count == positionsLimit {
				break
			}
			fmt.Fprintln(w, p)
			count++
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(positionsCmd)

	positionsCmd.Flags().Uint64VarP(&positionsLimit, "limit", "n", 0, "Stop after this many positions (0 for all)")
}
