package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"bptreedb/pkg/btree"
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print a breadth-first dump of every node in the tree",
	Long: `Dump walks the tree breadth-first and prints each node's lba,
kind, key count, and entries -- useful for inspecting split behavior.

Example:
  bptreectl dump --device ./index.img`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tr, err := btree.Attach(cfg.DevicePath)
		if err != nil {
			return fmt.Errorf("attach: %w", err)
		}
		defer tr.Close()

		return tr.Fprint(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}
