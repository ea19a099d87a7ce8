package cmd

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"bptreedb/pkg/btree"
)

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:   "create <size-bytes>",
	Short: "Create a new index device",
	Long: `Create a new index device file of the given size and format it
with an empty root leaf.

Example:
  bptreectl create 1048576 --device ./index.img --key-size 32`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		size, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid size-bytes %q: %w", args[0], err)
		}

		tr, err := btree.Create(cfg.DevicePath, size, cfg.KeySize)
		if err != nil {
			return fmt.Errorf("create: %w", err)
		}
		defer tr.Close()

		slog.Info("index created", "device", cfg.DevicePath, "size_bytes", size, "key_size", cfg.KeySize)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
}
