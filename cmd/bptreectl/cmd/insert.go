package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"bptreedb/pkg/btree"
	"bptreedb/pkg/disk"
)

var insertRecordFile string

// insertCmd represents the insert command
var insertCmd = &cobra.Command{
	Use:   "insert <key>",
	Short: "Insert or update a key's record",
	Long: `Insert a key with the record read from --record-file, padding or
truncating it to exactly one sector. Re-inserting an
existing key overwrites its record in place.

Example:
  bptreectl insert mykey --record-file payload.bin --device ./index.img`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tr, err := btree.Attach(cfg.DevicePath)
		if err != nil {
			return fmt.Errorf("attach: %w", err)
		}
		defer tr.Close()

		key := fixedWidth([]byte(args[0]), tr.KeySize())

		record, err := loadRecord(insertRecordFile)
		if err != nil {
			return err
		}

		lba, err := tr.Insert(key, record)
		if err != nil {
			return fmt.Errorf("insert: %w", err)
		}

		slog.Info("inserted", "key", args[0], "lba", lba)
		fmt.Println(lba)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(insertCmd)
	insertCmd.Flags().StringVar(&insertRecordFile, "record-file", "", "path to the record payload (required)")
	insertCmd.MarkFlagRequired("record-file")
}

// fixedWidth pads key with trailing zero bytes or truncates it to width.
func fixedWidth(key []byte, width int) []byte {
	out := make([]byte, width)
	copy(out, key)
	return out
}

func loadRecord(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}
	out := make([]byte, disk.SectorSize)
	copy(out, data)
	return out, nil
}
