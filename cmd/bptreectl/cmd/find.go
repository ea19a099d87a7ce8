package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bptreedb/pkg/btree"
	"bptreedb/pkg/disk"
)

var findOutFile string

// findCmd represents the find command
var findCmd = &cobra.Command{
	Use:   "find <key>",
	Short: "Look up a key and print its record lba",
	Long: `Look up key and print its record lba, or 0 on a miss. With
--out, also write the raw record payload to that path.

Example:
  bptreectl find mykey --device ./index.img`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tr, err := btree.Attach(cfg.DevicePath)
		if err != nil {
			return fmt.Errorf("attach: %w", err)
		}
		defer tr.Close()

		key := fixedWidth([]byte(args[0]), tr.KeySize())

		lba, err := tr.Find(key)
		if err != nil {
			return fmt.Errorf("find: %w", err)
		}
		fmt.Println(lba)

		if lba != 0 && findOutFile != "" {
			buf := make([]byte, disk.SectorSize)
			if err := tr.Disk().ReadSector(lba, buf); err != nil {
				return fmt.Errorf("read record: %w", err)
			}
			if err := os.WriteFile(findOutFile, buf, 0o600); err != nil {
				return fmt.Errorf("write record: %w", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(findCmd)
	findCmd.Flags().StringVar(&findOutFile, "out", "", "write the found record payload to this path")
}
