// Package cmd implements the bptreectl command-line driver around
// pkg/btree, in the ambient style of the example pack's cobra-based CLIs.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"bptreedb/pkg/config"
)

var (
	cfgPath  string
	devPath  string
	keySize  int
	cfg      *config.Config
	logLevel string
)

// rootCmd is the base command when bptreectl is called without any
// subcommand.
var rootCmd = &cobra.Command{
	Use:   "bptreectl",
	Short: "bptreectl manages a disk-backed fixed-key B+ tree index",
	Long: `bptreectl drives a single-file, block-addressed B+ tree index:
create a device, insert and look up fixed-size keys, and inspect the
tree's node structure.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgPath != "" {
			loaded, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg = loaded
		} else {
			cfg = config.DefaultConfig()
		}
		if devPath != "" {
			cfg.DevicePath = devPath
		}
		if keySize != 0 {
			cfg.KeySize = keySize
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}

		level := slog.LevelInfo
		_ = level.UnmarshalText([]byte(cfg.Logging.Level))
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		return nil
	},
}

// Execute runs the root command. Called once from main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVarP(&devPath, "device", "f", "", "path to the index device file (overrides config)")
	rootCmd.PersistentFlags().IntVar(&keySize, "key-size", 0, "fixed key size in bytes (overrides config, create only)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}
