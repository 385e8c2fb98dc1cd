// Package cli implements the barqr command surface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/config"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/deps"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/logger"
)

// Version is the application version.
const Version = "1.0.0"

var checkDeps bool

var rootCmd = &cobra.Command{
	Use:   "barqr",
	Short: "Barcode & QR Code Detection System",
	Long: `Barcode & QR Code Detection System

Detects and decodes barcodes and QR codes in image files or a live camera
feed and appends every detection to an Excel workbook.`,
	Version: Version,
	// Errors are reported once, by main.
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if checkDeps {
			return runCheckDeps()
		}
		return cmd.Help()
	},
}

func init() {
	rootCmd.Flags().BoolVar(&checkDeps, "check-deps", false, "verify required libraries are available")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func runCheckDeps() error {
	cfg := config.Load()
	log, err := logger.NewLogger(cfg.LogDirectory)
	if err != nil {
		return err
	}
	defer log.Close()

	log.Info("Checking dependencies...")
	if err := deps.Check(deps.DefaultProbes(cfg.ExportDirectory), log); err != nil {
		return err
	}
	log.Info("✓ All dependencies are available")
	return nil
}
