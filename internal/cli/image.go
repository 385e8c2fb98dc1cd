package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/session"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/source"
)

var imageCmd = &cobra.Command{
	Use:   "image <path>",
	Short: "Detect codes in an image file and export the results",
	Args:  cobra.ExactArgs(1),
	RunE:  runImage,
}

func init() {
	rootCmd.AddCommand(imageCmd)
}

func runImage(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	src, err := source.NewImageSource(args[0])
	if err != nil {
		return err
	}

	ctrl := a.controller(session.Options{})
	records, err := ctrl.Run(context.Background(), src)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No codes detected")
		return nil
	}

	fmt.Printf("Detected %d code(s):\n", len(records))
	for i, record := range records {
		fmt.Printf("%3d. [%s] %s\n", i+1, record.Symbology, record.Payload)
	}
	fmt.Printf("Results exported to %s\n", a.exporter.Path())
	return nil
}
