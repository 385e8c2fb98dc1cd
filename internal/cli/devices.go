package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/config"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/source"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List available camera devices",
	RunE:  runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	devices := source.ListDevices(cfg.CameraProbeLimit)
	if len(devices) == 0 {
		fmt.Println("No cameras found")
		return nil
	}

	for _, device := range devices {
		fmt.Printf("Device %d: %dx%d @ %.0f fps\n", device.Index, device.Width, device.Height, device.FPS)
	}
	return nil
}
