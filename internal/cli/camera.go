package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/liveview"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/session"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/source"
)

var cameraDevice int

var cameraCmd = &cobra.Command{
	Use:   "camera",
	Short: "Detect codes in a live camera feed until interrupted",
	RunE:  runCamera,
}

func init() {
	cameraCmd.Flags().IntVar(&cameraDevice, "device", 0, "camera device index")
	rootCmd.AddCommand(cameraCmd)
}

func runCamera(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := source.OpenCamera(cameraDevice, source.CameraConfig{
		Width:  a.cfg.CameraWidth,
		Height: a.cfg.CameraHeight,
		FPS:    a.cfg.CameraFPS,
	})
	if err != nil {
		return err
	}

	opts := session.Options{
		Device:    cameraDevice,
		Annotator: a.detector,
	}
	if a.cfg.LiveViewEnabled {
		view := liveview.NewServer(a.cfg.LiveViewPort, a.log)
		view.Start(ctx)
		opts.Broadcaster = view
	}

	go a.monitor.Run(ctx)

	a.log.Info("🎥 Camera session on device %d (Ctrl+C to stop)", cameraDevice)
	records, err := a.controller(opts).Run(ctx, src)
	if err != nil {
		return err
	}

	snapshot := a.monitor.Snapshot()
	fmt.Printf("Session finished: %d frame(s), %d detection(s), %.1f fps\n",
		snapshot.Frames, snapshot.Detections, snapshot.FPS)
	if len(records) > 0 {
		fmt.Printf("Results exported to %s\n", a.exporter.Path())
	}
	return nil
}
