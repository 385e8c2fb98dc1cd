package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/config"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/repository/sqlite"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show detection history statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("cannot open history database: %w", err)
	}
	defer db.Close()

	detections := sqlite.NewDetectionRepository(db)
	sessions := sqlite.NewSessionRepository(db)

	total, err := detections.TotalCount()
	if err != nil {
		return err
	}
	fmt.Printf("Total detections: %d\n", total)

	counts, err := detections.CountBySymbology()
	if err != nil {
		return err
	}
	if len(counts) > 0 {
		fmt.Println("\nBy symbology:")
		for _, count := range counts {
			fmt.Printf("  %-12s %d\n", count.Symbology, count.Count)
		}
	}

	recent, err := sessions.Recent(10)
	if err != nil {
		return err
	}
	if len(recent) > 0 {
		fmt.Println("\nRecent sessions:")
		for _, s := range recent {
			fmt.Printf("  #%d %s (device %d) %s: %d frame(s), %d detection(s)\n",
				s.ID, s.Source, s.Device, s.StartedAt.Format("2006-01-02 15:04:05"), s.Frames, s.Detections)
		}
	}
	return nil
}
