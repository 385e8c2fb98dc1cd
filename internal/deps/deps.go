// Package deps verifies at startup that every required library is present
// and functional.
package deps

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/xuri/excelize/v2"
	"gocv.io/x/gocv"

	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/apperr"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/logger"
)

// Probe is one named dependency check.
type Probe struct {
	Name  string
	Check func() error
}

// DefaultProbes returns the probes for every library and resource the tool
// needs before a session can start.
func DefaultProbes(exportDir string) []Probe {
	return []Probe{
		{Name: "opencv", Check: checkOpenCV},
		{Name: "zxing", Check: checkZXing},
		{Name: "excel", Check: checkExcel},
		{Name: "sqlite", Check: checkSQLite},
		{Name: "export-dir", Check: func() error { return checkExportDir(exportDir) }},
	}
}

// Check runs every probe and reports each result. It returns a dependency
// error naming the failed probes, or nil when all pass.
func Check(probes []Probe, log *logger.Logger) error {
	var missing []string

	for _, probe := range probes {
		if err := probe.Check(); err != nil {
			log.Error("Dependency %s: %v", probe.Name, err)
			missing = append(missing, probe.Name)
			continue
		}
		log.Info("Dependency %s: OK", probe.Name)
	}

	if len(missing) > 0 {
		return apperr.NewDependencyError(
			fmt.Sprintf("missing dependencies: %s", strings.Join(missing, ", ")), nil)
	}
	return nil
}

// checkOpenCV verifies the OpenCV runtime is linked and reports a version.
func checkOpenCV() error {
	if gocv.Version() == "" || gocv.OpenCVVersion() == "" {
		return fmt.Errorf("opencv runtime not available")
	}
	return nil
}

// checkZXing round-trips a QR code in memory.
func checkZXing() error {
	const probe = "dependency-check"

	writer := qrcode.NewQRCodeWriter()
	matrix, err := writer.Encode(probe, gozxing.BarcodeFormat_QR_CODE, 100, 100, nil)
	if err != nil {
		return fmt.Errorf("encode failed: %v", err)
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(matrix)
	if err != nil {
		return fmt.Errorf("bitmap failed: %v", err)
	}

	result, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return fmt.Errorf("decode failed: %v", err)
	}
	if result.GetText() != probe {
		return fmt.Errorf("decode mismatch")
	}
	return nil
}

// checkExcel builds a workbook in memory.
func checkExcel() error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetCellValue("Sheet1", "A1", "ok"); err != nil {
		return fmt.Errorf("write cell failed: %v", err)
	}
	if _, err := f.WriteToBuffer(); err != nil {
		return fmt.Errorf("serialize failed: %v", err)
	}
	return nil
}

// checkSQLite verifies the driver is registered.
func checkSQLite() error {
	for _, driver := range sql.Drivers() {
		if driver == "sqlite3" {
			return nil
		}
	}
	return fmt.Errorf("sqlite3 driver not registered")
}

// checkExportDir verifies the export directory is writable.
func checkExportDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create %s: %v", dir, err)
	}
	probe := filepath.Join(dir, ".write-check")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("cannot write to %s: %v", dir, err)
	}
	os.Remove(probe)
	return nil
}
