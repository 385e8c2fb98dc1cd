// Package export appends detection records to an Excel workbook.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/apperr"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/logger"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/models"
)

const (
	resultsSheet = "Detection_Results"
	summarySheet = "Summary"
	workbookName = "detections.xlsx"

	timestampLayout = "2006-01-02 15:04:05"
)

var resultsHeader = []interface{}{"S.No.", "Timestamp", "Symbology", "Content", "Source", "Region"}

// ExcelExporter appends one row per DetectionRecord to a workbook under the
// export directory, creating the workbook and header on first use. Rows are
// only ever appended, never rewritten.
type ExcelExporter struct {
	path   string
	logger *logger.Logger
	mu     sync.Mutex
}

// NewExcelExporter creates an exporter writing to <dir>/detections.xlsx.
func NewExcelExporter(dir string, log *logger.Logger) *ExcelExporter {
	return &ExcelExporter{
		path:   filepath.Join(dir, workbookName),
		logger: log,
	}
}

// Path returns the workbook location.
func (e *ExcelExporter) Path() string {
	return e.path
}

// Export appends the records to the workbook. On failure the caller keeps
// the records and may retry on a later call.
func (e *ExcelExporter) Export(records []models.DetectionRecord) error {
	if len(records) == 0 {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(e.path), 0755); err != nil {
		return apperr.NewExportError("cannot create export directory", err)
	}

	f, created, err := e.openWorkbook()
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(resultsSheet)
	if err != nil {
		return apperr.NewExportError("cannot read results sheet", err)
	}

	// Row 1 is the header, so the next serial equals the data row count + 1.
	next := len(rows) + 1
	serial := len(rows)

	for _, record := range records {
		row := []interface{}{
			serial,
			record.Timestamp.Format(timestampLayout),
			string(record.Symbology),
			record.Payload,
			string(record.Source),
			record.RegionString(),
		}
		cell := fmt.Sprintf("A%d", next)
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return apperr.NewExportError("cannot append row", err)
		}
		next++
		serial++
	}

	e.writeSummary(f, serial-1)

	if err := f.SaveAs(e.path); err != nil {
		return apperr.NewExportError("cannot save workbook", err)
	}

	if created {
		e.logger.Info("Created workbook %s", e.path)
	}
	e.logger.Info("Exported %d record(s) to %s", len(records), e.path)
	return nil
}

// openWorkbook opens the existing workbook or creates a fresh one with
// styled headers. The second return value reports creation.
func (e *ExcelExporter) openWorkbook() (*excelize.File, bool, error) {
	if _, err := os.Stat(e.path); err == nil {
		f, err := excelize.OpenFile(e.path)
		if err != nil {
			return nil, false, apperr.NewExportError("cannot open workbook", err)
		}
		return f, false, nil
	}

	f := excelize.NewFile()

	index, err := f.NewSheet(resultsSheet)
	if err != nil {
		return nil, false, apperr.NewExportError("cannot create results sheet", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, false, apperr.NewExportError("cannot create summary sheet", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"366092"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, false, apperr.NewExportError("cannot create header style", err)
	}

	if err := f.SetSheetRow(resultsSheet, "A1", &resultsHeader); err != nil {
		return nil, false, apperr.NewExportError("cannot write header", err)
	}
	f.SetCellStyle(resultsSheet, "A1", "F1", headerStyle)
	f.SetColWidth(resultsSheet, "A", "A", 10)
	f.SetColWidth(resultsSheet, "B", "B", 22)
	f.SetColWidth(resultsSheet, "C", "C", 14)
	f.SetColWidth(resultsSheet, "D", "D", 60)
	f.SetColWidth(resultsSheet, "E", "E", 10)
	f.SetColWidth(resultsSheet, "F", "F", 40)

	summaryHeader := []interface{}{"Metric", "Value"}
	if err := f.SetSheetRow(summarySheet, "A1", &summaryHeader); err != nil {
		return nil, false, apperr.NewExportError("cannot write summary header", err)
	}
	f.SetCellStyle(summarySheet, "A1", "B1", headerStyle)
	f.SetColWidth(summarySheet, "A", "A", 30)
	f.SetColWidth(summarySheet, "B", "B", 20)

	return f, true, nil
}

// writeSummary rewrites the summary sheet; it carries derived values only.
func (e *ExcelExporter) writeSummary(f *excelize.File, total int) {
	f.SetCellValue(summarySheet, "A2", "Total Detections")
	f.SetCellValue(summarySheet, "B2", total)
	f.SetCellValue(summarySheet, "A3", "Date/Time")
	f.SetCellValue(summarySheet, "B3", time.Now().Format(timestampLayout))
}
