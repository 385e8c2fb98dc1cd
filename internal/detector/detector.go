// Package detector decodes barcodes and QR codes in frames and normalizes
// library results into DetectionRecords.
package detector

import (
	"image"
	"time"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/aztec"
	"github.com/makiuchi-d/gozxing/datamatrix"
	"github.com/makiuchi-d/gozxing/multi"
	multiqr "github.com/makiuchi-d/gozxing/multi/qrcode"
	"github.com/makiuchi-d/gozxing/oned"

	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/apperr"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/logger"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/models"
)

// Detector runs every supported symbology reader over a frame in one pass.
type Detector struct {
	qrReader     multi.MultipleBarcodeReader
	onedReaders  []gozxing.Reader
	otherReaders []gozxing.Reader
	hints        map[gozxing.DecodeHintType]interface{}
	logger       *logger.Logger
}

// NewDetector builds a Detector covering all supported symbologies.
func NewDetector(log *logger.Logger) *Detector {
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}

	return &Detector{
		qrReader: multiqr.NewQRCodeMultiReader(),
		onedReaders: []gozxing.Reader{
			oned.NewMultiFormatUPCEANReader(hints),
			oned.NewCode39Reader(),
			oned.NewCode93Reader(),
			oned.NewCode128Reader(),
			oned.NewITFReader(),
			oned.NewCodaBarReader(),
		},
		otherReaders: []gozxing.Reader{
			datamatrix.NewDataMatrixReader(),
			aztec.NewAztecReader(),
		},
		hints:  hints,
		logger: log,
	}
}

// Detect decodes every readable code in the image. A frame without codes
// returns an empty slice and no error; only unreadable image data fails.
func (d *Detector) Detect(img image.Image, src models.Source) ([]models.DetectionRecord, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, apperr.NewLoadError("unreadable image data", err)
	}

	now := time.Now()
	var records []models.DetectionRecord
	seen := make(map[string]bool)

	add := func(result *gozxing.Result) {
		symbology, ok := fromFormat(result.GetBarcodeFormat())
		if !ok {
			d.logger.Warning("Skipping result with unsupported format: %v", result.GetBarcodeFormat())
			return
		}
		payload := result.GetText()
		if payload == "" || seen[payload] {
			return
		}
		seen[payload] = true
		records = append(records, models.DetectionRecord{
			Symbology: symbology,
			Payload:   payload,
			Region:    regionFromPoints(result.GetResultPoints()),
			Timestamp: now,
			Source:    src,
		})
	}

	if results, err := d.qrReader.DecodeMultiple(bmp, d.hints); err == nil {
		for _, result := range results {
			add(result)
		}
	}

	for _, reader := range d.onedReaders {
		if result, err := reader.Decode(bmp, d.hints); err == nil {
			add(result)
		}
	}
	for _, reader := range d.otherReaders {
		if result, err := reader.Decode(bmp, d.hints); err == nil {
			add(result)
		}
	}

	return records, nil
}

// fromFormat maps a library barcode format onto the closed symbology enum.
func fromFormat(format gozxing.BarcodeFormat) (models.Symbology, bool) {
	switch format {
	case gozxing.BarcodeFormat_QR_CODE:
		return models.SymbologyQRCode, true
	case gozxing.BarcodeFormat_DATA_MATRIX:
		return models.SymbologyDataMatrix, true
	case gozxing.BarcodeFormat_PDF_417:
		return models.SymbologyPDF417, true
	case gozxing.BarcodeFormat_AZTEC:
		return models.SymbologyAztec, true
	case gozxing.BarcodeFormat_EAN_8:
		return models.SymbologyEAN8, true
	case gozxing.BarcodeFormat_EAN_13:
		return models.SymbologyEAN13, true
	case gozxing.BarcodeFormat_UPC_A:
		return models.SymbologyUPCA, true
	case gozxing.BarcodeFormat_UPC_E:
		return models.SymbologyUPCE, true
	case gozxing.BarcodeFormat_CODE_39:
		return models.SymbologyCode39, true
	case gozxing.BarcodeFormat_CODE_93:
		return models.SymbologyCode93, true
	case gozxing.BarcodeFormat_CODE_128:
		return models.SymbologyCode128, true
	case gozxing.BarcodeFormat_ITF:
		return models.SymbologyITF, true
	case gozxing.BarcodeFormat_CODABAR:
		return models.SymbologyCodabar, true
	}
	return "", false
}

func regionFromPoints(points []gozxing.ResultPoint) []models.Point {
	region := make([]models.Point, 0, len(points))
	for _, p := range points {
		region = append(region, models.Point{X: int(p.GetX()), Y: int(p.GetY())})
	}
	return region
}
