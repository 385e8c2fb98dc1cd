package models

import (
	"fmt"
	"strings"
	"time"
)

// Symbology identifies the barcode/QR encoding standard of a decoded code.
type Symbology string

const (
	SymbologyQRCode     Symbology = "QR_CODE"
	SymbologyDataMatrix Symbology = "DATA_MATRIX"
	SymbologyPDF417     Symbology = "PDF_417"
	SymbologyAztec      Symbology = "AZTEC"
	SymbologyEAN8       Symbology = "EAN_8"
	SymbologyEAN13      Symbology = "EAN_13"
	SymbologyUPCA       Symbology = "UPC_A"
	SymbologyUPCE       Symbology = "UPC_E"
	SymbologyCode39     Symbology = "CODE_39"
	SymbologyCode93     Symbology = "CODE_93"
	SymbologyCode128    Symbology = "CODE_128"
	SymbologyITF        Symbology = "ITF"
	SymbologyCodabar    Symbology = "CODABAR"
)

// Symbologies lists every supported symbology.
var Symbologies = []Symbology{
	SymbologyQRCode,
	SymbologyDataMatrix,
	SymbologyPDF417,
	SymbologyAztec,
	SymbologyEAN8,
	SymbologyEAN13,
	SymbologyUPCA,
	SymbologyUPCE,
	SymbologyCode39,
	SymbologyCode93,
	SymbologyCode128,
	SymbologyITF,
	SymbologyCodabar,
}

// Valid reports whether s is one of the supported symbologies.
func (s Symbology) Valid() bool {
	for _, known := range Symbologies {
		if s == known {
			return true
		}
	}
	return false
}

// Source identifies where a frame came from.
type Source string

const (
	SourceImage  Source = "image"
	SourceCamera Source = "camera"
)

// Point is a 2D pixel coordinate inside a frame.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DetectionRecord is one decoded code found in a frame. Records are
// immutable once created.
type DetectionRecord struct {
	Symbology Symbology `json:"symbology"`
	Payload   string    `json:"payload"`
	Region    []Point   `json:"region"`
	Timestamp time.Time `json:"timestamp"`
	Source    Source    `json:"source"`
}

// RegionString flattens the bounding region into "x,y;x,y;..." form for
// export and storage.
func (r DetectionRecord) RegionString() string {
	if len(r.Region) == 0 {
		return ""
	}
	parts := make([]string, 0, len(r.Region))
	for _, p := range r.Region {
		parts = append(parts, fmt.Sprintf("%d,%d", p.X, p.Y))
	}
	return strings.Join(parts, ";")
}

// BoundingRect returns the axis-aligned rectangle enclosing the region.
func (r DetectionRecord) BoundingRect() (x, y, w, h int) {
	if len(r.Region) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY := r.Region[0].X, r.Region[0].Y
	maxX, maxY := minX, minY
	for _, p := range r.Region[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return minX, minY, maxX - minX, maxY - minY
}
