package models

import "time"

// CurrentFormatVersion is the document format version this editor writes.
const CurrentFormatVersion = "1.0"

// ElementType identifies the kind of a layout element. The set is closed;
// per-kind defaults live in the catalog package as data.
type ElementType string

const (
	ElementGauge       ElementType = "gauge"
	ElementBar         ElementType = "bar"
	ElementDigital     ElementType = "digital"
	ElementThermometer ElementType = "thermometer"
	ElementCompass     ElementType = "compass"
	ElementIndicator   ElementType = "indicator"
	ElementLabel       ElementType = "label"
	ElementSparkline   ElementType = "sparkline"
)

// ElementTypes lists every supported element kind.
var ElementTypes = []ElementType{
	ElementGauge,
	ElementBar,
	ElementDigital,
	ElementThermometer,
	ElementCompass,
	ElementIndicator,
	ElementLabel,
	ElementSparkline,
}

// IsValidElementType reports whether t is a supported element kind.
func IsValidElementType(t ElementType) bool {
	for _, known := range ElementTypes {
		if t == known {
			return true
		}
	}
	return false
}

// FontWeight values accepted by the consuming renderer. These are strings,
// not numeric codes - a documented compatibility requirement.
var FontWeights = []string{"normal", "bold", "lighter", "bolder"}

// FontStyle values accepted by the consuming renderer.
var FontStyles = []string{"normal", "italic", "oblique"}

// LayoutDocument is the canonical layout exchanged with the external
// renderer. Element order is display/z-order and is preserved on save.
type LayoutDocument struct {
	Version  string            `json:"version"`
	Elements []Element         `json:"elements"`
	Metadata *DocumentMetadata `json:"metadata,omitempty"`
}

// DocumentMetadata carries optional descriptive fields.
type DocumentMetadata struct {
	Name        string    `json:"name,omitempty"`
	Description string    `json:"description,omitempty"`
	Author      string    `json:"author,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	ModifiedAt  time.Time `json:"modifiedAt,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	MinVersion  string    `json:"minVersion,omitempty"`
	MaxVersion  string    `json:"maxVersion,omitempty"`
}

// Element is one positioned, styled, sensor-bound visual unit.
type Element struct {
	ID             string           `json:"id"`
	Type           ElementType      `json:"type"`
	Sensor         string           `json:"sensor"`
	Visual         VisualProperties `json:"visual"`
	Animated       bool             `json:"animated"`
	AnimationSpeed float64          `json:"animationSpeed"`
}

// VisualProperties holds position, size and styling in canvas-space.
// Field names match the renderer's wire format exactly.
type VisualProperties struct {
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	BackgroundColor string  `json:"backgroundColor"`
	ForegroundColor string  `json:"foregroundColor"`
	NeedleColor     string  `json:"needleColor"`
	Opacity         float64 `json:"opacity"`
	Visible         bool    `json:"visible"`
	ShowText        bool    `json:"showText"`
	FontFamily      string  `json:"fontFamily"`
	FontSize        float64 `json:"fontSize"`
	FontWeight      string  `json:"fontWeight"`
	FontStyle       string  `json:"fontStyle"`
}

// NewLayoutDocument creates an empty document at the current format version.
func NewLayoutDocument() *LayoutDocument {
	return &LayoutDocument{
		Version:  CurrentFormatVersion,
		Elements: make([]Element, 0),
	}
}

// DefaultVisual returns baseline visual properties for a new element of
// the given size.
func DefaultVisual(x, y, width, height float64) VisualProperties {
	return VisualProperties{
		X:               x,
		Y:               y,
		Width:           width,
		Height:          height,
		BackgroundColor: "transparent",
		ForegroundColor: "#FFFFFF",
		NeedleColor:     "#FF4444",
		Opacity:         1.0,
		Visible:         true,
		ShowText:        true,
		FontFamily:      "sans-serif",
		FontSize:        14,
		FontWeight:      "normal",
		FontStyle:       "normal",
	}
}

// Clone returns a deep copy of the document.
func (d *LayoutDocument) Clone() *LayoutDocument {
	out := &LayoutDocument{
		Version:  d.Version,
		Elements: make([]Element, len(d.Elements)),
	}
	copy(out.Elements, d.Elements)
	if d.Metadata != nil {
		meta := *d.Metadata
		if d.Metadata.Tags != nil {
			meta.Tags = append([]string(nil), d.Metadata.Tags...)
		}
		out.Metadata = &meta
	}
	return out
}

// FindElement returns the index of the element with the given id, or -1.
func (d *LayoutDocument) FindElement(id string) int {
	for i := range d.Elements {
		if d.Elements[i].ID == id {
			return i
		}
	}
	return -1
}
