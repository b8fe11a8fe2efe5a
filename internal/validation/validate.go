// Package validation implements the layout validation engine: a pure
// function from a layout document to a structured result. Errors block
// export; warnings are advisory so users can iterate on an imperfect
// layout. The engine accumulates every applicable issue - callers render
// the full list, so it never stops at the first problem.
package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/gauge-designer/backend/internal/models"
	"github.com/gauge-designer/backend/internal/sensors"
)

// Practical value ranges flagged as warnings, not errors.
const (
	MinPracticalFontSize = 8.0
	MaxPracticalFontSize = 72.0
	MinAnimationSpeed    = 0.1
	MaxAnimationSpeed    = 10.0
)

// Validator checks documents against a known-sensor set. A Validator is
// stateless apart from its configuration, so Validate is deterministic and
// safe to call on every keystroke.
type Validator struct {
	knownSensors map[string]bool
	knownList    string
}

// New creates a validator recognizing the given sensor ids.
func New(knownSensorIDs []string) *Validator {
	known := make(map[string]bool, len(knownSensorIDs))
	for _, id := range knownSensorIDs {
		known[id] = true
	}
	return &Validator{
		knownSensors: known,
		knownList:    strings.Join(knownSensorIDs, ", "),
	}
}

// Default returns a validator backed by the built-in sensor table.
func Default() *Validator {
	return New(sensors.KnownIDs())
}

// Validate checks the document against all structural and semantic rules
// and returns the accumulated result. It never returns an error and has no
// side effects.
func (v *Validator) Validate(doc *models.LayoutDocument) models.ValidationResult {
	result := models.NewValidationResult()

	if doc == nil {
		result.AddError("", "document is missing")
		return result
	}

	if doc.Version == "" {
		result.AddError("version", "document format version is required")
	}
	if doc.Elements == nil {
		result.AddError("elements", "document must have an elements sequence")
		return result
	}

	// Count ids first so duplicates can be reported once per offending
	// element.
	idCounts := make(map[string]int, len(doc.Elements))
	for i := range doc.Elements {
		if id := doc.Elements[i].ID; id != "" {
			idCounts[id]++
		}
	}

	for i := range doc.Elements {
		v.validateElement(&result, &doc.Elements[i], i, idCounts)
	}

	return result
}

func (v *Validator) validateElement(result *models.ValidationResult, el *models.Element, index int, idCounts map[string]int) {
	base := fmt.Sprintf("elements[%d]", index)

	if el.ID == "" {
		result.AddError(base+".id", "element id is required")
	} else if idCounts[el.ID] > 1 {
		result.AddError(base+".id", fmt.Sprintf("duplicate element id %q", el.ID))
	}

	if el.Type == "" {
		result.AddError(base+".type", "element type is required")
	} else if !models.IsValidElementType(el.Type) {
		result.AddError(base+".type", fmt.Sprintf("unknown element type %q", el.Type))
	}

	if el.Sensor == "" {
		result.AddError(base+".sensor", "element sensor reference is required")
	} else if !v.knownSensors[el.Sensor] {
		// The external renderer may define sensors this editor does not
		// know about, so an unrecognized reference is not a hard failure.
		result.AddWarning(base+".sensor",
			fmt.Sprintf("unknown sensor %q; known sensors: %s", el.Sensor, v.knownList))
	}

	v.validateVisual(result, &el.Visual, base+".visual")

	if el.Animated && (el.AnimationSpeed < MinAnimationSpeed || el.AnimationSpeed > MaxAnimationSpeed) {
		result.AddWarning(base+".animationSpeed",
			fmt.Sprintf("animation speed %.2f is outside the practical range [%.1f, %.1f]",
				el.AnimationSpeed, MinAnimationSpeed, MaxAnimationSpeed))
	}
}

func (v *Validator) validateVisual(result *models.ValidationResult, vis *models.VisualProperties, base string) {
	// Ordered so repeated validation of an unchanged document yields
	// byte-identical results.
	coords := []struct {
		name string
		val  float64
	}{
		{"x", vis.X}, {"y", vis.Y}, {"width", vis.Width}, {"height", vis.Height},
	}
	for _, c := range coords {
		if math.IsNaN(c.val) || math.IsInf(c.val, 0) {
			result.AddError(base+"."+c.name, c.name+" must be a finite number")
		}
	}

	if !math.IsNaN(vis.Width) && !math.IsInf(vis.Width, 0) && vis.Width <= 0 {
		result.AddError(base+".width", fmt.Sprintf("width must be > 0, got %g", vis.Width))
	}
	if !math.IsNaN(vis.Height) && !math.IsInf(vis.Height, 0) && vis.Height <= 0 {
		result.AddError(base+".height", fmt.Sprintf("height must be > 0, got %g", vis.Height))
	}

	if vis.Opacity < 0 || vis.Opacity > 1 || math.IsNaN(vis.Opacity) {
		result.AddError(base+".opacity", fmt.Sprintf("opacity must be in [0, 1], got %g", vis.Opacity))
	}

	if !contains(models.FontWeights, vis.FontWeight) {
		result.AddError(base+".fontWeight",
			fmt.Sprintf("fontWeight %q must be one of: %s", vis.FontWeight, strings.Join(models.FontWeights, ", ")))
	}
	if !contains(models.FontStyles, vis.FontStyle) {
		result.AddError(base+".fontStyle",
			fmt.Sprintf("fontStyle %q must be one of: %s", vis.FontStyle, strings.Join(models.FontStyles, ", ")))
	}

	colors := []struct {
		name string
		val  string
	}{
		{"backgroundColor", vis.BackgroundColor},
		{"foregroundColor", vis.ForegroundColor},
		{"needleColor", vis.NeedleColor},
	}
	for _, c := range colors {
		if !IsValidColor(c.val) {
			result.AddError(base+"."+c.name, fmt.Sprintf("%s %q is not a recognized color", c.name, c.val))
		}
	}

	// The renderer may clip negative positions; flag but keep user intent.
	if vis.X < 0 {
		result.AddWarning(base+".x", fmt.Sprintf("x is negative (%g); the renderer may clip this element", vis.X))
	}
	if vis.Y < 0 {
		result.AddWarning(base+".y", fmt.Sprintf("y is negative (%g); the renderer may clip this element", vis.Y))
	}

	if vis.FontSize < MinPracticalFontSize || vis.FontSize > MaxPracticalFontSize {
		result.AddWarning(base+".fontSize",
			fmt.Sprintf("font size %g is outside the practical range [%g, %g]",
				vis.FontSize, MinPracticalFontSize, MaxPracticalFontSize))
	}
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
