package validation

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/gauge-designer/backend/internal/models"
)

func validElement(id string) models.Element {
	return models.Element{
		ID:             id,
		Type:           models.ElementGauge,
		Sensor:         "rpm",
		Visual:         models.DefaultVisual(10, 10, 200, 200),
		Animated:       true,
		AnimationSpeed: 1.0,
	}
}

func validDocument(elements ...models.Element) *models.LayoutDocument {
	return &models.LayoutDocument{
		Version:  models.CurrentFormatVersion,
		Elements: elements,
	}
}

func errorPaths(result models.ValidationResult) []string {
	paths := make([]string, 0, len(result.Errors))
	for _, issue := range result.Errors {
		paths = append(paths, issue.Path)
	}
	return paths
}

func warningPaths(result models.ValidationResult) []string {
	paths := make([]string, 0, len(result.Warnings))
	for _, issue := range result.Warnings {
		paths = append(paths, issue.Path)
	}
	return paths
}

func TestValidate_ValidDocument(t *testing.T) {
	v := Default()
	result := v.Validate(validDocument(validElement("gauge_1"), validElement("gauge_2")))

	if !result.IsValid {
		t.Errorf("expected valid document, got errors: %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got: %v", result.Warnings)
	}
}

func TestValidate_NilDocument(t *testing.T) {
	result := Default().Validate(nil)

	if result.IsValid {
		t.Error("expected nil document to be invalid")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected exactly 1 error, got %d", len(result.Errors))
	}
}

func TestValidate_MissingElementsSequence(t *testing.T) {
	doc := &models.LayoutDocument{Version: "1.0"}
	result := Default().Validate(doc)

	if result.IsValid {
		t.Error("expected invalid result")
	}
	if got := errorPaths(result); !reflect.DeepEqual(got, []string{"elements"}) {
		t.Errorf("expected single error at 'elements', got %v", got)
	}
}

func TestValidate_MissingVersion(t *testing.T) {
	doc := &models.LayoutDocument{Elements: []models.Element{}}
	result := Default().Validate(doc)

	if result.IsValid {
		t.Error("expected invalid result")
	}
	if got := errorPaths(result); !reflect.DeepEqual(got, []string{"version"}) {
		t.Errorf("expected single error at 'version', got %v", got)
	}
}

// Two elements sharing an id must each be reported, so the user can find
// both offenders.
func TestValidate_DuplicateIDs(t *testing.T) {
	doc := validDocument(validElement("gauge_1"), validElement("gauge_1"))
	result := Default().Validate(doc)

	if result.IsValid {
		t.Error("expected invalid result")
	}
	want := []string{"elements[0].id", "elements[1].id"}
	if got := errorPaths(result); !reflect.DeepEqual(got, want) {
		t.Errorf("expected errors at %v, got %v", want, got)
	}
}

func TestValidate_OpacityOutOfRange(t *testing.T) {
	el := validElement("gauge_1")
	el.Visual.Opacity = 1.4
	result := Default().Validate(validDocument(el))

	if result.IsValid {
		t.Error("expected invalid result")
	}
	if got := errorPaths(result); !reflect.DeepEqual(got, []string{"elements[0].visual.opacity"}) {
		t.Errorf("expected single error on opacity, got %v", got)
	}
}

func TestValidate_StructuralErrors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*models.Element)
		wantPath string
	}{
		{"missing id", func(el *models.Element) { el.ID = "" }, "elements[0].id"},
		{"missing type", func(el *models.Element) { el.Type = "" }, "elements[0].type"},
		{"unknown type", func(el *models.Element) { el.Type = "dial" }, "elements[0].type"},
		{"missing sensor", func(el *models.Element) { el.Sensor = "" }, "elements[0].sensor"},
		{"zero width", func(el *models.Element) { el.Visual.Width = 0 }, "elements[0].visual.width"},
		{"negative height", func(el *models.Element) { el.Visual.Height = -5 }, "elements[0].visual.height"},
		{"NaN x", func(el *models.Element) { el.Visual.X = math.NaN() }, "elements[0].visual.x"},
		{"infinite y", func(el *models.Element) { el.Visual.Y = math.Inf(1) }, "elements[0].visual.y"},
		{"negative opacity", func(el *models.Element) { el.Visual.Opacity = -0.1 }, "elements[0].visual.opacity"},
		{"numeric fontWeight", func(el *models.Element) { el.Visual.FontWeight = "700" }, "elements[0].visual.fontWeight"},
		{"unknown fontStyle", func(el *models.Element) { el.Visual.FontStyle = "slanted" }, "elements[0].visual.fontStyle"},
		{"bad backgroundColor", func(el *models.Element) { el.Visual.BackgroundColor = "reddish" }, "elements[0].visual.backgroundColor"},
		{"bad foregroundColor", func(el *models.Element) { el.Visual.ForegroundColor = "#12" }, "elements[0].visual.foregroundColor"},
		{"bad needleColor", func(el *models.Element) { el.Visual.NeedleColor = "rgb(1,2)" }, "elements[0].visual.needleColor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el := validElement("gauge_1")
			tt.mutate(&el)
			result := Default().Validate(validDocument(el))

			if result.IsValid {
				t.Fatal("expected invalid result")
			}
			found := false
			for _, path := range errorPaths(result) {
				if path == tt.wantPath {
					found = true
				}
			}
			if !found {
				t.Errorf("expected an error at %s, got %v", tt.wantPath, errorPaths(result))
			}
		})
	}
}

func TestValidate_Warnings(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*models.Element)
		wantPath string
	}{
		{"unknown sensor", func(el *models.Element) { el.Sensor = "flux_capacitor" }, "elements[0].sensor"},
		{"negative x", func(el *models.Element) { el.Visual.X = -30 }, "elements[0].visual.x"},
		{"negative y", func(el *models.Element) { el.Visual.Y = -1 }, "elements[0].visual.y"},
		{"tiny font", func(el *models.Element) { el.Visual.FontSize = 4 }, "elements[0].visual.fontSize"},
		{"huge font", func(el *models.Element) { el.Visual.FontSize = 120 }, "elements[0].visual.fontSize"},
		{"animation too fast", func(el *models.Element) { el.AnimationSpeed = 50 }, "elements[0].animationSpeed"},
		{"animation too slow", func(el *models.Element) { el.AnimationSpeed = 0.01 }, "elements[0].animationSpeed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el := validElement("gauge_1")
			tt.mutate(&el)
			result := Default().Validate(validDocument(el))

			// Warnings never block export on their own.
			if !result.IsValid {
				t.Errorf("warnings must not make the document invalid; errors: %v", result.Errors)
			}
			if got := warningPaths(result); !reflect.DeepEqual(got, []string{tt.wantPath}) {
				t.Errorf("expected single warning at %s, got %v", tt.wantPath, got)
			}
		})
	}
}

func TestValidate_AnimationSpeedIgnoredWhenStatic(t *testing.T) {
	el := validElement("gauge_1")
	el.Animated = false
	el.AnimationSpeed = 500
	result := Default().Validate(validDocument(el))

	if !result.IsValid || len(result.Warnings) != 0 {
		t.Errorf("animation speed should be ignored for static elements, got %v / %v",
			result.Errors, result.Warnings)
	}
}

func TestValidate_UnknownSensorMessageListsKnownSensors(t *testing.T) {
	v := New([]string{"rpm", "speed"})
	el := validElement("gauge_1")
	el.Sensor = "nope"
	result := v.Validate(validDocument(el))

	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(result.Warnings))
	}
	msg := result.Warnings[0].Message
	if !strings.Contains(msg, "rpm") || !strings.Contains(msg, "speed") {
		t.Errorf("warning should list known sensors, got %q", msg)
	}
}

// Validation is pure: repeat runs over an unchanged document yield
// identical results, and the document itself is never mutated.
func TestValidate_Deterministic(t *testing.T) {
	el := validElement("gauge_1")
	el.Sensor = "mystery"
	el.Visual.Opacity = 2
	el.Visual.X = -5
	doc := validDocument(el, validElement("gauge_1"))

	v := Default()
	before := doc.Clone()
	first := v.Validate(doc)
	second := v.Validate(doc)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeat validation differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	if !reflect.DeepEqual(doc, before) {
		t.Error("Validate mutated the document")
	}
}

// All applicable issues are accumulated; validation never stops at the
// first problem.
func TestValidate_AccumulatesAllIssues(t *testing.T) {
	bad := validElement("")
	bad.Type = "hologram"
	bad.Visual.Width = -1
	bad.Visual.Opacity = 3
	bad.Visual.FontWeight = "600"
	result := Default().Validate(validDocument(bad, validElement("gauge_2")))

	if len(result.Errors) < 4 {
		t.Errorf("expected at least 4 accumulated errors, got %d: %v",
			len(result.Errors), errorPaths(result))
	}
}
