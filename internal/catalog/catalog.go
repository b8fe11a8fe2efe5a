// Package catalog holds the element-kind table: default sizes, suggested
// sensors and required visual fields per kind. Adding a kind is a data
// change here, not a core-logic change.
package catalog

import (
	"fmt"
	"io"
	"os"

	"github.com/gauge-designer/backend/internal/models"
	"gopkg.in/yaml.v3"
)

// Size is a default element size in canvas units.
type Size struct {
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// Entry describes one element kind.
type Entry struct {
	Kind                 models.ElementType `yaml:"kind" json:"kind"`
	DefaultSize          Size               `yaml:"defaultSize" json:"defaultSize"`
	SuggestedSensors     []string           `yaml:"suggestedSensors" json:"suggestedSensors"`
	RequiredVisualFields []string           `yaml:"requiredVisualFields" json:"requiredVisualFields"`
}

// Catalog is a lookup of element kinds. The zero value is unusable; use
// Default or Load.
type Catalog struct {
	entries map[models.ElementType]Entry
}

// defaultEntries is the built-in kind table. A YAML overlay file may
// override sizes and suggested sensors at startup.
var defaultEntries = []Entry{
	{
		Kind:                 models.ElementGauge,
		DefaultSize:          Size{Width: 200, Height: 200},
		SuggestedSensors:     []string{"rpm", "speed", "oil_pressure"},
		RequiredVisualFields: []string{"needleColor", "foregroundColor"},
	},
	{
		Kind:                 models.ElementBar,
		DefaultSize:          Size{Width: 240, Height: 60},
		SuggestedSensors:     []string{"fuel_level", "battery_voltage"},
		RequiredVisualFields: []string{"foregroundColor", "backgroundColor"},
	},
	{
		Kind:                 models.ElementDigital,
		DefaultSize:          Size{Width: 160, Height: 80},
		SuggestedSensors:     []string{"speed", "coolant_temp"},
		RequiredVisualFields: []string{"foregroundColor", "fontFamily"},
	},
	{
		Kind:                 models.ElementThermometer,
		DefaultSize:          Size{Width: 80, Height: 240},
		SuggestedSensors:     []string{"coolant_temp", "ambient_temp"},
		RequiredVisualFields: []string{"foregroundColor"},
	},
	{
		Kind:                 models.ElementCompass,
		DefaultSize:          Size{Width: 200, Height: 200},
		SuggestedSensors:     []string{"heading"},
		RequiredVisualFields: []string{"needleColor"},
	},
	{
		Kind:                 models.ElementIndicator,
		DefaultSize:          Size{Width: 60, Height: 60},
		SuggestedSensors:     []string{"battery_voltage", "oil_pressure"},
		RequiredVisualFields: []string{"foregroundColor"},
	},
	{
		Kind:                 models.ElementLabel,
		DefaultSize:          Size{Width: 140, Height: 40},
		SuggestedSensors:     []string{},
		RequiredVisualFields: []string{"fontFamily", "foregroundColor"},
	},
	{
		Kind:                 models.ElementSparkline,
		DefaultSize:          Size{Width: 280, Height: 100},
		SuggestedSensors:     []string{"rpm", "speed", "fuel_level"},
		RequiredVisualFields: []string{"foregroundColor"},
	},
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c := &Catalog{entries: make(map[models.ElementType]Entry, len(defaultEntries))}
	for _, e := range defaultEntries {
		c.entries[e.Kind] = e
	}
	return c
}

// overlayFile is the YAML overlay format: a list of partial entries keyed
// by kind.
type overlayFile struct {
	Elements []overlayEntry `yaml:"elements"`
}

type overlayEntry struct {
	Kind             models.ElementType `yaml:"kind"`
	DefaultSize      *Size              `yaml:"defaultSize"`
	SuggestedSensors []string           `yaml:"suggestedSensors"`
}

// Load returns the built-in catalog with overrides applied from a YAML
// overlay file. A missing file is not an error; the defaults are used.
func Load(path string) (*Catalog, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening catalog overlay: %w", err)
	}
	defer file.Close()

	if err := c.applyOverlay(file); err != nil {
		return nil, fmt.Errorf("parsing catalog overlay %s: %w", path, err)
	}
	return c, nil
}

func (c *Catalog) applyOverlay(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	var overlay overlayFile
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return err
	}

	for _, o := range overlay.Elements {
		entry, ok := c.entries[o.Kind]
		if !ok {
			// Unknown kinds in the overlay are skipped; the kind set is
			// closed at the type level.
			continue
		}
		if o.DefaultSize != nil && o.DefaultSize.Width > 0 && o.DefaultSize.Height > 0 {
			entry.DefaultSize = *o.DefaultSize
		}
		if len(o.SuggestedSensors) > 0 {
			entry.SuggestedSensors = o.SuggestedSensors
		}
		c.entries[o.Kind] = entry
	}
	return nil
}

// Lookup returns the entry for a kind. Unknown kinds get a generic
// fallback entry so callers never need a nil check.
func (c *Catalog) Lookup(kind models.ElementType) Entry {
	if e, ok := c.entries[kind]; ok {
		return e
	}
	return Entry{
		Kind:                 kind,
		DefaultSize:          Size{Width: 120, Height: 120},
		SuggestedSensors:     []string{},
		RequiredVisualFields: []string{},
	}
}

// Entries returns all entries in the declaration order of the kind enum.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, len(c.entries))
	for _, kind := range models.ElementTypes {
		if e, ok := c.entries[kind]; ok {
			out = append(out, e)
		}
	}
	return out
}
