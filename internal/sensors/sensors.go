// Package sensors provides the known sensor table and a lifecycle-scoped
// simulator that periodically publishes value snapshots to subscribers.
// Real hardware reading is out of scope; the simulator stands in as the
// pluggable data source.
package sensors

import "sort"

// Definition describes one bindable data source.
type Definition struct {
	ID   string  `json:"id"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Unit string  `json:"unit"`
}

// Reading is one simulated sample for a sensor.
type Reading struct {
	Value float64 `json:"value"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Unit  string  `json:"unit"`
}

// Snapshot maps sensor id to its latest reading.
type Snapshot map[string]Reading

// knownSensors is the sensor table the editor ships with. The external
// renderer may define more; unknown references are a validation warning,
// never an error.
var knownSensors = []Definition{
	{ID: "rpm", Min: 0, Max: 8000, Unit: "rpm"},
	{ID: "speed", Min: 0, Max: 240, Unit: "km/h"},
	{ID: "fuel_level", Min: 0, Max: 100, Unit: "%"},
	{ID: "coolant_temp", Min: -20, Max: 140, Unit: "degC"},
	{ID: "ambient_temp", Min: -40, Max: 60, Unit: "degC"},
	{ID: "oil_pressure", Min: 0, Max: 10, Unit: "bar"},
	{ID: "battery_voltage", Min: 0, Max: 16, Unit: "V"},
	{ID: "heading", Min: 0, Max: 360, Unit: "deg"},
	{ID: "boost_pressure", Min: -1, Max: 3, Unit: "bar"},
}

// KnownSensors returns the full sensor table.
func KnownSensors() []Definition {
	out := make([]Definition, len(knownSensors))
	copy(out, knownSensors)
	return out
}

// KnownIDs returns the sorted set of known sensor ids.
func KnownIDs() []string {
	ids := make([]string, 0, len(knownSensors))
	for _, def := range knownSensors {
		ids = append(ids, def.ID)
	}
	sort.Strings(ids)
	return ids
}

// Lookup returns the definition for a sensor id.
func Lookup(id string) (Definition, bool) {
	for _, def := range knownSensors {
		if def.ID == id {
			return def, true
		}
	}
	return Definition{}, false
}
