package model

import (
	"fmt"
	"sort"
	"strings"
)

// FieldType names a measured quantity carried by a sensor channel.
type FieldType string

const (
	FieldCO2         FieldType = "co2"
	FieldTemperature FieldType = "temperature"
	FieldHumidity    FieldType = "humidity"
	FieldPressure    FieldType = "pressure"
)

// DefaultFieldIndex is the channel field layout used by the deployed sensor boards.
var DefaultFieldIndex = map[FieldType]int{
	FieldTemperature: 1,
	FieldCO2:         4,
	FieldHumidity:    6,
	FieldPressure:    7,
}

// FieldUnits is informational and only surfaced by the API.
var FieldUnits = map[FieldType]string{
	FieldTemperature: "°C",
	FieldCO2:         "ppm",
	FieldHumidity:    "%",
	FieldPressure:    "hPa",
}

// ParseFieldType accepts a field name case-insensitively.
func ParseFieldType(s string) (FieldType, error) {
	f := FieldType(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FieldCO2, FieldTemperature, FieldHumidity, FieldPressure:
		return f, nil
	}
	return "", fmt.Errorf("unknown field type %q (allowed: %s)", s, strings.Join(FieldTypeNames(), ", "))
}

// FieldTypeNames returns the known field names, sorted.
func FieldTypeNames() []string {
	out := make([]string, 0, len(DefaultFieldIndex))
	for f := range DefaultFieldIndex {
		out = append(out, string(f))
	}
	sort.Strings(out)
	return out
}
