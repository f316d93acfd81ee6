package normalize

import (
	"math"
	"strconv"
	"strings"
)

// Attributes is a normalized attribute map. Lookups take an ordered alias list,
// newest name first, and fall back to a default.
type Attributes map[string]string

// Has reports whether any alias is present.
func (a Attributes) Has(aliases ...string) bool {
	for _, k := range aliases {
		if _, ok := a[k]; ok {
			return true
		}
	}
	return false
}

// String returns the first present alias.
func (a Attributes) String(aliases []string, def string) string {
	for _, k := range aliases {
		if v, ok := a[k]; ok {
			return v
		}
	}
	return def
}

// Float returns the first alias holding a finite number.
func (a Attributes) Float(aliases []string, def float64) float64 {
	for _, k := range aliases {
		v, ok := a[k]
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f
		}
	}
	return def
}

// Int returns the first alias holding an integer. Whole floats such as "3.0" count.
func (a Attributes) Int(aliases []string, def int) int {
	for _, k := range aliases {
		v, ok := a[k]
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return clampInt(f)
		}
	}
	return def
}

// Bool returns the first alias holding 1/0, true/false, yes/no or y/n.
func (a Attributes) Bool(aliases []string, def bool) bool {
	for _, k := range aliases {
		v, ok := a[k]
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return def
}

// clampInt truncates f, saturating at the int range.
func clampInt(f float64) int {
	switch {
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	}
	return int(f)
}
