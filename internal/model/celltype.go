package model

import (
	"encoding/json"
	"math"
	"strconv"
)

// CellType is the closed enumeration of cell value kinds a column can hold.
type CellType int

const (
	// Text columns hold string values.
	Text CellType = iota
	// Number columns hold finite float64 values.
	Number
)

// String renders the CellType the way it appears on the wire (spec.md §6).
func (t CellType) String() string {
	switch t {
	case Text:
		return "text"
	case Number:
		return "number"
	default:
		return "unknown"
	}
}

// Coerce converts value into this CellType's canonical representation. The
// second return value is false ("undefined") when value has no valid
// representation in this type.
//
// Number parses the value as a finite float64; non-finite results (NaN,
// +/-Inf, or values that don't parse) are rejected.
//
// Text returns string values unchanged and stringifies everything else via
// JSON encoding (a numeric 2 becomes the string "2"). Returning strings
// unchanged is required for invariant 2 (spec.md §3: coerce(v) == v for
// every stored cell value) to hold on Text columns; re-quoting them via
// json.Marshal would violate it the moment any cell held a string.
func (t CellType) Coerce(value any) (any, bool) {
	if value == nil {
		return nil, false
	}
	switch t {
	case Number:
		return coerceNumber(value)
	case Text:
		return coerceText(value)
	default:
		return nil, false
	}
}

func coerceNumber(value any) (any, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false
		}
		return f, true
	default:
		return nil, false
	}
}

func coerceText(value any) (any, bool) {
	if s, ok := value.(string); ok {
		return s, true
	}
	b, err := json.Marshal(value)
	if err != nil {
		return nil, false
	}
	return string(b), true
}
