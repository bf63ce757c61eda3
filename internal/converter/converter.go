// Package converter maps between positional rows and keyed records.
//
// Writes are permissive: a missing field or a number that does not parse is
// replaced with the field's default rather than reported.
package converter

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/schema"
	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/types"

	"github.com/spf13/cast"
)

// Decode zips headers with row values into a record at the given position.
// Headers without a matching value decode to nil.
func Decode(headers []string, row types.Row, position int) types.Record {
	fields := make(map[string]types.Value, len(headers))
	for i, h := range headers {
		var v types.Value
		if i < len(row) {
			v = row[i]
		}
		fields[schema.Normalize(h)] = v
	}
	return types.Record{Position: position, Fields: fields}
}

// Encode builds a row in field order from a loosely keyed input map.
//
// For each field the first non-blank value wins, checked in this order: the
// exact field key, any input key that normalizes to the field key, then the
// field's aliases.
func Encode(fields []types.FieldSpec, input map[string]types.Value) types.Row {
	index := indexInput(input)

	row := make(types.Row, len(fields))
	for i, f := range fields {
		row[i] = coerce(f, lookup(f, input, index))
	}
	return row
}

// EncodeRecord encodes a decoded record back into a row.
func EncodeRecord(fields []types.FieldSpec, rec types.Record) types.Row {
	return Encode(fields, rec.Fields)
}

// indexInput keys every non-blank input value by its normalized key. Keys are
// visited in sorted order so that colliding spellings resolve the same way on
// every call.
func indexInput(input map[string]types.Value) map[string]types.Value {
	keys := make([]string, 0, len(input))
	for k := range input {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	index := make(map[string]types.Value, len(keys))
	for _, k := range keys {
		v := input[k]
		if IsBlank(v) {
			continue
		}
		nk := schema.Normalize(k)
		if _, ok := index[nk]; !ok {
			index[nk] = v
		}
	}
	return index
}

func lookup(f types.FieldSpec, input, index map[string]types.Value) types.Value {
	key := schema.Normalize(f.Header)
	if v, ok := input[key]; ok && !IsBlank(v) {
		return v
	}
	if v, ok := index[key]; ok {
		return v
	}
	for _, alias := range f.Aliases {
		if v, ok := index[schema.Normalize(alias)]; ok {
			return v
		}
	}
	return nil
}

func coerce(f types.FieldSpec, v types.Value) types.Value {
	if f.Kind == types.FieldNumber {
		if n, ok := ToNumber(v); ok {
			return n
		}
		if d, ok := ToNumber(f.Default); ok {
			return d
		}
		return float64(0)
	}

	if IsBlank(v) {
		if f.Default == nil {
			return ""
		}
		return ToText(f.Default)
	}
	return ToText(v)
}

// IsBlank reports whether v is nil or the empty string.
func IsBlank(v types.Value) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// ParseNumber parses a trimmed decimal string. NaN and infinities are rejected.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// ToNumber converts numeric types, bools and numeric strings to float64.
// Strings are trimmed first; NaN and infinities are rejected.
func ToNumber(v types.Value) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case string:
		return ParseNumber(x)
	}

	n, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// ToText renders a value the way it would appear in a text cell.
func ToText(v types.Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	}
	if n, ok := ToNumber(v); ok {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
