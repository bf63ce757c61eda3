package converter

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/schema"
	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	headers := []string{"Plate", "Rental ID", "Year"}

	rec := Decode(headers, types.Row{"NAB-1234", "RENT-1", 2019.0}, 3)

	assert.Equal(t, 3, rec.Position)
	assert.Equal(t, map[string]types.Value{
		"plate":    "NAB-1234",
		"rentalid": "RENT-1",
		"year":     2019.0,
	}, rec.Fields)
}

func TestDecode_ShortAndLongRows(t *testing.T) {
	headers := []string{"Plate", "Make"}

	short := Decode(headers, types.Row{"NAB-1234"}, 0)
	require.Contains(t, short.Fields, "make")
	assert.Nil(t, short.Get("make"))

	long := Decode(headers, types.Row{"NAB-1234", "Toyota", "extra"}, 0)
	assert.Len(t, long.Fields, 2)
}

func TestEncode(t *testing.T) {
	c := schema.NewCatalog()

	tests := []struct {
		name     string
		fields   []types.FieldSpec
		input    map[string]types.Value
		expected types.Row
	}{
		{
			name:     "Numeric string coerced, missing fields defaulted",
			fields:   c.Vehicles.Fields,
			input:    map[string]types.Value{"plate": "ZZZ-0001", "year": "2022"},
			expected: types.Row{"ZZZ-0001", "", "", 2022.0, "", 0.0, "Available"},
		},
		{
			name:     "Header spelling accepted",
			fields:   c.Vehicles.Fields,
			input:    map[string]types.Value{"Plate": "ZZZ-0002", "Rate": 1500},
			expected: types.Row{"ZZZ-0002", "", "", 0.0, "", 1500.0, "Available"},
		},
		{
			name:     "Unparseable number becomes zero",
			fields:   c.Vehicles.Fields,
			input:    map[string]types.Value{"year": "twenty", "rate": "  "},
			expected: types.Row{"", "", "", 0.0, "", 0.0, "Available"},
		},
		{
			name:   "Aliases fill rental fields",
			fields: c.Rentals.Fields,
			input: map[string]types.Value{
				"rentalId":     "RENT-9",
				"customerName": "Jane Doe",
				"vehicle":      "NAB-1234",
				"dailyRate":    2000.0,
			},
			expected: types.Row{"RENT-9", "Jane Doe", "NAB-1234", "", "", "", 2000.0, 0.0, "Ongoing"},
		},
		{
			name:   "Exact key wins over alias",
			fields: c.Rentals.Fields,
			input: map[string]types.Value{
				"customerid": "C-1",
				"customer":   "Jane Doe",
			},
			expected: types.Row{"", "C-1", "", "", "", "", 0.0, 0.0, "Ongoing"},
		},
		{
			name:   "Blank exact key falls through to alias",
			fields: c.Rentals.Fields,
			input: map[string]types.Value{
				"customerid": "",
				"customer":   "Jane Doe",
			},
			expected: types.Row{"", "Jane Doe", "", "", "", "", 0.0, 0.0, "Ongoing"},
		},
		{
			name:     "Description alias",
			fields:   c.Maintenance.Fields,
			input:    map[string]types.Value{"desc": "oil", "cost": "1800.50"},
			expected: types.Row{"", "", "", 0.0, 1800.5, "oil"},
		},
		{
			name:     "Explicit status kept",
			fields:   c.Vehicles.Fields,
			input:    map[string]types.Value{"status": "Rented"},
			expected: types.Row{"", "", "", 0.0, "", 0.0, "Rented"},
		},
		{
			name:     "Numbers in text fields rendered as text",
			fields:   c.Customers.Fields,
			input:    map[string]types.Value{"phone": 9170001111, "idNo": 12.5},
			expected: types.Row{"", "9170001111", "", "", "12.5"},
		},
		{
			name:     "Unknown keys ignored",
			fields:   c.Customers.Fields,
			input:    map[string]types.Value{"name": "Jane", "nickname": "J"},
			expected: types.Row{"Jane", "", "", "", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Encode(tt.fields, tt.input))
		})
	}
}

func TestEncode_EmptyInput(t *testing.T) {
	c := schema.NewCatalog()

	row := Encode(c.Rentals.Fields, nil)
	require.Len(t, row, len(c.Rentals.Fields))
	assert.Equal(t, types.Row{"", "", "", "", "", "", 0.0, 0.0, "Ongoing"}, row)
}

func TestEncodeRecord_RoundTrip(t *testing.T) {
	c := schema.NewCatalog()

	rows := map[string]struct {
		schema types.TableSchema
		row    types.Row
	}{
		"vehicle":     {c.Vehicles, types.Row{"NAB-1234", "Toyota", "Vios 1.3 E", 2019.0, "AT", 2000.0, "Available"}},
		"customer":    {c.Customers, types.Row{"Jane Doe", "0917-000-1111", "jane@example.com", "DL", "D-12345"}},
		"rental":      {c.Rentals, types.Row{"RENT-2025-001", "Jane Doe", "NAB-1234", "2025-06-13", "2025-06-19", "", 2000.0, 12000.0, "Ongoing"}},
		"maintenance": {c.Maintenance, types.Row{"2025-06-01", "AAA-1111", "Oil Change", 42000.0, 1800.0, "5W-30 full synthetic"}},
	}

	for name, tt := range rows {
		t.Run(name, func(t *testing.T) {
			rec := Decode(tt.schema.Headers(), tt.row, 0)
			assert.Equal(t, tt.row, EncodeRecord(tt.schema.Fields, rec))
		})
	}
}

func TestToNumber(t *testing.T) {
	seven := 7

	tests := []struct {
		name     string
		input    types.Value
		expected float64
		ok       bool
	}{
		{"Float", 2.5, 2.5, true},
		{"Int", 7, 7, true},
		{"Int64", int64(-3), -3, true},
		{"Uint8", uint8(9), 9, true},
		{"Float32", float32(0.5), 0.5, true},
		{"True", true, 1, true},
		{"False", false, 0, true},
		{"Numeric string", " 2022 ", 2022, true},
		{"Decimal string", "1800.75", 1800.75, true},
		{"Text", "abc", 0, false},
		{"Empty", "", 0, false},
		{"Nil", nil, 0, false},
		{"NaN", math.NaN(), 0, false},
		{"NaN string", "NaN", 0, false},
		{"Inf string", "Inf", 0, false},
		{"Infinity", math.Inf(1), 0, false},
		{"Int pointer", &seven, 7, true},
		{"JSON number", json.Number("12.5"), 12.5, true},
		{"Slice", []string{"1"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToNumber(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestToText(t *testing.T) {
	tests := []struct {
		name     string
		input    types.Value
		expected string
	}{
		{"Nil", nil, ""},
		{"String", "Toyota", "Toyota"},
		{"Whole float", 2019.0, "2019"},
		{"Fraction", 0.25, "0.25"},
		{"Int", 42, "42"},
		{"Bool", true, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToText(tt.input))
		})
	}
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(nil))
	assert.True(t, IsBlank(""))
	assert.False(t, IsBlank(" "))
	assert.False(t, IsBlank(0.0))
	assert.False(t, IsBlank("x"))
}
