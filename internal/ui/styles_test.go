package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTable(t *testing.T) {
	out := RecordTable(
		[]string{"#", "Name", "Phone"},
		[][]string{
			{"0", "Jane Doe", "0917-000-1111"},
			{"1", "Juan Cruz", ""},
		},
	)

	lines := strings.Split(out, "\n")
	require.Greater(t, len(lines), 3)

	header := strings.Index(out, "Phone")
	require.GreaterOrEqual(t, header, 0)
	assert.Less(t, header, strings.Index(out, "Jane Doe"))
	assert.Less(t, strings.Index(out, "Jane Doe"), strings.Index(out, "Juan Cruz"))
	assert.Contains(t, out, "0917-000-1111")
}

func TestRecordTable_HeadersOnly(t *testing.T) {
	out := RecordTable([]string{"#", "Plate"}, nil)
	assert.Contains(t, out, "Plate")
	assert.NotContains(t, out, "NAB-1234")
}
