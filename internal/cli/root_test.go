package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, workbook string, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand(BuildInfo{Version: "test", Commit: "abc123", Date: "today"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--workbook", workbook, "--log-level", "error"}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func listJSON(t *testing.T, workbook, entity string) []jsonRecord {
	t.Helper()

	out, err := run(t, workbook, "list", entity, "--json")
	require.NoError(t, err)

	var records []jsonRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	return records
}

func TestSchemaCommand(t *testing.T) {
	wb := filepath.Join(t.TempDir(), "rental.xlsx")

	out, err := run(t, wb, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema ready")
	assert.FileExists(t, wb)

	assert.Empty(t, listJSON(t, wb, "vehicles"))
}

func TestSeedAndList(t *testing.T) {
	wb := filepath.Join(t.TempDir(), "rental.xlsx")

	_, err := run(t, wb, "seed")
	require.NoError(t, err)

	out, err := run(t, wb, "list", "vehicles")
	require.NoError(t, err)

	last := -1
	for _, plate := range []string{"NAB-1234", "XYZ-5678", "AAA-1111", "BBB-2222"} {
		i := strings.Index(out, plate)
		require.Greater(t, i, last, plate)
		last = i
	}
	assert.Contains(t, out, "Vios 1.3 E")

	header := strings.Index(out, "Transmission")
	require.GreaterOrEqual(t, header, 0)
	assert.Less(t, header, strings.Index(out, "NAB-1234"))
}

func TestAddUpdateDelete(t *testing.T) {
	wb := filepath.Join(t.TempDir(), "rental.xlsx")

	_, err := run(t, wb, "add", "vehicles", "plate=ZZZ-0001", "Make=Ford", "year=2022")
	require.NoError(t, err)

	records := listJSON(t, wb, "vehicles")
	require.Len(t, records, 1)
	assert.Equal(t, 0, records[0].Position)
	assert.Equal(t, "ZZZ-0001", records[0].Fields["plate"])
	assert.Equal(t, "Ford", records[0].Fields["make"])
	assert.Equal(t, 2022.0, records[0].Fields["year"])
	assert.Equal(t, 0.0, records[0].Fields["rate"])
	assert.Equal(t, "Available", records[0].Fields["status"])

	_, err = run(t, wb, "update", "vehicles", "0", "plate=ZZZ-0001", "status=Rented")
	require.NoError(t, err)

	records = listJSON(t, wb, "vehicles")
	require.Len(t, records, 1)
	assert.Equal(t, "Rented", records[0].Fields["status"])
	assert.Nil(t, records[0].Fields["make"])

	_, err = run(t, wb, "delete", "vehicles", "0")
	require.NoError(t, err)
	assert.Empty(t, listJSON(t, wb, "vehicles"))
}

func TestCommandErrors(t *testing.T) {
	wb := filepath.Join(t.TempDir(), "rental.xlsx")

	_, err := run(t, wb, "list", "invoices")
	assert.ErrorIs(t, err, repository.ErrUnknownEntity)

	_, err = run(t, wb, "list")
	assert.Error(t, err)

	_, err = run(t, wb, "add", "vehicles", "plate")
	assert.ErrorContains(t, err, "want key=value")

	_, err = run(t, wb, "delete", "vehicles", "first")
	assert.ErrorContains(t, err, "invalid position")

	_, err = run(t, wb, "delete", "vehicles", "0")
	assert.ErrorContains(t, err, "position out of range")
}

func TestInvalidWorkbookPath(t *testing.T) {
	_, err := run(t, filepath.Join(t.TempDir(), "rental.csv"), "schema")
	assert.ErrorContains(t, err, "unsupported file type")
}

func TestExportImport(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "source.xlsx")
	dst := filepath.Join(dir, "copy.xlsx")
	csvPath := filepath.Join(dir, "customers.csv")

	_, err := run(t, src, "seed")
	require.NoError(t, err)

	_, err = run(t, src, "export", "customers", "-o", csvPath)
	require.NoError(t, err)

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Name,Phone,Email,ID Type,ID No\n"))
	assert.Contains(t, string(data), "Jane Doe,0917-000-1111,jane@example.com,DL,D-12345")

	out, err := run(t, dst, "import", "customers", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 3 row(s) into tblCustomers")

	assert.Equal(t, listJSON(t, src, "customers"), listJSON(t, dst, "customers"))
}

func TestParseAssignments(t *testing.T) {
	input, err := parseAssignments([]string{"plate=NAB-1234", "Model=Vios 1.3 E", "note=a=b", "make="})
	require.NoError(t, err)
	assert.Equal(t, "NAB-1234", input["plate"])
	assert.Equal(t, "Vios 1.3 E", input["Model"])
	assert.Equal(t, "a=b", input["note"])
	assert.Equal(t, "", input["make"])

	_, err = parseAssignments([]string{"=x"})
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	cmd := NewRootCommand(BuildInfo{Version: "1.2.3", Commit: "abc123", Date: "today"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "carrental 1.2.3")
	assert.Contains(t, out.String(), "commit: abc123")
}
