package converter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/schema"
	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/types"

	"github.com/xuri/excelize/v2"
)

const RowDetectionLimit = 10

// ReadFileData reads the header row and data rows from a CSV or XLSX file
func ReadFileData(filePath string) (*types.FileData, error) {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".csv":
		return readCSVData(filePath)
	case ".xlsx":
		return readXLSXData(filePath)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
}

func readCSVData(filePath string) (*types.FileData, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadCSV(file)
}

// ReadCSV reads delimited data, skipping any title rows above the header.
func ReadCSV(r io.Reader) (*types.FileData, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	return splitHeader(records)
}

func readXLSXData(filePath string) (*types.FileData, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheetName := f.GetSheetName(f.GetActiveSheetIndex())

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}

	return splitHeader(rows)
}

func splitHeader(rows [][]string) (*types.FileData, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	headerRowIdx := findHeaderRow(rows)
	if headerRowIdx == -1 {
		return nil, fmt.Errorf("could not find header row")
	}

	return &types.FileData{
		Headers: rows[headerRowIdx],
		Rows:    rows[headerRowIdx+1:],
	}, nil
}

// Inputs turns each data row into an input map keyed by its column header,
// ready for Encode. Fully blank rows are dropped.
func Inputs(data *types.FileData) []map[string]types.Value {
	var inputs []map[string]types.Value
	for _, row := range data.Rows {
		input := make(map[string]types.Value, len(data.Headers))
		hasData := false
		for i, h := range data.Headers {
			if i >= len(row) || strings.TrimSpace(h) == "" {
				continue
			}
			if row[i] != "" {
				hasData = true
			}
			input[h] = row[i]
		}
		if hasData {
			inputs = append(inputs, input)
		}
	}
	return inputs
}

// WriteCSV writes the header row followed by every record in header order.
func WriteCSV(w io.Writer, headers []string, records []types.Record) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(headers); err != nil {
		return err
	}

	for _, rec := range records {
		line := make([]string, len(headers))
		for i, h := range headers {
			line[i] = ToText(rec.Get(schema.Normalize(h)))
		}
		if err := writer.Write(line); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// findHeaderRow locates the first row that appears to be a header
// by finding the row with the most non-empty text cells
func findHeaderRow(rows [][]string) int {
	maxNonEmpty := 0
	headerIdx := -1

	// Look at first 20 rows max
	searchLimit := len(rows)
	if searchLimit > RowDetectionLimit*2 {
		searchLimit = RowDetectionLimit * 2
	}

	for i := 0; i < searchLimit; i++ {
		nonEmptyCount := 0
		hasText := false

		for _, cell := range rows[i] {
			trimmed := strings.TrimSpace(cell)
			if trimmed != "" {
				nonEmptyCount++
				if containsLetters(trimmed) {
					hasText = true
				}
			}
		}

		// A single-column file still has a one-cell header.
		if nonEmptyCount >= 1 && hasText && nonEmptyCount > maxNonEmpty {
			maxNonEmpty = nonEmptyCount
			headerIdx = i
		}
	}

	return headerIdx
}

// containsLetters checks if a string contains any alphabetic characters
func containsLetters(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}
