package types

// Value is a single cell value: a string, a float64, or nil for an empty cell.
type Value = any

// Row is the on-sheet representation of a record, one value per header.
type Row []Value

// Record is a keyed view of a row. Fields are keyed by normalized header.
//
// Position is the 0-based offset of the row inside the table's data body. It
// is only valid until the next insert or delete on the same table.
type Record struct {
	Position int
	Fields   map[string]Value
}

// Get returns the value stored under key, or nil.
func (r Record) Get(key string) Value {
	return r.Fields[key]
}

// FieldKind controls how a field is coerced on write.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldNumber
)

// FieldSpec describes one column of a table.
type FieldSpec struct {
	Header  string
	Kind    FieldKind
	Default Value
	// Aliases are extra input keys accepted for this field on write.
	Aliases []string
}

// TableSchema binds a table name and its ordered fields to a sheet.
type TableSchema struct {
	Sheet  string
	Table  string
	Fields []FieldSpec
}

// Headers returns the header row in column order.
func (s TableSchema) Headers() []string {
	headers := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		headers[i] = f.Header
	}
	return headers
}

// ImportResult summarizes a CSV import into one table.
type ImportResult struct {
	InputFile     string
	Table         string
	ColumnsFound  []string
	RowsProcessed int
}

// FileData holds the header row and data rows of a delimited file.
type FileData struct {
	Headers []string
	Rows    [][]string
}
