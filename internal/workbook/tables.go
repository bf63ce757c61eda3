package workbook

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/types"

	"github.com/xuri/excelize/v2"
)

// TableRef locates a table. Rows and columns are 1-based and inclusive;
// FirstRow is the header row.
type TableRef struct {
	Sheet    string
	Name     string
	FirstCol int
	FirstRow int
	LastCol  int
	LastRow  int

	table excelize.Table
}

// Range returns the table's reference, e.g. "A1:G5".
func (t TableRef) Range() string {
	return rangeRef(t.FirstCol, t.FirstRow, t.LastCol, t.LastRow)
}

func (t TableRef) overlaps(o TableRef) bool {
	return t.FirstCol <= o.LastCol && o.FirstCol <= t.LastCol &&
		t.FirstRow <= o.LastRow && o.FirstRow <= t.LastRow
}

// HeaderFormat is the presentation applied to a newly created header row.
type HeaderFormat struct {
	Bold        bool
	FillColor   string
	ColumnWidth float64
	TableStyle  string
}

func rangeRef(c1, r1, c2, r2 int) string {
	from, _ := excelize.CoordinatesToCellName(c1, r1)
	to, _ := excelize.CoordinatesToCellName(c2, r2)
	return from + ":" + to
}

func newTableRef(sheet string, t excelize.Table) (TableRef, error) {
	from, to, ok := strings.Cut(t.Range, ":")
	if !ok {
		to = from
	}
	c1, r1, err := excelize.CellNameToCoordinates(from)
	if err != nil {
		return TableRef{}, fmt.Errorf("table %q range %q: %w", t.Name, t.Range, err)
	}
	c2, r2, err := excelize.CellNameToCoordinates(to)
	if err != nil {
		return TableRef{}, fmt.Errorf("table %q range %q: %w", t.Name, t.Range, err)
	}
	return TableRef{
		Sheet:    sheet,
		Name:     t.Name,
		FirstCol: min(c1, c2),
		FirstRow: min(r1, r2),
		LastCol:  max(c1, c2),
		LastRow:  max(r1, r2),
		table:    t,
	}, nil
}

// tables lists every table in the workbook. Chart and dialog sheets cannot
// hold tables and are skipped; any other read error is returned.
func (tx *Tx) tables() ([]TableRef, error) {
	var refs []TableRef
	for _, sheet := range tx.file.GetSheetList() {
		tables, err := tx.file.GetTables(sheet)
		if err != nil && notWorksheet(sheet, err) {
			slog.Debug("skipping sheet that is not a worksheet", "sheet", sheet)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read tables on %q: %w", sheet, err)
		}
		for _, t := range tables {
			ref, err := newTableRef(sheet, t)
			if err != nil {
				return nil, err
			}
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

// notWorksheet matches the error excelize returns for chart and dialog
// sheets. The error is unexported, so only its message can be compared.
func notWorksheet(sheet string, err error) bool {
	return err.Error() == fmt.Sprintf("sheet %s is not a worksheet", sheet)
}

// LookupTable finds a table anywhere in the workbook by name, ignoring case.
// A missing table is reported through the boolean, not as an error.
func (tx *Tx) LookupTable(name string) (TableRef, bool, error) {
	refs, err := tx.tables()
	if err != nil {
		return TableRef{}, false, err
	}
	for _, ref := range refs {
		if strings.EqualFold(ref.Name, name) {
			return ref, true, nil
		}
	}
	return TableRef{}, false, nil
}

func (tx *Tx) table(name string) (TableRef, error) {
	ref, found, err := tx.LookupTable(name)
	if err != nil {
		return TableRef{}, err
	}
	if !found {
		return TableRef{}, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return ref, nil
}

// CreateTable writes headers at A1 of sheet, formats them, and registers a
// table named name over the header row.
func (tx *Tx) CreateTable(sheet, name string, headers []string, format HeaderFormat) (TableRef, error) {
	if len(headers) == 0 {
		return TableRef{}, fmt.Errorf("create table %q: no headers", name)
	}

	// excelize extends a header-only table by one placeholder body row.
	want := TableRef{Sheet: sheet, Name: name, FirstCol: 1, FirstRow: 1, LastCol: len(headers), LastRow: 2}
	refs, err := tx.tables()
	if err != nil {
		return TableRef{}, err
	}
	for _, ref := range refs {
		if ref.Sheet == sheet && ref.overlaps(want) {
			return TableRef{}, fmt.Errorf("%w: table %q would overlap %q at %s!%s",
				ErrSchemaCollision, name, ref.Name, sheet, ref.Range())
		}
	}

	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := tx.file.SetSheetRow(sheet, "A1", &row); err != nil {
		return TableRef{}, fmt.Errorf("write headers for %q: %w", name, err)
	}
	tx.dirty = true

	if err := tx.formatHeader(sheet, len(headers), format); err != nil {
		return TableRef{}, fmt.Errorf("format headers for %q: %w", name, err)
	}

	err = tx.file.AddTable(sheet, &excelize.Table{
		Range:     rangeRef(1, 1, len(headers), 1),
		Name:      name,
		StyleName: format.TableStyle,
	})
	if errors.Is(err, excelize.ErrExistsTableName) {
		return TableRef{}, fmt.Errorf("%w: table name %q already in use", ErrSchemaCollision, name)
	}
	if err != nil {
		return TableRef{}, fmt.Errorf("add table %q: %w", name, err)
	}

	return tx.table(name)
}

func (tx *Tx) formatHeader(sheet string, cols int, format HeaderFormat) error {
	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return err
	}

	if format.Bold || format.FillColor != "" {
		style := &excelize.Style{}
		if format.Bold {
			style.Font = &excelize.Font{Bold: true}
		}
		if format.FillColor != "" {
			style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{format.FillColor}}
		}
		id, err := tx.file.NewStyle(style)
		if err != nil {
			return err
		}
		if err := tx.file.SetCellStyle(sheet, "A1", last, id); err != nil {
			return err
		}
	}

	if format.ColumnWidth > 0 {
		lastCol, err := excelize.ColumnNumberToName(cols)
		if err != nil {
			return err
		}
		if err := tx.file.SetColWidth(sheet, "A", lastCol, format.ColumnWidth); err != nil {
			return err
		}
	}
	return nil
}

// TableHeaders returns the header row of a table as stored in the sheet.
func (tx *Tx) TableHeaders(name string) ([]string, error) {
	ref, err := tx.table(name)
	if err != nil {
		return nil, err
	}
	return tx.headers(ref)
}

func (tx *Tx) headers(ref TableRef) ([]string, error) {
	headers := make([]string, 0, ref.LastCol-ref.FirstCol+1)
	for col := ref.FirstCol; col <= ref.LastCol; col++ {
		cell, err := excelize.CoordinatesToCellName(col, ref.FirstRow)
		if err != nil {
			return nil, err
		}
		h, err := tx.file.GetCellValue(ref.Sheet, cell)
		if err != nil {
			return nil, fmt.Errorf("read header %s!%s: %w", ref.Sheet, cell, err)
		}
		headers = append(headers, h)
	}
	return headers, nil
}

// ReadTable returns a table's headers and its data body in storage order.
func (tx *Tx) ReadTable(name string) ([]string, []types.Row, error) {
	ref, err := tx.table(name)
	if err != nil {
		return nil, nil, err
	}

	headers, err := tx.headers(ref)
	if err != nil {
		return nil, nil, err
	}

	n, err := tx.bodyLen(ref)
	if err != nil {
		return nil, nil, err
	}

	body := make([]types.Row, 0, n)
	for i := 0; i < n; i++ {
		row, err := tx.readRow(ref, ref.FirstRow+1+i)
		if err != nil {
			return nil, nil, err
		}
		body = append(body, row)
	}
	return headers, body, nil
}

// AppendRow adds row below the last data row and grows the table over it.
func (tx *Tx) AppendRow(name string, row types.Row) error {
	ref, err := tx.table(name)
	if err != nil {
		return err
	}

	n, err := tx.bodyLen(ref)
	if err != nil {
		return err
	}

	target := ref.FirstRow + 1 + n
	if err := tx.writeRow(ref, target, row); err != nil {
		return err
	}
	if target > ref.LastRow {
		if err := tx.resize(ref, target); err != nil {
			return err
		}
	}
	return nil
}

// WriteRow overwrites the data row at position.
func (tx *Tx) WriteRow(name string, position int, row types.Row) error {
	ref, err := tx.table(name)
	if err != nil {
		return err
	}
	if err := tx.checkPosition(ref, position); err != nil {
		return err
	}
	return tx.writeRow(ref, ref.FirstRow+1+position, row)
}

// DeleteRow removes the data row at position; rows below move up by one.
// The last remaining row is blanked instead, since a table keeps at least
// one body row.
func (tx *Tx) DeleteRow(name string, position int) error {
	ref, err := tx.table(name)
	if err != nil {
		return err
	}
	if err := tx.checkPosition(ref, position); err != nil {
		return err
	}

	if ref.LastRow-ref.FirstRow == 1 {
		return tx.writeRow(ref, ref.FirstRow+1, nil)
	}

	if err := tx.file.RemoveRow(ref.Sheet, ref.FirstRow+1+position); err != nil {
		return fmt.Errorf("remove row %d of %q: %w", position, name, err)
	}
	tx.dirty = true
	return nil
}

func (tx *Tx) checkPosition(ref TableRef, position int) error {
	n, err := tx.bodyLen(ref)
	if err != nil {
		return err
	}
	if position < 0 || position >= n {
		return fmt.Errorf("%w: %d not in [0,%d) for %s", ErrPositionOutOfRange, position, n, ref.Name)
	}
	return nil
}

// bodyLen counts data rows. A body made of a single blank row is the
// placeholder of an empty table and counts as zero.
func (tx *Tx) bodyLen(ref TableRef) (int, error) {
	n := ref.LastRow - ref.FirstRow
	if n != 1 {
		return max(n, 0), nil
	}

	row, err := tx.readRow(ref, ref.FirstRow+1)
	if err != nil {
		return 0, err
	}
	for _, v := range row {
		if v != nil {
			return 1, nil
		}
	}
	return 0, nil
}

func (tx *Tx) readRow(ref TableRef, rowNum int) (types.Row, error) {
	row := make(types.Row, 0, ref.LastCol-ref.FirstCol+1)
	for col := ref.FirstCol; col <= ref.LastCol; col++ {
		cell, err := excelize.CoordinatesToCellName(col, rowNum)
		if err != nil {
			return nil, err
		}
		v, err := tx.readCell(ref.Sheet, cell)
		if err != nil {
			return nil, err
		}
		row = append(row, v)
	}
	return row, nil
}

// readCell returns nil for an empty cell, float64 for a numeric cell, and
// the text otherwise.
func (tx *Tx) readCell(sheet, cell string) (types.Value, error) {
	raw, err := tx.file.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read %s!%s: %w", sheet, cell, err)
	}
	if raw == "" {
		return nil, nil
	}

	typ, err := tx.file.GetCellType(sheet, cell)
	if err != nil {
		return nil, fmt.Errorf("read %s!%s: %w", sheet, cell, err)
	}
	if typ == excelize.CellTypeUnset || typ == excelize.CellTypeNumber {
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n, nil
		}
	}
	return raw, nil
}

// writeRow writes row across the table's columns. Missing trailing values
// clear their cells and extra values are dropped.
func (tx *Tx) writeRow(ref TableRef, rowNum int, row types.Row) error {
	values := make([]any, ref.LastCol-ref.FirstCol+1)
	copy(values, row)

	start, err := excelize.CoordinatesToCellName(ref.FirstCol, rowNum)
	if err != nil {
		return err
	}
	if err := tx.file.SetSheetRow(ref.Sheet, start, &values); err != nil {
		return fmt.Errorf("write %s!%s: %w", ref.Sheet, start, err)
	}
	tx.dirty = true
	return nil
}

// resize re-registers the table with the same options over a taller range.
func (tx *Tx) resize(ref TableRef, lastRow int) error {
	t := ref.table
	t.Range = rangeRef(ref.FirstCol, ref.FirstRow, ref.LastCol, lastRow)

	if err := tx.file.DeleteTable(ref.Name); err != nil {
		return fmt.Errorf("resize table %q: %w", ref.Name, err)
	}
	if err := tx.file.AddTable(ref.Sheet, &t); err != nil {
		return fmt.Errorf("resize table %q: %w", ref.Name, err)
	}
	tx.dirty = true
	return nil
}
