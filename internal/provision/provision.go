// Package provision makes sure the sheets and tables a schema needs exist.
package provision

import (
	"fmt"
	"log/slog"

	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/types"
	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/workbook"
)

// headerFormat is applied to header rows of newly created tables only.
var headerFormat = workbook.HeaderFormat{
	Bold:        true,
	FillColor:   "#CCEABB",
	ColumnWidth: 16,
	TableStyle:  "TableStyleMedium2",
}

// EnsureSchema creates any missing sheet or table for the given schemas.
// Existing tables are left exactly as they are, so it is safe to call before
// every operation.
func EnsureSchema(tx *workbook.Tx, schemas ...types.TableSchema) error {
	for _, s := range schemas {
		if err := ensureSheet(tx, s.Sheet); err != nil {
			return err
		}
		if err := ensureTable(tx, s); err != nil {
			return err
		}
	}
	return nil
}

func ensureSheet(tx *workbook.Tx, name string) error {
	exists, err := tx.SheetExists(name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if err := tx.CreateSheet(name); err != nil {
		return err
	}
	slog.Info("created sheet", "sheet", name)
	return nil
}

func ensureTable(tx *workbook.Tx, s types.TableSchema) error {
	ref, found, err := tx.LookupTable(s.Table)
	if err != nil {
		return err
	}
	if found {
		slog.Debug("table present", "table", ref.Name, "sheet", ref.Sheet, "range", ref.Range())
		return nil
	}

	ref, err = tx.CreateTable(s.Sheet, s.Table, s.Headers(), headerFormat)
	if err != nil {
		return fmt.Errorf("provision %s: %w", s.Table, err)
	}
	slog.Info("created table", "table", ref.Name, "sheet", ref.Sheet, "range", ref.Range())
	return nil
}
