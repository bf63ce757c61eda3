// Package repository provides CRUD access to the workbook tables.
//
// Rows are addressed by position: the 0-based offset returned in
// Record.Position by the latest List. Any Add or Delete on the same table,
// by this process or anyone else editing the file, can make a held position
// point at a different row. That is not detected.
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/converter"
	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/provision"
	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/types"
	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/workbook"
)

// Table is the CRUD surface of one entity table.
type Table interface {
	Schema() types.TableSchema
	List(ctx context.Context) ([]types.Record, error)
	Add(ctx context.Context, input map[string]types.Value) error
	AddAll(ctx context.Context, inputs []map[string]types.Value) error
	Update(ctx context.Context, position int, input map[string]types.Value) error
	Delete(ctx context.Context, position int) error
}

var _ Table = (*Repository)(nil)

// Repository is a Table backed by one schema in a workbook store.
type Repository struct {
	store  *workbook.Store
	schema types.TableSchema
	// ensure is provisioned before every operation.
	ensure []types.TableSchema
}

// Option configures a Repository.
type Option func(*Repository)

// WithProvisioned sets the schemas provisioned before every operation.
// By default only the repository's own schema is.
func WithProvisioned(schemas ...types.TableSchema) Option {
	return func(r *Repository) {
		r.ensure = schemas
	}
}

// NewRepository returns a repository for one table schema.
func NewRepository(store *workbook.Store, schema types.TableSchema, opts ...Option) *Repository {
	r := &Repository{
		store:  store,
		schema: schema,
		ensure: []types.TableSchema{schema},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Schema returns the table schema.
func (r *Repository) Schema() types.TableSchema {
	return r.schema
}

// List returns every data row in storage order.
func (r *Repository) List(ctx context.Context) ([]types.Record, error) {
	records := []types.Record{}

	err := r.store.Run(ctx, func(tx *workbook.Tx) error {
		if err := provision.EnsureSchema(tx, r.ensure...); err != nil {
			return err
		}

		headers, body, err := tx.ReadTable(r.schema.Table)
		if err != nil {
			return err
		}
		if len(body) == 0 {
			return nil
		}

		for i, row := range body {
			records = append(records, converter.Decode(headers, row, i))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.schema.Table, err)
	}

	slog.Debug("listed records", "table", r.schema.Table, "rows", len(records))
	return records, nil
}

// Add appends input as the new last row.
func (r *Repository) Add(ctx context.Context, input map[string]types.Value) error {
	row := converter.Encode(r.schema.Fields, input)

	err := r.store.Run(ctx, func(tx *workbook.Tx) error {
		if err := provision.EnsureSchema(tx, r.ensure...); err != nil {
			return err
		}
		return tx.AppendRow(r.schema.Table, row)
	})
	if err != nil {
		return fmt.Errorf("add to %s: %w", r.schema.Table, err)
	}

	slog.Debug("added record", "table", r.schema.Table)
	return nil
}

// AddAll appends every input in order as one unit of work. Either all rows
// are saved or none are.
func (r *Repository) AddAll(ctx context.Context, inputs []map[string]types.Value) error {
	rows := make([]types.Row, len(inputs))
	for i, input := range inputs {
		rows[i] = converter.Encode(r.schema.Fields, input)
	}

	err := r.store.Run(ctx, func(tx *workbook.Tx) error {
		if err := provision.EnsureSchema(tx, r.ensure...); err != nil {
			return err
		}
		for _, row := range rows {
			if err := tx.AppendRow(r.schema.Table, row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("add %d rows to %s: %w", len(rows), r.schema.Table, err)
	}

	slog.Debug("added records", "table", r.schema.Table, "rows", len(rows))
	return nil
}

// Update overwrites the row at position with input.
func (r *Repository) Update(ctx context.Context, position int, input map[string]types.Value) error {
	row := converter.Encode(r.schema.Fields, input)

	err := r.store.Run(ctx, func(tx *workbook.Tx) error {
		if err := provision.EnsureSchema(tx, r.ensure...); err != nil {
			return err
		}
		return tx.WriteRow(r.schema.Table, position, row)
	})
	if err != nil {
		return fmt.Errorf("update %s row %d: %w", r.schema.Table, position, err)
	}

	slog.Debug("updated record", "table", r.schema.Table, "position", position)
	return nil
}

// Delete removes the row at position. Every later row moves up by one.
func (r *Repository) Delete(ctx context.Context, position int) error {
	err := r.store.Run(ctx, func(tx *workbook.Tx) error {
		if err := provision.EnsureSchema(tx, r.ensure...); err != nil {
			return err
		}
		return tx.DeleteRow(r.schema.Table, position)
	})
	if err != nil {
		return fmt.Errorf("delete %s row %d: %w", r.schema.Table, position, err)
	}

	slog.Debug("deleted record", "table", r.schema.Table, "position", position)
	return nil
}
