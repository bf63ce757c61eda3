// Package workbook stores tables inside an .xlsx file.
//
// All access goes through Store.Run, which opens the file, hands the caller a
// Tx for one unit of work, and saves once at the end. A unit that returns an
// error is discarded without touching the file.
package workbook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrSchemaCollision is returned when a table cannot be created because
	// its name or cells are already claimed by another object.
	ErrSchemaCollision = errors.New("schema collision")

	// ErrTableNotFound is returned by data operations on a missing table.
	ErrTableNotFound = errors.New("table not found")

	// ErrPositionOutOfRange is returned when a row position is outside the
	// table's current data body.
	ErrPositionOutOfRange = errors.New("position out of range")
)

// Store is a workbook file used as a document database.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a store backed by the file at path. The file is created
// on the first unit of work that changes something.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the workbook file path.
func (s *Store) Path() string {
	return s.path
}

// Run executes fn as a single unit of work. Units are serialized within the
// process. Cancellation is only observed before the unit starts.
func (s *Store) Run(ctx context.Context, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	tx := &Tx{file: f}
	if err := fn(tx); err != nil {
		return err
	}

	if !tx.dirty {
		return nil
	}
	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("save workbook %s: %w", s.path, err)
	}
	slog.Debug("workbook saved", "path", s.path)
	return nil
}

func (s *Store) open() (*excelize.File, error) {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		slog.Debug("workbook missing, starting empty", "path", s.path)
		return excelize.NewFile(), nil
	} else if err != nil {
		return nil, fmt.Errorf("stat workbook %s: %w", s.path, err)
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", s.path, err)
	}
	return f, nil
}

// Tx is an open workbook inside one unit of work.
type Tx struct {
	file  *excelize.File
	dirty bool
}

// SheetExists reports whether a worksheet with the given name exists.
func (tx *Tx) SheetExists(name string) (bool, error) {
	idx, err := tx.file.GetSheetIndex(name)
	if err != nil {
		return false, fmt.Errorf("look up sheet %q: %w", name, err)
	}
	return idx != -1, nil
}

// CreateSheet adds a worksheet and makes it the active one.
func (tx *Tx) CreateSheet(name string) error {
	idx, err := tx.file.NewSheet(name)
	if err != nil {
		return fmt.Errorf("create sheet %q: %w", name, err)
	}
	tx.file.SetActiveSheet(idx)
	tx.dirty = true
	return nil
}

// ActiveSheet returns the name of the active worksheet.
func (tx *Tx) ActiveSheet() string {
	return tx.file.GetSheetName(tx.file.GetActiveSheetIndex())
}
