package workbook

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "rental.xlsx"))
}

func TestStore_ReadOnlyUnitDoesNotCreateFile(t *testing.T) {
	s := newTestStore(t)

	err := s.Run(context.Background(), func(tx *Tx) error {
		exists, err := tx.SheetExists("Vehicles")
		require.NoError(t, err)
		assert.False(t, exists)
		return nil
	})
	require.NoError(t, err)

	_, err = os.Stat(s.Path())
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestStore_SavesChanges(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Run(ctx, func(tx *Tx) error {
		return tx.CreateSheet("Vehicles")
	}))
	require.FileExists(t, s.Path())

	require.NoError(t, s.Run(ctx, func(tx *Tx) error {
		exists, err := tx.SheetExists("Vehicles")
		require.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, "Vehicles", tx.ActiveSheet())
		return nil
	}))
}

func TestStore_FailedUnitIsDiscarded(t *testing.T) {
	s := newTestStore(t)
	boom := errors.New("boom")

	err := s.Run(context.Background(), func(tx *Tx) error {
		require.NoError(t, tx.CreateSheet("Vehicles"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = os.Stat(s.Path())
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestStore_CancelledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.Run(ctx, func(tx *Tx) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestStore_UnitsAreSerialized(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Run(ctx, func(tx *Tx) error {
		require.NoError(t, tx.CreateSheet("Vehicles"))
		_, err := tx.CreateTable("Vehicles", "tblVehicles", []string{"Plate"}, HeaderFormat{})
		return err
	}))

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Run(ctx, func(tx *Tx) error {
				return tx.AppendRow("tblVehicles", []any{"NAB-1234"})
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.NoError(t, s.Run(ctx, func(tx *Tx) error {
		_, body, err := tx.ReadTable("tblVehicles")
		require.NoError(t, err)
		assert.Len(t, body, writers)
		return nil
	}))
}

func TestStore_OpenCorruptFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("not a zip"), 0o644))

	err := s.Run(context.Background(), func(tx *Tx) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open workbook")
}
