package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/provision"
	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/schema"
	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/types"
	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/workbook"
)

// ErrUnknownEntity is returned when an entity name is not in the catalog.
var ErrUnknownEntity = errors.New("unknown entity")

// Repositories holds one repository per catalog entity. Each operation on
// any of them provisions the whole catalog first.
type Repositories struct {
	Vehicles    *Repository
	Customers   *Repository
	Rentals     *Repository
	Maintenance *Repository

	// Clock dates the demo rentals and maintenance events.
	Clock func() time.Time

	store   *workbook.Store
	catalog schema.Catalog
}

// New builds the four repositories over one store.
func New(store *workbook.Store, catalog schema.Catalog) *Repositories {
	all := WithProvisioned(catalog.All()...)
	return &Repositories{
		Vehicles:    NewRepository(store, catalog.Vehicles, all),
		Customers:   NewRepository(store, catalog.Customers, all),
		Rentals:     NewRepository(store, catalog.Rentals, all),
		Maintenance: NewRepository(store, catalog.Maintenance, all),
		Clock:       time.Now,
		store:       store,
		catalog:     catalog,
	}
}

// Catalog returns the catalog the repositories were built from.
func (r *Repositories) Catalog() schema.Catalog {
	return r.catalog
}

// All returns the repositories in catalog order.
func (r *Repositories) All() []Table {
	return []Table{r.Vehicles, r.Customers, r.Rentals, r.Maintenance}
}

// ByEntity returns the repository for an entity, sheet, or table name.
func (r *Repositories) ByEntity(name string) (Table, error) {
	s, ok := r.catalog.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, name)
	}
	for _, t := range r.All() {
		if t.Schema().Table == s.Table {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, name)
}

// EnsureSchema provisions every table in the catalog.
func (r *Repositories) EnsureSchema(ctx context.Context) error {
	err := r.store.Run(ctx, func(tx *workbook.Tx) error {
		return provision.EnsureSchema(tx, r.catalog.All()...)
	})
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SeedDemo fills every empty table with sample rows. Tables that already
// hold data are left alone, so repeated calls do not duplicate rows.
func (r *Repositories) SeedDemo(ctx context.Context) error {
	seeds := demoRows(r.catalog, r.Clock())

	err := r.store.Run(ctx, func(tx *workbook.Tx) error {
		if err := provision.EnsureSchema(tx, r.catalog.All()...); err != nil {
			return err
		}

		for _, s := range r.catalog.All() {
			_, body, err := tx.ReadTable(s.Table)
			if err != nil {
				return err
			}
			if len(body) > 0 {
				slog.Debug("table has data, not seeding", "table", s.Table, "rows", len(body))
				continue
			}

			for _, row := range seeds[s.Table] {
				if err := tx.AppendRow(s.Table, row); err != nil {
					return err
				}
			}
			slog.Info("seeded table", "table", s.Table, "rows", len(seeds[s.Table]))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seed demo: %w", err)
	}
	return nil
}

func demoRows(c schema.Catalog, now time.Time) map[string][]types.Row {
	day := func(n int) string {
		return now.AddDate(0, 0, n).Format(time.DateOnly)
	}

	return map[string][]types.Row{
		c.Vehicles.Table: {
			{"NAB-1234", "Toyota", "Vios 1.3 E", 2019.0, "AT", 2000.0, "Available"},
			{"XYZ-5678", "Honda", "City 1.5", 2021.0, "AT", 2300.0, "Available"},
			{"AAA-1111", "Mitsubishi", "Mirage G4", 2018.0, "MT", 1700.0, "Maintenance"},
			{"BBB-2222", "Toyota", "Innova", 2020.0, "AT", 3500.0, "Reserved"},
		},
		c.Customers.Table: {
			{"Jane Doe", "0917-000-1111", "jane@example.com", "DL", "D-12345"},
			{"Juan Cruz", "0918-222-3333", "juan@example.com", "DL", "D-67890"},
			{"Maria S.", "0917-888-9999", "maria@example.com", "Passport", "P-556677"},
		},
		c.Rentals.Table: {
			{"RENT-2025-001", "Jane Doe", "NAB-1234", day(-2), day(4), "", 2000.0, 2000.0 * 6, "Ongoing"},
			{"RENT-2025-002", "Juan Cruz", "XYZ-5678", day(-35), day(-30), day(-30), 2300.0, 2300.0 * 5, "Returned"},
		},
		c.Maintenance.Table: {
			{day(-15), "AAA-1111", "Oil Change", 42000.0, 1800.0, "5W-30 full synthetic"},
			{day(-70), "XYZ-5678", "Tire", 51000.0, 12000.0, "2 tires replaced"},
		},
	}
}
