package schema

import (
	"strings"

	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/types"
)

// Entity names accepted by Catalog.Lookup.
const (
	EntityVehicles    = "vehicles"
	EntityCustomers   = "customers"
	EntityRentals     = "rentals"
	EntityMaintenance = "maintenance"
)

// Catalog is the closed set of tables kept in the workbook. It is built once
// with NewCatalog and passed by value; nothing mutates it afterwards.
type Catalog struct {
	Vehicles    types.TableSchema
	Customers   types.TableSchema
	Rentals     types.TableSchema
	Maintenance types.TableSchema
}

func text(header string, aliases ...string) types.FieldSpec {
	return types.FieldSpec{Header: header, Kind: types.FieldText, Default: "", Aliases: aliases}
}

func number(header string) types.FieldSpec {
	return types.FieldSpec{Header: header, Kind: types.FieldNumber, Default: float64(0)}
}

// NewCatalog returns the workbook layout.
func NewCatalog() Catalog {
	status := func(def string) types.FieldSpec {
		f := text("Status")
		f.Default = def
		return f
	}

	return Catalog{
		Vehicles: types.TableSchema{
			Sheet: "Vehicles",
			Table: "tblVehicles",
			Fields: []types.FieldSpec{
				text("Plate"),
				text("Make"),
				text("Model"),
				number("Year"),
				text("Transmission"),
				number("Rate"),
				status("Available"),
			},
		},
		Customers: types.TableSchema{
			Sheet: "Customers",
			Table: "tblCustomers",
			Fields: []types.FieldSpec{
				text("Name"),
				text("Phone"),
				text("Email"),
				text("ID Type"),
				text("ID No"),
			},
		},
		Rentals: types.TableSchema{
			Sheet: "Rentals",
			Table: "tblRentals",
			Fields: []types.FieldSpec{
				text("Rental ID"),
				text("Customer ID", "customer", "customerName"),
				text("Vehicle Plate", "vehicle"),
				text("Start Date"),
				text("Due Date"),
				text("Actual Return"),
				number("Daily Rate"),
				number("Amount"),
				status("Ongoing"),
			},
		},
		Maintenance: types.TableSchema{
			Sheet: "Maintenance",
			Table: "tblMaintenance",
			Fields: []types.FieldSpec{
				text("Date"),
				text("Vehicle Plate"),
				text("Type"),
				number("Odometer"),
				number("Cost"),
				text("Description", "desc"),
			},
		},
	}
}

// All returns the schemas in provisioning order.
func (c Catalog) All() []types.TableSchema {
	return []types.TableSchema{c.Vehicles, c.Customers, c.Rentals, c.Maintenance}
}

// Entities returns the entity names in the same order as All.
func (c Catalog) Entities() []string {
	return []string{EntityVehicles, EntityCustomers, EntityRentals, EntityMaintenance}
}

// Lookup finds a schema by entity name, sheet name, or table name,
// ignoring case.
func (c Catalog) Lookup(name string) (types.TableSchema, bool) {
	for i, s := range c.All() {
		if strings.EqualFold(name, c.Entities()[i]) ||
			strings.EqualFold(name, s.Sheet) ||
			strings.EqualFold(name, s.Table) {
			return s, true
		}
	}
	return types.TableSchema{}, false
}
