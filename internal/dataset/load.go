package dataset

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/trial-reconciler/internal/schemas"
	"github.com/jonathan/trial-reconciler/internal/types"
)

//go:embed schemas/*.schema.json
var schemaFiles embed.FS

// Table file names expected inside a dataset directory.
const (
	ContractsFile = "contracts.json"
	VisitsFile    = "visits.json"
	PaymentsFile  = "payments.json"
	BudgetsFile   = "budgets.json"
)

var validate = validator.New()

// FileSource loads a dataset from a directory of JSON table files. It
// satisfies the orchestrator's data source contract.
type FileSource struct {
	Dir string
}

// Load reads, schema-validates, and decodes the four tables.
func (s *FileSource) Load(_ context.Context) (*types.Dataset, error) {
	return Load(s.Dir)
}

// Load reads the four table files from dir, validates each against its JSON
// Schema and per-row struct constraints, and checks the one-contract and
// one-budget-per-site invariants. Any dataset satisfying the schemas is
// accepted, not just generator output.
func Load(dir string) (*types.Dataset, error) {
	ds := &types.Dataset{}

	if err := loadTable(dir, ContractsFile, "contracts.schema.json", &ds.Contracts); err != nil {
		return nil, err
	}
	if err := loadTable(dir, VisitsFile, "visits.schema.json", &ds.Visits); err != nil {
		return nil, err
	}
	if err := loadTable(dir, PaymentsFile, "payments.schema.json", &ds.Payments); err != nil {
		return nil, err
	}
	if err := loadTable(dir, BudgetsFile, "budgets.schema.json", &ds.Budgets); err != nil {
		return nil, err
	}

	if err := checkInvariants(ds); err != nil {
		return nil, err
	}
	return ds, nil
}

func loadTable[T any](dir, file, schemaFile string, out *[]T) error {
	data, err := os.ReadFile(filepath.Join(dir, file))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}

	schema, err := schemaFiles.ReadFile("schemas/" + schemaFile)
	if err != nil {
		return fmt.Errorf("failed to read embedded schema %s: %w", schemaFile, err)
	}
	if err := schemas.ValidateBytes(file, schema, data); err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", file, err)
	}
	for i := range *out {
		if err := validate.Struct(&(*out)[i]); err != nil {
			return fmt.Errorf("%s row %d: %w", file, i, err)
		}
	}
	return nil
}

func checkInvariants(ds *types.Dataset) error {
	seen := make(map[string]struct{}, len(ds.Contracts))
	for _, c := range ds.Contracts {
		if _, dup := seen[c.SiteID]; dup {
			return fmt.Errorf("contracts: duplicate contract for site %s", c.SiteID)
		}
		seen[c.SiteID] = struct{}{}
	}
	seen = make(map[string]struct{}, len(ds.Budgets))
	for _, b := range ds.Budgets {
		if _, dup := seen[b.SiteID]; dup {
			return fmt.Errorf("budgets: duplicate budget for site %s", b.SiteID)
		}
		seen[b.SiteID] = struct{}{}
	}
	return nil
}

// Write stores the four tables of a dataset as JSON files in dir, creating
// the directory if needed. The output round-trips through Load.
func Write(ds *types.Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create dataset directory: %w", err)
	}
	tables := map[string]any{
		ContractsFile: ds.Contracts,
		VisitsFile:    ds.Visits,
		PaymentsFile:  ds.Payments,
		BudgetsFile:   ds.Budgets,
	}
	for file, table := range tables {
		data, err := json.MarshalIndent(table, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", file, err)
		}
		if err := os.WriteFile(filepath.Join(dir, file), data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", file, err)
		}
	}
	return nil
}
