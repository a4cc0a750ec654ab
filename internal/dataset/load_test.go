package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTables(t *testing.T, dir string, tables map[string]string) {
	t.Helper()
	defaults := map[string]string{
		ContractsFile: `[{"site_id": "SITE_001", "site_name": "Test Center", "country": "USA",
			"screening_fee_usd": 1500, "baseline_fee_usd": 3000, "month3_fee_usd": 2000,
			"month6_fee_usd": 2000, "month12_fee_usd": 2500, "closeout_fee_usd": 3500}]`,
		VisitsFile: `[{"patient_id": "P-0001", "site_id": "SITE_001", "visit_type": "screening",
			"visit_date": "2024-01-15T00:00:00Z", "status": "completed"}]`,
		PaymentsFile: `[{"payment_id": "PAY-00001", "site_id": "SITE_001", "patient_id": "P-0001",
			"visit_type": "screening", "amount_usd": 1500, "payment_date": "2024-02-15T00:00:00Z",
			"invoice_number": "INV-SITE_001-00001"}]`,
		BudgetsFile: `[{"site_id": "SITE_001", "allocated_budget_usd": 100000, "currency": "USD"}]`,
	}
	for file, content := range tables {
		defaults[file] = content
	}
	for file, content := range defaults {
		require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644))
	}
}

func TestLoad_ValidDataset(t *testing.T) {
	dir := t.TempDir()
	writeTables(t, dir, nil)

	ds, err := Load(dir)
	require.NoError(t, err)

	require.Len(t, ds.Contracts, 1)
	assert.Equal(t, "SITE_001", ds.Contracts[0].SiteID)
	require.Len(t, ds.Visits, 1)
	require.Len(t, ds.Payments, 1)
	require.Len(t, ds.Budgets, 1)
	assert.True(t, ds.Payments[0].Amount.IntPart() == 1500)
}

func TestLoad_MissingFile(t *testing.T) {
	dir := t.TempDir()
	writeTables(t, dir, nil)
	require.NoError(t, os.Remove(filepath.Join(dir, PaymentsFile)))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), PaymentsFile)
}

func TestLoad_SchemaRejectsBadVisitType(t *testing.T) {
	dir := t.TempDir()
	writeTables(t, dir, map[string]string{
		VisitsFile: `[{"patient_id": "P-0001", "site_id": "SITE_001", "visit_type": "month_24",
			"visit_date": "2024-01-15T00:00:00Z", "status": "completed"}]`,
	})

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), VisitsFile)
}

func TestLoad_SchemaRejectsNonArray(t *testing.T) {
	dir := t.TempDir()
	writeTables(t, dir, map[string]string{
		BudgetsFile: `{"site_id": "SITE_001"}`,
	})

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoad_RejectsDuplicateContractPerSite(t *testing.T) {
	dir := t.TempDir()
	writeTables(t, dir, map[string]string{
		ContractsFile: `[
			{"site_id": "SITE_001", "site_name": "A", "country": "USA",
			 "screening_fee_usd": 1500, "baseline_fee_usd": 3000, "month3_fee_usd": 2000,
			 "month6_fee_usd": 2000, "month12_fee_usd": 2500, "closeout_fee_usd": 3500},
			{"site_id": "SITE_001", "site_name": "B", "country": "USA",
			 "screening_fee_usd": 1600, "baseline_fee_usd": 3000, "month3_fee_usd": 2000,
			 "month6_fee_usd": 2000, "month12_fee_usd": 2500, "closeout_fee_usd": 3500}
		]`,
	})

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate contract for site SITE_001")
}

func TestLoad_RejectsMissingRequiredField(t *testing.T) {
	dir := t.TempDir()
	writeTables(t, dir, map[string]string{
		PaymentsFile: `[{"site_id": "SITE_001", "patient_id": "P-0001",
			"visit_type": "screening", "amount_usd": 1500,
			"payment_date": "2024-02-15T00:00:00Z", "invoice_number": "INV-1"}]`,
	})

	_, err := Load(dir)
	assert.Error(t, err, "payment without payment_id must be rejected")
}

func TestWriteLoad_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	ds := NewGenerator(DefaultSeed).Generate()

	require.NoError(t, Write(ds, dir))
	loaded, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, len(ds.Contracts), len(loaded.Contracts))
	assert.Equal(t, len(ds.Visits), len(loaded.Visits))
	assert.Equal(t, len(ds.Payments), len(loaded.Payments))
	assert.Equal(t, len(ds.Budgets), len(loaded.Budgets))
	assert.True(t, ds.Payments[0].Amount.Equal(loaded.Payments[0].Amount))
	assert.Equal(t, ds.Visits[0].Key(), loaded.Visits[0].Key())
}
