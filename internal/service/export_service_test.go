package service

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	entity "goldshop/internal/domain"
	utils "goldshop/pkg"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCSVColumnsAndJalaliDates(t *testing.T) {
	f := newFixture(t)
	svc := NewExportService(f.products, filepath.Join(f.dataDir, "exports"), zerolog.Nop())

	createdAt := time.Date(2024, 3, 20, 10, 30, 0, 0, time.UTC)
	soldAt := time.Date(2024, 8, 25, 14, 0, 0, 0, time.UTC)
	require.NoError(t, f.products.Create(&entity.Product{
		ProductCode: "L1",
		Name:        "النگو",
		Category:    "النگو",
		BaseNumber:  "1",
		Weight:      4.25,
		Quantity:    0,
		Purity:      "750",
		Notes:       "یادداشت",
		CreatedAt:   createdAt,
		SoldInvoice: "1403/06/04",
		SoldAt:      &soldAt,
	}))
	require.NoError(t, f.products.Create(&entity.Product{
		ProductCode: "R1",
		Name:        "انگشتر",
		Category:    "انگشتر",
		BaseNumber:  "-",
		Weight:      2.1,
		Quantity:    1,
		CreatedAt:   createdAt,
	}))

	path, err := svc.ExportCSV()
	require.NoError(t, err)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{
		"id", "product_code", "name", "category", "base_number",
		"weight", "quantity", "purity", "notes", "image",
		"sold_invoice", "created_at", "sold_at",
	}, records[0])

	// Sold product row: Jalali timestamps, both set. Rows come newest first.
	sold := records[2]
	assert.Equal(t, "L1", sold[1])
	assert.Equal(t, "4.25", sold[5])
	assert.Equal(t, utils.JalaliDateTime(createdAt), sold[11])
	assert.Equal(t, utils.JalaliDateTime(soldAt), sold[12])

	// Unsold product has an empty sold_at.
	unsold := records[1]
	assert.Equal(t, "R1", unsold[1])
	assert.Empty(t, unsold[10])
	assert.Empty(t, unsold[12])
}

func TestExportCSVEmptyTable(t *testing.T) {
	f := newFixture(t)
	svc := NewExportService(f.products, filepath.Join(f.dataDir, "exports"), zerolog.Nop())

	path, err := svc.ExportCSV()
	require.NoError(t, err)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1) // header only
}
