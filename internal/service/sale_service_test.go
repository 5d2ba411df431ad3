package service

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	entity "goldshop/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) saleService() *SaleService {
	return NewSaleService(f.products, f.activity, f.store, filepath.Join(f.dataDir, "sold"), zerolog.Nop())
}

func createStock(t *testing.T, f *fixture, code string, quantity int) *entity.Product {
	t.Helper()
	p := &entity.Product{
		ProductCode: code,
		Name:        "النگو",
		Category:    "النگو",
		BaseNumber:  "1",
		Weight:      4.0,
		Quantity:    quantity,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, f.products.Create(p))
	return p
}

func TestSellSingleItemMarksInPlace(t *testing.T) {
	f := newFixture(t)
	svc := f.saleService()
	p := createStock(t, f, "L1", 1)

	sold, err := svc.Sell(p.ID, "1403/05/01")
	require.NoError(t, err)
	assert.Equal(t, p.ID, sold.ID)
	assert.Equal(t, "1403/05/01", sold.SoldInvoice)
	assert.Equal(t, 0, sold.Quantity)
	require.NotNil(t, sold.SoldAt)
	assert.NotEmpty(t, sold.SoldAtFa)

	// Sidecar snapshot lands under sold/<invoice>/ with the slashes of the
	// invoice folded into dashes.
	sidecar := filepath.Join(f.dataDir, "sold", "1403-05-01", "meta_"+itoa(p.ID)+".json")
	data, err := os.ReadFile(sidecar)
	require.NoError(t, err)
	var meta entity.SaleMetadata
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.Equal(t, "L1", meta.ProductCode)
	assert.Equal(t, "1403/05/01", meta.Invoice)
}

func TestSellMultiQuantitySplitsRow(t *testing.T) {
	f := newFixture(t)
	svc := f.saleService()
	p := createStock(t, f, "L1", 3)

	sold, err := svc.Sell(p.ID, "1403/05/02")
	require.NoError(t, err)

	// A new sold row is created; the original keeps the remainder.
	assert.NotEqual(t, p.ID, sold.ID)
	assert.True(t, strings.HasPrefix(sold.ProductCode, "L1-S"))
	assert.True(t, strings.HasSuffix(sold.Name, " (فروش)"))
	assert.Contains(t, sold.Notes, "فروش فاکتور: 1403/05/02")
	assert.True(t, sold.Sold())

	original, err := f.products.GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, original.Quantity)
	assert.False(t, original.Sold())
}

func TestSellNormalizesInvoiceDigits(t *testing.T) {
	f := newFixture(t)
	svc := f.saleService()
	p := createStock(t, f, "L1", 1)

	sold, err := svc.Sell(p.ID, "۱۴۰۳-۲۲")
	require.NoError(t, err)
	assert.Equal(t, "1403-22", sold.SoldInvoice)
}

func TestSellDefaultsInvoiceToJalaliDate(t *testing.T) {
	f := newFixture(t)
	svc := f.saleService()
	p := createStock(t, f, "L1", 1)

	sold, err := svc.Sell(p.ID, "  ")
	require.NoError(t, err)
	assert.Equal(t, svc.SuggestedInvoice(), sold.SoldInvoice)
}

func TestSellTwiceFails(t *testing.T) {
	f := newFixture(t)
	svc := f.saleService()
	p := createStock(t, f, "L1", 1)

	_, err := svc.Sell(p.ID, "1403/05/01")
	require.NoError(t, err)
	_, err = svc.Sell(p.ID, "1403/05/01")
	assert.ErrorIs(t, err, ErrAlreadySold)
}

func TestRestoreProduct(t *testing.T) {
	f := newFixture(t)
	svc := f.saleService()
	p := createStock(t, f, "L1", 1)

	_, err := svc.RestoreProduct(p.ID)
	assert.ErrorIs(t, err, ErrNotSold)

	_, err = svc.Sell(p.ID, "1403/05/01")
	require.NoError(t, err)

	restored, err := svc.RestoreProduct(p.ID)
	require.NoError(t, err)
	assert.False(t, restored.Sold())
	assert.Equal(t, 1, restored.Quantity)
	assert.Nil(t, restored.SoldAt)
}

func TestRestoreInvoiceRestoresAll(t *testing.T) {
	f := newFixture(t)
	svc := f.saleService()

	for _, code := range []string{"L1", "L2"} {
		p := createStock(t, f, code, 1)
		_, err := svc.Sell(p.ID, "1403/05/05")
		require.NoError(t, err)
	}

	n, err := svc.RestoreInvoice("1403/05/05")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestSoldGroupedNewestInvoiceFirst(t *testing.T) {
	f := newFixture(t)
	svc := f.saleService()

	for i, invoice := range []string{"1403/05/01", "1403/05/02"} {
		p := createStock(t, f, "L"+itoa(int64(i+1)), 1)
		_, err := svc.Sell(p.ID, invoice)
		require.NoError(t, err)
	}

	groups, err := svc.SoldGrouped()
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "1403/05/02", groups[0].Invoice)
	assert.Equal(t, "1403/05/01", groups[1].Invoice)
	require.Len(t, groups[0].Products, 1)
	assert.NotEmpty(t, groups[0].SoldAt)
}

func TestSearchSoldFiltersByInvoice(t *testing.T) {
	f := newFixture(t)
	svc := f.saleService()

	a := createStock(t, f, "L1", 1)
	_, err := svc.Sell(a.ID, "1403/04/30")
	require.NoError(t, err)
	b := createStock(t, f, "L2", 1)
	_, err = svc.Sell(b.ID, "1403/05/01")
	require.NoError(t, err)

	groups, err := svc.SearchSold("04/30")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "1403/04/30", groups[0].Invoice)
}

func TestPurgeOldSoldRemovesRowsFilesAndSidecars(t *testing.T) {
	f := newFixture(t)
	svc := f.saleService()

	// Old sold product with an image file and a sidecar.
	imagesDir := filepath.Join(f.dataDir, "images")
	require.NoError(t, os.MkdirAll(imagesDir, 0o755))
	imagePath := filepath.Join(imagesDir, "old.jpg")
	require.NoError(t, os.WriteFile(imagePath, []byte("jpg"), 0o644))

	old := &entity.Product{
		ProductCode: "L1",
		Name:        "النگو",
		Category:    "النگو",
		BaseNumber:  "1",
		Weight:      4.0,
		Quantity:    0,
		Image:       imagePath,
		CreatedAt:   time.Now().AddDate(0, 0, -120),
		SoldInvoice: "1402/12/01",
	}
	require.NoError(t, f.products.Create(old))

	sidecarDir := filepath.Join(f.dataDir, "sold", "1402-12-01")
	require.NoError(t, os.MkdirAll(sidecarDir, 0o755))
	sidecar := filepath.Join(sidecarDir, "meta_"+itoa(old.ID)+".json")
	require.NoError(t, os.WriteFile(sidecar, []byte("{}"), 0o644))

	// A fresh sale must survive the purge.
	fresh := createStock(t, f, "L2", 1)
	_, err := svc.Sell(fresh.ID, "1403/05/01")
	require.NoError(t, err)

	purged, err := svc.PurgeOldSold(3)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	gone, err := f.products.GetByID(old.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	assert.NoFileExists(t, imagePath)
	assert.NoFileExists(t, sidecar)

	kept, err := f.products.GetByID(fresh.ID)
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.True(t, kept.Sold())
}

func TestInvoiceDirNameStaysInsideSoldTree(t *testing.T) {
	assert.Equal(t, "1403-06-03", invoiceDirName("1403/06/03"))
	assert.Equal(t, "..-..-etc", invoiceDirName("../../etc"))
	assert.Equal(t, "_..", invoiceDirName(".."))
	assert.Equal(t, "_", invoiceDirName(""))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
