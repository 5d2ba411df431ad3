package repository

import (
	"path/filepath"
	"testing"
	"time"

	entity "goldshop/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newProduct(code, name, category string, weight float64) *entity.Product {
	return &entity.Product{
		ProductCode: code,
		Name:        name,
		Category:    category,
		BaseNumber:  "1",
		Weight:      weight,
		Quantity:    1,
		CreatedAt:   time.Now(),
	}
}

func TestMigrationIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(path)
	require.NoError(t, err)
	repo := NewProductRepository(db)
	require.NoError(t, repo.Create(newProduct("L1", "النگو طرح دار", "النگو", 4.5)))
	require.NoError(t, db.Close())

	// A second open against the same file must leave the data intact.
	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	repo = NewProductRepository(db)

	p, err := repo.GetByCode("L1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "النگو طرح دار", p.Name)
}

func TestProductCRUD(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductRepository(db)

	p := newProduct("R1", "انگشتر", "انگشتر", 3.2)
	p.Purity = "750"
	require.NoError(t, repo.Create(p))
	require.NotZero(t, p.ID)

	got, err := repo.GetByID(p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "R1", got.ProductCode)
	assert.Equal(t, "750", got.Purity)
	assert.False(t, got.Sold())
	assert.Nil(t, got.SoldAt)

	got.Name = "انگشتر نگین دار"
	got.Weight = 3.4
	require.NoError(t, repo.Update(got))

	updated, err := repo.GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "انگشتر نگین دار", updated.Name)
	assert.InDelta(t, 3.4, updated.Weight, 1e-9)

	require.NoError(t, repo.Delete(p.ID))
	gone, err := repo.GetByID(p.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductRepository(db)

	p, err := repo.GetByID(9999)
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = repo.GetByCode("NOPE")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSearchRanksCodePrefixFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductRepository(db)

	require.NoError(t, repo.Create(newProduct("G1", "گوشواره L5 طرح", "گوشواره", 2.0)))
	require.NoError(t, repo.Create(newProduct("L5", "النگو ساده", "النگو", 4.0)))
	require.NoError(t, repo.Create(newProduct("L50", "النگو پهن", "النگو", 5.0)))

	results, err := repo.Search("L5", false, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	// Code-prefix matches come before the name match.
	assert.Equal(t, "L50", results[0].ProductCode)
	assert.Equal(t, "L5", results[1].ProductCode)
	assert.Equal(t, "G1", results[2].ProductCode)
}

func TestSearchExcludesSoldByDefault(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductRepository(db)

	p := newProduct("D1", "دستبند", "دستبند", 8.0)
	require.NoError(t, repo.Create(p))
	require.NoError(t, repo.MarkSold(p.ID, "1403/05/01", "", "", time.Now()))

	results, err := repo.Search("دستبند", false, 10)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = repo.Search("دستبند", true, 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestMarkSoldAndRestore(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductRepository(db)

	p := newProduct("N1", "گردنبند", "گردنبند", 12.5)
	require.NoError(t, repo.Create(p))

	soldAt := time.Now()
	require.NoError(t, repo.MarkSold(p.ID, "1403/05/10", "img.jpg", "thumb.jpg", soldAt))

	sold, err := repo.GetByID(p.ID)
	require.NoError(t, err)
	assert.True(t, sold.Sold())
	assert.Equal(t, "1403/05/10", sold.SoldInvoice)
	assert.Equal(t, 0, sold.Quantity)
	require.NotNil(t, sold.SoldAt)
	assert.WithinDuration(t, soldAt, *sold.SoldAt, time.Second)

	require.NoError(t, repo.RestoreProduct(p.ID))
	restored, err := repo.GetByID(p.ID)
	require.NoError(t, err)
	assert.False(t, restored.Sold())
	assert.Equal(t, 1, restored.Quantity)
	assert.Nil(t, restored.SoldAt)
}

func TestRestoreInvoice(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductRepository(db)

	for _, code := range []string{"S1", "S2", "S3"} {
		p := newProduct(code, "سکه", "سکه", 8.13)
		require.NoError(t, repo.Create(p))
		require.NoError(t, repo.MarkSold(p.ID, "1403/05/10", "", "", time.Now()))
	}
	other := newProduct("S4", "سکه", "سکه", 8.13)
	require.NoError(t, repo.Create(other))
	require.NoError(t, repo.MarkSold(other.ID, "1403/05/11", "", "", time.Now()))

	n, err := repo.RestoreInvoice("1403/05/10")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	still, err := repo.GetByID(other.ID)
	require.NoError(t, err)
	assert.True(t, still.Sold())
}

func TestOldSoldHonorsCutoff(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductRepository(db)

	old := newProduct("Z1", "زنجیر", "زنجیر", 6.0)
	old.CreatedAt = time.Now().AddDate(0, 0, -100)
	require.NoError(t, repo.Create(old))
	require.NoError(t, repo.MarkSold(old.ID, "1403/01/01", "", "", old.CreatedAt))

	recent := newProduct("Z2", "زنجیر", "زنجیر", 6.0)
	require.NoError(t, repo.Create(recent))
	require.NoError(t, repo.MarkSold(recent.ID, "1403/05/01", "", "", time.Now()))

	unsold := newProduct("Z3", "زنجیر", "زنجیر", 6.0)
	unsold.CreatedAt = time.Now().AddDate(0, 0, -100)
	require.NoError(t, repo.Create(unsold))

	candidates, err := repo.OldSold(time.Now().AddDate(0, 0, -90))
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Z1", candidates[0].ProductCode)
}

func TestCountsAndWeights(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductRepository(db)

	a := newProduct("L1", "النگو", "النگو", 4.0)
	a.Quantity = 2
	require.NoError(t, repo.Create(a))
	require.NoError(t, repo.Create(newProduct("L2", "النگو", "النگو", 3.0)))
	require.NoError(t, repo.Create(newProduct("R1", "انگشتر", "انگشتر", 2.0)))

	sold := newProduct("R2", "انگشتر", "انگشتر", 9.0)
	require.NoError(t, repo.Create(sold))
	require.NoError(t, repo.MarkSold(sold.ID, "1403/05/01", "", "", time.Now()))

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	counts, err := repo.CategoryCounts()
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, "النگو", counts[0].Category)
	assert.Equal(t, 2, counts[0].Count)

	summaries, err := repo.WeightByCategory()
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	// النگو: 4×2 + 3×1 = 11, انگشتر: 2×1 (the sold ring has quantity 0)
	assert.Equal(t, "النگو", summaries[0].Category)
	assert.InDelta(t, 11.0, summaries[0].TotalWeight, 1e-9)

	total, err := repo.TotalWeight()
	require.NoError(t, err)
	assert.InDelta(t, 13.0, total.TotalWeight, 1e-9)
	assert.Equal(t, 3, total.TotalCount)
}

func TestRecentInvoicesAndGrouping(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductRepository(db)

	base := time.Now()
	invoices := []string{"1403/05/01", "1403/05/02", "1403/05/03"}
	for i, inv := range invoices {
		p := newProduct("P"+inv[len(inv)-1:], "پلاک", "پلاک", 1.5)
		require.NoError(t, repo.Create(p))
		require.NoError(t, repo.MarkSold(p.ID, inv, "", "", base.Add(time.Duration(i)*time.Minute)))
	}

	recent, err := repo.RecentInvoices(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "1403/05/03", recent[0])
	assert.Equal(t, "1403/05/02", recent[1])

	products, err := repo.ByInvoices(recent, 100)
	require.NoError(t, err)
	assert.Len(t, products, 2)

	matched, err := repo.SoldByInvoiceLike("05/0", 100)
	require.NoError(t, err)
	assert.Len(t, matched, 3)
}

func TestWipeAll(t *testing.T) {
	db := newTestDB(t)
	products := NewProductRepository(db)
	bases := NewBaseRepository(db)

	require.NoError(t, products.Create(newProduct("M1", "متفرقه", "متفرقه", 1.0)))
	require.NoError(t, bases.SetImage("متفرقه", "1", "img.jpg", "thumb.jpg"))

	require.NoError(t, products.WipeAll())

	count, err := products.Count()
	require.NoError(t, err)
	assert.Zero(t, count)

	base, err := bases.Get("متفرقه", "1")
	require.NoError(t, err)
	assert.Nil(t, base)
}

func TestBaseUpsert(t *testing.T) {
	db := newTestDB(t)
	bases := NewBaseRepository(db)

	require.NoError(t, bases.SetImage("النگو", "3", "first.jpg", "t_first.jpg"))
	require.NoError(t, bases.SetImage("النگو", "3", "second.jpg", "t_second.jpg"))

	base, err := bases.Get("النگو", "3")
	require.NoError(t, err)
	require.NotNil(t, base)
	assert.Equal(t, "second.jpg", base.Image)

	missing, err := bases.Get("النگو", "99")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestActivityLogRoundTrip(t *testing.T) {
	db := newTestDB(t)
	activity := NewActivityRepository(db)

	require.NoError(t, activity.Save(&entity.ActivityLog{
		RelatedID:   "1",
		RelatedType: "product",
		OldStatus:   "in_stock",
		NewStatus:   "sold",
		ChangedBy:   "operator",
		Note:        "invoice 1403/05/01",
	}))

	logs, err := activity.ListRecent(10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "sold", logs[0].NewStatus)
	assert.False(t, logs[0].At.IsZero())
}
