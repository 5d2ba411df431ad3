package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	entity "goldshop/internal/domain"
	repo "goldshop/internal/repository/sqlite"

	"github.com/rs/zerolog"
)

type InventoryService struct {
	products repo.ProductRepository
	soldDir  string
	log      zerolog.Logger
}

func NewInventoryService(products repo.ProductRepository, soldDir string, log zerolog.Logger) *InventoryService {
	return &InventoryService{products: products, soldDir: soldDir, log: log}
}

func (s *InventoryService) CategoryCounts() ([]entity.CategoryCount, error) {
	return s.products.CategoryCounts()
}

func (s *InventoryService) TotalCount() (int, error) {
	return s.products.Count()
}

// WeightByCategory is the weight inventory: SUM(weight × quantity) per
// category over unsold products, heaviest first.
func (s *InventoryService) WeightByCategory() ([]entity.WeightSummary, error) {
	return s.products.WeightByCategory()
}

func (s *InventoryService) TotalWeight() (*entity.WeightTotal, error) {
	return s.products.TotalWeight()
}

// Stats aggregates sales over today / this week / this month, merging
// sold rows from the database with the sidecar files under sold/ and
// de-duplicating by (sold id, invoice).
func (s *InventoryService) Stats() (*entity.SalesStats, error) {
	records := s.sidecarRecords()

	products, err := s.products.List(true, 0, 0)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if !p.Sold() {
			continue
		}
		soldAt := p.SoldAt
		if soldAt == nil && !p.CreatedAt.IsZero() {
			t := p.CreatedAt
			soldAt = &t
		}
		records = append(records, entity.SaleRecord{
			Invoice: p.SoldInvoice,
			SoldAt:  soldAt,
			Weight:  p.Weight,
			SoldID:  p.ID,
			Name:    p.Name,
		})
	}

	seen := map[string]bool{}
	now := time.Now()
	startToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startWeek := startToday.AddDate(0, 0, -int((startToday.Weekday()+6)%7)) // back to Monday
	startMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stats := &entity.SalesStats{}
	invoiceTotals := map[string]*entity.InvoiceTotal{}
	for _, r := range records {
		key := fmt.Sprintf("%d_%s", r.SoldID, r.Invoice)
		if seen[key] {
			continue
		}
		seen[key] = true

		soldAt := startToday
		if r.SoldAt != nil {
			soldAt = *r.SoldAt
		}
		if !soldAt.Before(startToday) {
			stats.Today.Count++
			stats.Today.Weight += r.Weight
		}
		if !soldAt.Before(startWeek) {
			stats.Week.Count++
			stats.Week.Weight += r.Weight
		}
		if !soldAt.Before(startMonth) {
			stats.Month.Count++
			stats.Month.Weight += r.Weight
		}

		total, ok := invoiceTotals[r.Invoice]
		if !ok {
			total = &entity.InvoiceTotal{Invoice: r.Invoice}
			invoiceTotals[r.Invoice] = total
		}
		total.Count++
		total.Weight += r.Weight
	}

	for _, t := range invoiceTotals {
		stats.Invoices = append(stats.Invoices, *t)
	}
	sort.Slice(stats.Invoices, func(i, j int) bool {
		if stats.Invoices[i].Count != stats.Invoices[j].Count {
			return stats.Invoices[i].Count > stats.Invoices[j].Count
		}
		return stats.Invoices[i].Invoice > stats.Invoices[j].Invoice
	})
	if len(stats.Invoices) > 20 {
		stats.Invoices = stats.Invoices[:20]
	}
	return stats, nil
}

// sidecarRecords reads every meta_*.json under sold/<invoice>/ directories.
// Unreadable files are skipped; the sidecars are best-effort artifacts.
func (s *InventoryService) sidecarRecords() []entity.SaleRecord {
	var records []entity.SaleRecord
	invoiceDirs, err := os.ReadDir(s.soldDir)
	if err != nil {
		return records
	}
	for _, dir := range invoiceDirs {
		if !dir.IsDir() {
			continue
		}
		invoice := dir.Name()
		files, err := os.ReadDir(filepath.Join(s.soldDir, invoice))
		if err != nil {
			continue
		}
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(strings.ToLower(f.Name()), ".json") {
				continue
			}
			data, err := os.ReadFile(filepath.Join(s.soldDir, invoice, f.Name()))
			if err != nil {
				continue
			}
			var meta entity.SaleMetadata
			if err := json.Unmarshal(data, &meta); err != nil {
				s.log.Debug().Err(err).Str("file", f.Name()).Msg("skipping unreadable sidecar")
				continue
			}
			var soldAt *time.Time
			if t, err := time.Parse(time.RFC3339, meta.SoldAt); err == nil {
				soldAt = &t
			}
			id := meta.SoldID
			if id == 0 {
				id = meta.OriginalID
			}
			// The directory name is a sanitized form; the sidecar carries
			// the invoice as entered.
			inv := meta.Invoice
			if inv == "" {
				inv = invoice
			}
			records = append(records, entity.SaleRecord{
				Invoice: inv,
				SoldAt:  soldAt,
				Weight:  meta.Weight,
				SoldID:  id,
				Name:    meta.Name,
			})
		}
	}
	return records
}
