package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	entity "goldshop/internal/domain"
	"goldshop/internal/media"
	repo "goldshop/internal/repository/sqlite"
	utils "goldshop/pkg"

	"github.com/rs/zerolog"
)

var (
	ErrAlreadySold = errors.New("product is already sold")
	ErrNotSold     = errors.New("product is not sold")
)

const (
	statusInStock = "in_stock"
	statusSold    = "sold"
	statusPurged  = "purged"

	recentInvoiceLimit = 10
	soldListLimit      = 200
)

type SaleService struct {
	products repo.ProductRepository
	activity repo.ActivityRepository
	media    *media.Store
	soldDir  string
	log      zerolog.Logger
}

func NewSaleService(products repo.ProductRepository, activity repo.ActivityRepository, store *media.Store, soldDir string, log zerolog.Logger) *SaleService {
	return &SaleService{
		products: products,
		activity: activity,
		media:    store,
		soldDir:  soldDir,
		log:      log,
	}
}

// SuggestedInvoice is the default invoice number: today's Jalali date.
func (s *SaleService) SuggestedInvoice() string {
	return utils.JalaliDate(time.Now())
}

// Sell records a sale against an invoice. For products with quantity > 1
// the original row keeps the remainder and a new sold row is inserted; a
// single item is marked sold in place. Either way the photos are copied
// into sold/<invoice>/ and a JSON sidecar snapshot is written there.
func (s *SaleService) Sell(id int64, invoice string) (*entity.Product, error) {
	invoice = strings.TrimSpace(utils.NormalizeDigits(invoice))
	if invoice == "" {
		invoice = s.SuggestedInvoice()
	}

	p, err := s.products.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	if p.Sold() {
		return nil, ErrAlreadySold
	}

	now := time.Now()
	invoiceDir := s.invoiceDir(invoice)
	soldImage := s.copyToSold(p.Image, invoiceDir)
	soldThumb := s.copyToSold(p.Thumb, invoiceDir)

	var sold *entity.Product
	if p.Quantity > 1 {
		p.Quantity--
		if err := s.products.Update(p); err != nil {
			return nil, err
		}

		entry := &entity.Product{
			ProductCode: fmt.Sprintf("%s-S%s", p.ProductCode, now.Format("150405")),
			Name:        p.Name + " (فروش)",
			Category:    p.Category,
			BaseNumber:  p.BaseNumber,
			Weight:      p.Weight,
			Quantity:    0,
			Purity:      p.Purity,
			Image:       soldImage,
			Thumb:       soldThumb,
			Notes:       fmt.Sprintf("فروش فاکتور: %s | %s", invoice, p.Notes),
			CreatedAt:   now,
			SoldInvoice: invoice,
			SoldAt:      &now,
		}
		if err := s.products.Create(entry); err != nil {
			return nil, err
		}
		sold = entry
		s.writeMetadata(invoiceDir, entity.SaleMetadata{
			SoldID:      entry.ID,
			OriginalID:  p.ID,
			ProductCode: entry.ProductCode,
			Name:        entry.Name,
			Category:    entry.Category,
			BaseNumber:  entry.BaseNumber,
			Weight:      entry.Weight,
			Purity:      entry.Purity,
			Notes:       entry.Notes,
			Image:       soldImage,
			Thumb:       soldThumb,
			Invoice:     invoice,
			SoldAt:      now.UTC().Format(time.RFC3339),
		})
	} else {
		image := soldImage
		if image == "" {
			image = p.Image
		}
		thumb := soldThumb
		if thumb == "" {
			thumb = p.Thumb
		}
		if err := s.products.MarkSold(p.ID, invoice, image, thumb, now); err != nil {
			return nil, err
		}
		s.writeMetadata(invoiceDir, entity.SaleMetadata{
			OriginalID:  p.ID,
			ProductCode: p.ProductCode,
			Name:        p.Name,
			Category:    p.Category,
			BaseNumber:  p.BaseNumber,
			Weight:      p.Weight,
			Purity:      p.Purity,
			Notes:       p.Notes,
			Image:       image,
			Thumb:       thumb,
			Invoice:     invoice,
			SoldAt:      now.UTC().Format(time.RFC3339),
		})
		sold, err = s.products.GetByID(p.ID)
		if err != nil {
			return nil, err
		}
	}

	s.logActivity(sold.ID, statusInStock, statusSold, "invoice "+invoice)
	sold.FillJalali()
	return sold, nil
}

// RestoreProduct puts a sold product back into stock.
func (s *SaleService) RestoreProduct(id int64) (*entity.Product, error) {
	p, err := s.products.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	if !p.Sold() {
		return nil, ErrNotSold
	}
	if err := s.products.RestoreProduct(id); err != nil {
		return nil, err
	}
	s.logActivity(id, statusSold, statusInStock, "invoice "+p.SoldInvoice)

	restored, err := s.products.GetByID(id)
	if err != nil {
		return nil, err
	}
	restored.FillJalali()
	return restored, nil
}

// RestoreInvoice restores every product sold under one invoice. Returns
// the number of restored products.
func (s *SaleService) RestoreInvoice(invoice string) (int64, error) {
	n, err := s.products.RestoreInvoice(invoice)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		if err := s.activity.Save(&entity.ActivityLog{
			RelatedID:   invoice,
			RelatedType: "invoice",
			OldStatus:   statusSold,
			NewStatus:   statusInStock,
			ChangedBy:   "operator",
			Note:        fmt.Sprintf("%d products restored", n),
		}); err != nil {
			s.log.Warn().Err(err).Msg("activity log write failed")
		}
	}
	return n, nil
}

// SoldGrouped returns the most recent invoices with their products,
// newest invoice first.
func (s *SaleService) SoldGrouped() ([]entity.InvoiceGroup, error) {
	invoices, err := s.products.RecentInvoices(recentInvoiceLimit)
	if err != nil {
		return nil, err
	}
	products, err := s.products.ByInvoices(invoices, soldListLimit)
	if err != nil {
		return nil, err
	}
	return groupByInvoice(products), nil
}

// SearchSold filters sold products by invoice substring.
func (s *SaleService) SearchSold(invoiceQuery string) ([]entity.InvoiceGroup, error) {
	invoiceQuery = strings.TrimSpace(utils.NormalizeDigits(invoiceQuery))
	if invoiceQuery == "" {
		return s.SoldGrouped()
	}
	products, err := s.products.SoldByInvoiceLike(invoiceQuery, soldListLimit)
	if err != nil {
		return nil, err
	}
	return groupByInvoice(products), nil
}

// PurgeOldSold deletes sold products created before the rolling cutoff
// (months × 30 days), together with their image files and sidecars.
// Returns the number of purged products.
func (s *SaleService) PurgeOldSold(months int) (int, error) {
	if months <= 0 {
		months = 3
	}
	cutoff := time.Now().AddDate(0, 0, -months*30)
	old, err := s.products.OldSold(cutoff)
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, p := range old {
		if err := s.products.Delete(p.ID); err != nil {
			s.log.Warn().Err(err).Int64("id", p.ID).Msg("purge: delete failed")
			continue
		}
		s.media.Remove(p.Image, p.Thumb)
		s.removeMetadata(p.SoldInvoice, p.ID)
		s.logActivity(p.ID, statusSold, statusPurged, "invoice "+p.SoldInvoice)
		purged++
	}
	return purged, nil
}

func (s *SaleService) copyToSold(path, invoiceDir string) string {
	if path == "" {
		return ""
	}
	dest, err := s.media.CopyToSold(path, invoiceDir)
	if err != nil {
		s.log.Warn().Err(err).Str("path", path).Msg("copy to sold dir failed")
		return ""
	}
	return dest
}

func (s *SaleService) writeMetadata(invoiceDir string, meta entity.SaleMetadata) {
	if err := os.MkdirAll(invoiceDir, 0o755); err != nil {
		s.log.Warn().Err(err).Msg("sold dir create failed")
		return
	}
	id := meta.SoldID
	if id == 0 {
		id = meta.OriginalID
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		s.log.Warn().Err(err).Msg("metadata marshal failed")
		return
	}
	path := filepath.Join(invoiceDir, fmt.Sprintf("meta_%d.json", id))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.log.Warn().Err(err).Str("path", path).Msg("metadata write failed")
	}
}

// invoiceDir maps an invoice to its flat directory under sold/. Path
// separators are folded into dashes so an invoice like a Jalali date
// ("1403/06/03") stays a single directory and can never address a path
// outside the sold tree. The sidecar keeps the unmodified invoice.
func (s *SaleService) invoiceDir(invoice string) string {
	return filepath.Join(s.soldDir, invoiceDirName(invoice))
}

func invoiceDirName(invoice string) string {
	name := strings.NewReplacer("/", "-", "\\", "-").Replace(invoice)
	if name == "" || name == "." || name == ".." {
		name = "_" + name
	}
	return name
}

func (s *SaleService) removeMetadata(invoice string, id int64) {
	dir := s.invoiceDir(invoice)
	for _, name := range []string{
		fmt.Sprintf("meta_%d.json", id),
		fmt.Sprintf("metadata_%d.json", id),
	} {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
			s.log.Warn().Err(err).Msg("sidecar remove failed")
		}
	}
}

func (s *SaleService) logActivity(productID int64, oldStatus, newStatus, note string) {
	if err := s.activity.Save(&entity.ActivityLog{
		RelatedID:   fmt.Sprintf("%d", productID),
		RelatedType: "product",
		OldStatus:   oldStatus,
		NewStatus:   newStatus,
		ChangedBy:   "operator",
		Note:        note,
	}); err != nil {
		s.log.Warn().Err(err).Msg("activity log write failed")
	}
}

func groupByInvoice(products []entity.Product) []entity.InvoiceGroup {
	byInvoice := map[string][]entity.Product{}
	for _, p := range products {
		p.FillJalali()
		byInvoice[p.SoldInvoice] = append(byInvoice[p.SoldInvoice], p)
	}

	groups := make([]entity.InvoiceGroup, 0, len(byInvoice))
	for invoice, items := range byInvoice {
		g := entity.InvoiceGroup{Invoice: invoice, Products: items}
		if len(items) > 0 {
			if items[0].SoldAtFa != "" {
				g.SoldAt = items[0].SoldAtFa
			} else {
				g.SoldAt = items[0].CreatedAtFa
			}
		}
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Invoice > groups[j].Invoice
	})
	return groups
}
