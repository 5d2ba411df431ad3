package service

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	repo "goldshop/internal/repository/sqlite"
	utils "goldshop/pkg"

	"github.com/rs/zerolog"
)

// csvColumns is the fixed export column order.
var csvColumns = []string{
	"id", "product_code", "name", "category", "base_number",
	"weight", "quantity", "purity", "notes", "image",
	"sold_invoice", "created_at", "sold_at",
}

type ExportService struct {
	products   repo.ProductRepository
	exportsDir string
	log        zerolog.Logger
}

func NewExportService(products repo.ProductRepository, exportsDir string, log zerolog.Logger) *ExportService {
	return &ExportService{products: products, exportsDir: exportsDir, log: log}
}

// ExportCSV writes every product (sold included) into a timestamped CSV
// under exports/ and returns the file path. Timestamps appear as Jalali
// date-time strings.
func (s *ExportService) ExportCSV() (string, error) {
	products, err := s.products.List(true, 0, 0)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.exportsDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.exportsDir, fmt.Sprintf("all_products_%s.csv", time.Now().Format("20060102_150405")))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvColumns); err != nil {
		f.Close()
		return "", err
	}
	for _, p := range products {
		createdAt := ""
		if !p.CreatedAt.IsZero() {
			createdAt = utils.JalaliDateTime(p.CreatedAt)
		}
		soldAt := ""
		if p.SoldAt != nil {
			soldAt = utils.JalaliDateTime(*p.SoldAt)
		}
		record := []string{
			strconv.FormatInt(p.ID, 10),
			p.ProductCode,
			p.Name,
			p.Category,
			p.BaseNumber,
			strconv.FormatFloat(p.Weight, 'f', -1, 64),
			strconv.Itoa(p.Quantity),
			p.Purity,
			p.Notes,
			p.Image,
			p.SoldInvoice,
			createdAt,
			soldAt,
		}
		if err := w.Write(record); err != nil {
			f.Close()
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	s.log.Info().Str("path", path).Int("products", len(products)).Msg("csv export written")
	return path, nil
}
