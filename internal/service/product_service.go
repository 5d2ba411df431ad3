package service

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	entity "goldshop/internal/domain"
	"goldshop/internal/media"
	repo "goldshop/internal/repository/sqlite"

	"github.com/rs/zerolog"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrNameRequired      = errors.New("product name is required")
	ErrBaseImageRequired = errors.New("group photo must be set before batch intake")
	ErrEmptyBatch        = errors.New("batch contains no items")
)

const (
	defaultCategory   = "عمومی"
	defaultBaseNumber = "-"
)

type ProductService struct {
	products    repo.ProductRepository
	bases       repo.BaseRepository
	media       *media.Store
	prefixFor   func(category string) string
	searchLimit int
	log         zerolog.Logger
}

func NewProductService(products repo.ProductRepository, bases repo.BaseRepository, store *media.Store, prefixFor func(string) string, searchLimit int, log zerolog.Logger) *ProductService {
	if searchLimit <= 0 {
		searchLimit = 100
	}
	return &ProductService{
		products:    products,
		bases:       bases,
		media:       store,
		prefixFor:   prefixFor,
		searchLimit: searchLimit,
		log:         log,
	}
}

// NextCode generates the next human-readable product code for a category:
// the category prefix followed by max existing sequence + 1, re-checked
// against the table so concurrent intakes cannot collide.
func (s *ProductService) NextCode(category string) (string, error) {
	prefix := s.prefixFor(category)
	codes, err := s.products.Codes()
	if err != nil {
		return "", err
	}

	pattern := regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(prefix) + `(\d+)$`)
	maxSeq := 0
	for _, code := range codes {
		m := pattern.FindStringSubmatch(strings.TrimSpace(code))
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > maxSeq {
			maxSeq = n
		}
	}

	seq := maxSeq + 1
	code := fmt.Sprintf("%s%d", prefix, seq)
	for {
		existing, err := s.products.GetByCode(code)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return code, nil
		}
		seq++
		code = fmt.Sprintf("%s%d", prefix, seq)
	}
}

func normalizeIntake(category, baseNumber string) (string, string) {
	category = strings.TrimSpace(category)
	if category == "" {
		category = defaultCategory
	}
	baseNumber = strings.TrimSpace(baseNumber)
	if baseNumber == "" {
		baseNumber = defaultBaseNumber
	}
	return category, baseNumber
}

// Create registers a single product with a generated code and quantity 1.
func (s *ProductService) Create(input entity.CreateProductInput, imagePath, thumbPath string) (*entity.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrNameRequired
	}
	category, baseNumber := normalizeIntake(input.Category, input.BaseNumber)

	code, err := s.NextCode(category)
	if err != nil {
		return nil, err
	}
	p := &entity.Product{
		ProductCode: code,
		Name:        strings.TrimSpace(input.Name),
		Category:    category,
		BaseNumber:  baseNumber,
		Weight:      input.Weight,
		Quantity:    1,
		Purity:      strings.TrimSpace(input.Purity),
		Image:       imagePath,
		Thumb:       thumbPath,
		Notes:       strings.TrimSpace(input.Notes),
		CreatedAt:   time.Now(),
	}
	if err := s.products.Create(p); err != nil {
		return nil, err
	}
	p.FillJalali()
	return p, nil
}

// CreateBatch registers several items sharing a category and base number.
// The group photo for the pair must exist first, mirroring the intake flow
// where the shared photograph is taken before the individual items.
func (s *ProductService) CreateBatch(input entity.BatchCreateInput) ([]entity.Product, error) {
	if len(input.Items) == 0 {
		return nil, ErrEmptyBatch
	}
	category, baseNumber := normalizeIntake(input.Category, input.BaseNumber)

	base, err := s.bases.Get(category, baseNumber)
	if err != nil {
		return nil, err
	}
	if base == nil {
		return nil, ErrBaseImageRequired
	}

	saved := make([]entity.Product, 0, len(input.Items))
	for i, item := range input.Items {
		code, err := s.NextCode(category)
		if err != nil {
			return saved, err
		}
		name := strings.TrimSpace(item.Name)
		if name == "" {
			name = fmt.Sprintf("محصول %d", i+1)
		}
		p := &entity.Product{
			ProductCode: code,
			Name:        name,
			Category:    category,
			BaseNumber:  baseNumber,
			Weight:      item.Weight,
			Quantity:    1,
			Purity:      strings.TrimSpace(item.Purity),
			Image:       item.Image,
			Thumb:       item.Thumb,
			Notes:       strings.TrimSpace(item.Notes),
			CreatedAt:   time.Now(),
		}
		if err := s.products.Create(p); err != nil {
			return saved, err
		}
		p.FillJalali()
		saved = append(saved, *p)
	}
	return saved, nil
}

// Update rewrites the descriptive fields. The product code and creation
// timestamp survive edits.
func (s *ProductService) Update(id int64, input entity.UpdateProductInput) (*entity.Product, error) {
	existing, err := s.products.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrProductNotFound
	}
	category, baseNumber := normalizeIntake(input.Category, input.BaseNumber)

	existing.Name = strings.TrimSpace(input.Name)
	existing.Category = category
	existing.BaseNumber = baseNumber
	existing.Weight = input.Weight
	existing.Quantity = input.Quantity
	existing.Purity = strings.TrimSpace(input.Purity)
	existing.Notes = strings.TrimSpace(input.Notes)

	if err := s.products.Update(existing); err != nil {
		return nil, err
	}
	existing.FillJalali()
	return existing, nil
}

// Delete removes the product row and its image files.
func (s *ProductService) Delete(id int64) error {
	p, err := s.products.GetByID(id)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrProductNotFound
	}
	if err := s.products.Delete(id); err != nil {
		return err
	}
	s.media.Remove(p.Image, p.Thumb)
	return nil
}

func (s *ProductService) Get(id int64) (*entity.Product, error) {
	p, err := s.products.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	p.FillJalali()
	return p, nil
}

func (s *ProductService) GetByCode(code string) (*entity.Product, error) {
	p, err := s.products.GetByCode(strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	p.FillJalali()
	return p, nil
}

func (s *ProductService) List(includeSold bool, limit, offset int) ([]entity.Product, error) {
	if limit <= 0 || limit > s.searchLimit {
		limit = s.searchLimit
	}
	products, err := s.products.List(includeSold, limit, offset)
	if err != nil {
		return nil, err
	}
	fillJalali(products)
	return products, nil
}

// Search runs the ranked LIKE search; an exact product-code hit
// short-circuits to just that product.
func (s *ProductService) Search(q string, includeSold bool) ([]entity.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return s.List(includeSold, s.searchLimit, 0)
	}
	if exact, err := s.products.GetByCode(q); err != nil {
		return nil, err
	} else if exact != nil {
		exact.FillJalali()
		return []entity.Product{*exact}, nil
	}
	products, err := s.products.Search(q, includeSold, s.searchLimit)
	if err != nil {
		return nil, err
	}
	fillJalali(products)
	return products, nil
}

func (s *ProductService) ByCategoryAndBase(category, baseNumber string) ([]entity.Product, error) {
	products, err := s.products.ByCategoryAndBase(category, baseNumber, s.searchLimit)
	if err != nil {
		return nil, err
	}
	fillJalali(products)
	return products, nil
}

// BasesByCategory lists the base numbers of a category with their unsold
// item counts and group photos.
func (s *ProductService) BasesByCategory(category string) ([]entity.BaseGroup, error) {
	groups, err := s.products.BasesByCategory(category)
	if err != nil {
		return nil, err
	}
	for i := range groups {
		base, err := s.bases.Get(category, groups[i].BaseNumber)
		if err != nil {
			return nil, err
		}
		if base != nil {
			groups[i].Image = base.Image
		}
	}
	return groups, nil
}

// SetBaseImage stores the group photograph for a (category, base_number)
// pair, replacing any previous one.
func (s *ProductService) SetBaseImage(category, baseNumber string, src io.Reader, origName string) (*entity.Base, error) {
	category, baseNumber = normalizeIntake(category, baseNumber)
	imagePath, thumbPath, err := s.media.SaveBaseImage(src, origName)
	if err != nil {
		return nil, err
	}
	if err := s.bases.SetImage(category, baseNumber, imagePath, thumbPath); err != nil {
		return nil, err
	}
	return s.bases.Get(category, baseNumber)
}

func (s *ProductService) GetBase(category, baseNumber string) (*entity.Base, error) {
	return s.bases.Get(category, baseNumber)
}

// SaveUpload stores an uploaded photo and returns the image/thumb paths.
func (s *ProductService) SaveUpload(src io.Reader, origName string) (string, string, error) {
	return s.media.SaveImage(src, origName)
}

func fillJalali(products []entity.Product) {
	for i := range products {
		products[i].FillJalali()
	}
}
