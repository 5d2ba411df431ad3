package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	entity "goldshop/internal/domain"
)

const productColumns = `id, product_code, name, category, base_number, weight, quantity, purity, image, thumb, notes, created_at, sold_invoice, sold_at`

// unsold filters out sold rows the way the original schema does: a product
// is unsold while sold_invoice is NULL or empty.
const unsold = `COALESCE(sold_invoice, '') = ''`

type ProductRepository interface {
	Create(p *entity.Product) error
	Update(p *entity.Product) error
	Delete(id int64) error
	GetByID(id int64) (*entity.Product, error)
	GetByCode(code string) (*entity.Product, error)
	List(includeSold bool, limit, offset int) ([]entity.Product, error)
	Search(q string, includeSold bool, limit int) ([]entity.Product, error)
	ByCategoryAndBase(category, baseNumber string, limit int) ([]entity.Product, error)
	Count() (int, error)
	CategoryCounts() ([]entity.CategoryCount, error)
	BasesByCategory(category string) ([]entity.BaseGroup, error)
	WeightByCategory() ([]entity.WeightSummary, error)
	TotalWeight() (*entity.WeightTotal, error)
	RecentInvoices(limit int) ([]string, error)
	ByInvoices(invoices []string, limit int) ([]entity.Product, error)
	SoldByInvoiceLike(q string, limit int) ([]entity.Product, error)
	Codes() ([]string, error)
	MarkSold(id int64, invoice, image, thumb string, soldAt time.Time) error
	RestoreProduct(id int64) error
	RestoreInvoice(invoice string) (int64, error)
	OldSold(cutoff time.Time) ([]entity.Product, error)
	WipeAll() error
}

type productRepository struct {
	db *Database
}

func NewProductRepository(db *Database) ProductRepository {
	return &productRepository{db: db}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*entity.Product, error) {
	var p entity.Product
	var code, purity, image, thumb, notes, createdAt, soldInvoice, soldAt sql.NullString
	err := row.Scan(
		&p.ID, &code, &p.Name, &p.Category, &p.BaseNumber,
		&p.Weight, &p.Quantity, &purity, &image, &thumb,
		&notes, &createdAt, &soldInvoice, &soldAt,
	)
	if err != nil {
		return nil, err
	}
	p.ProductCode = code.String
	p.Purity = purity.String
	p.Image = image.String
	p.Thumb = thumb.String
	p.Notes = notes.String
	p.SoldInvoice = soldInvoice.String
	if createdAt.Valid && createdAt.String != "" {
		p.CreatedAt = parseTime(createdAt.String)
	}
	if soldAt.Valid && soldAt.String != "" {
		t := parseTime(soldAt.String)
		if !t.IsZero() {
			p.SoldAt = &t
		}
	}
	return &p, nil
}

func collectProducts(rows *sql.Rows) ([]entity.Product, error) {
	defer rows.Close()
	var products []entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func (r *productRepository) Create(p *entity.Product) error {
	var soldAt interface{}
	if p.SoldAt != nil {
		soldAt = formatTime(*p.SoldAt)
	}
	res, err := r.db.Conn().Exec(`
		INSERT INTO products
		(product_code, name, category, base_number, weight, quantity, purity, image, thumb, notes, created_at, sold_invoice, sold_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullable(p.ProductCode), p.Name, p.Category, p.BaseNumber,
		p.Weight, p.Quantity, nullable(p.Purity), nullable(p.Image),
		nullable(p.Thumb), nullable(p.Notes), formatTime(p.CreatedAt),
		nullable(p.SoldInvoice), soldAt,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (r *productRepository) Update(p *entity.Product) error {
	var soldAt interface{}
	if p.SoldAt != nil {
		soldAt = formatTime(*p.SoldAt)
	}
	_, err := r.db.Conn().Exec(`
		UPDATE products SET
			product_code=?, name=?, category=?, base_number=?, weight=?, quantity=?,
			purity=?, image=?, thumb=?, notes=?, created_at=?, sold_invoice=?, sold_at=?
		WHERE id=?`,
		nullable(p.ProductCode), p.Name, p.Category, p.BaseNumber,
		p.Weight, p.Quantity, nullable(p.Purity), nullable(p.Image),
		nullable(p.Thumb), nullable(p.Notes), formatTime(p.CreatedAt),
		nullable(p.SoldInvoice), soldAt, p.ID,
	)
	return err
}

func (r *productRepository) Delete(id int64) error {
	_, err := r.db.Conn().Exec(`DELETE FROM products WHERE id=?`, id)
	return err
}

func (r *productRepository) GetByID(id int64) (*entity.Product, error) {
	row := r.db.Conn().QueryRow(`SELECT `+productColumns+` FROM products WHERE id=?`, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *productRepository) GetByCode(code string) (*entity.Product, error) {
	row := r.db.Conn().QueryRow(`SELECT `+productColumns+` FROM products WHERE product_code=?`, code)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *productRepository) List(includeSold bool, limit, offset int) ([]entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	if !includeSold {
		query += ` WHERE ` + unsold
	}
	query += ` ORDER BY id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}
	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// Search matches name, base number, category or product code, ranking
// product-code prefix hits first, then name prefix hits.
func (r *productRepository) Search(q string, includeSold bool, limit int) ([]entity.Product, error) {
	like := "%" + q + "%"
	prefix := q + "%"

	var b strings.Builder
	b.WriteString(`SELECT ` + productColumns + ` FROM products
		WHERE (name LIKE ? OR base_number LIKE ? OR category LIKE ? OR product_code LIKE ?)`)
	if !includeSold {
		b.WriteString(` AND ` + unsold)
	}
	b.WriteString(`
		ORDER BY
			CASE WHEN product_code LIKE ? THEN 1
			     WHEN name LIKE ? THEN 2
			     ELSE 3
			END,
			id DESC
		LIMIT ?`)

	rows, err := r.db.Conn().Query(b.String(), like, like, like, like, prefix, prefix, limit)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *productRepository) ByCategoryAndBase(category, baseNumber string, limit int) ([]entity.Product, error) {
	rows, err := r.db.Conn().Query(`
		SELECT `+productColumns+` FROM products
		WHERE category=? AND base_number=? AND `+unsold+`
		ORDER BY id DESC
		LIMIT ?`,
		strings.TrimSpace(category), baseNumber, limit)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *productRepository) Count() (int, error) {
	var n int
	err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM products WHERE ` + unsold).Scan(&n)
	return n, err
}

func (r *productRepository) CategoryCounts() ([]entity.CategoryCount, error) {
	rows, err := r.db.Conn().Query(`
		SELECT category, COUNT(*) FROM products
		WHERE ` + unsold + `
		GROUP BY category
		ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var counts []entity.CategoryCount
	for rows.Next() {
		var c entity.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *productRepository) BasesByCategory(category string) ([]entity.BaseGroup, error) {
	rows, err := r.db.Conn().Query(`
		SELECT COALESCE(base_number, '-') AS b, COUNT(*) AS cnt
		FROM products
		WHERE category=? AND `+unsold+`
		GROUP BY b
		ORDER BY cnt DESC`,
		strings.TrimSpace(category))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var groups []entity.BaseGroup
	for rows.Next() {
		var g entity.BaseGroup
		if err := rows.Scan(&g.BaseNumber, &g.Count); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *productRepository) WeightByCategory() ([]entity.WeightSummary, error) {
	rows, err := r.db.Conn().Query(`
		SELECT category, COALESCE(SUM(weight * quantity), 0), COUNT(*)
		FROM products
		WHERE ` + unsold + `
		GROUP BY category
		ORDER BY SUM(weight * quantity) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var summaries []entity.WeightSummary
	for rows.Next() {
		var s entity.WeightSummary
		if err := rows.Scan(&s.Category, &s.TotalWeight, &s.ProductCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *productRepository) TotalWeight() (*entity.WeightTotal, error) {
	var t entity.WeightTotal
	err := r.db.Conn().QueryRow(`
		SELECT COALESCE(SUM(weight * quantity), 0), COUNT(*)
		FROM products
		WHERE ` + unsold).Scan(&t.TotalWeight, &t.TotalCount)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *productRepository) RecentInvoices(limit int) ([]string, error) {
	rows, err := r.db.Conn().Query(`
		SELECT sold_invoice, MAX(COALESCE(sold_at, created_at)) AS latest
		FROM products
		WHERE sold_invoice IS NOT NULL AND sold_invoice != ''
		GROUP BY sold_invoice
		ORDER BY latest DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var invoices []string
	for rows.Next() {
		var invoice string
		var latest sql.NullString
		if err := rows.Scan(&invoice, &latest); err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}
	return invoices, rows.Err()
}

func (r *productRepository) ByInvoices(invoices []string, limit int) ([]entity.Product, error) {
	if len(invoices) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(invoices)), ",")
	args := make([]interface{}, 0, len(invoices)+1)
	for _, inv := range invoices {
		args = append(args, inv)
	}
	args = append(args, limit)

	rows, err := r.db.Conn().Query(fmt.Sprintf(`
		SELECT %s FROM products
		WHERE sold_invoice IN (%s)
		ORDER BY sold_invoice DESC, id DESC
		LIMIT ?`, productColumns, placeholders), args...)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *productRepository) SoldByInvoiceLike(q string, limit int) ([]entity.Product, error) {
	rows, err := r.db.Conn().Query(`
		SELECT `+productColumns+` FROM products
		WHERE sold_invoice IS NOT NULL AND sold_invoice != '' AND sold_invoice LIKE ?
		ORDER BY sold_invoice DESC, id DESC
		LIMIT ?`,
		"%"+q+"%", limit)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *productRepository) Codes() ([]string, error) {
	rows, err := r.db.Conn().Query(`SELECT product_code FROM products WHERE product_code IS NOT NULL AND product_code != ''`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// MarkSold flags a product as sold: quantity drops to zero, the invoice and
// sale timestamp are set, and image paths may be swapped for the copies
// placed under the invoice's sold directory.
func (r *productRepository) MarkSold(id int64, invoice, image, thumb string, soldAt time.Time) error {
	_, err := r.db.Conn().Exec(`
		UPDATE products SET sold_invoice=?, image=?, thumb=?, quantity=0, sold_at=?
		WHERE id=?`,
		invoice, nullable(image), nullable(thumb), formatTime(soldAt), id)
	return err
}

func (r *productRepository) RestoreProduct(id int64) error {
	_, err := r.db.Conn().Exec(`
		UPDATE products SET sold_invoice=NULL, quantity=1, sold_at=NULL
		WHERE id=?`, id)
	return err
}

func (r *productRepository) RestoreInvoice(invoice string) (int64, error) {
	res, err := r.db.Conn().Exec(`
		UPDATE products SET sold_invoice=NULL, quantity=1, sold_at=NULL
		WHERE sold_invoice=?`, invoice)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// OldSold returns sold products created before the cutoff, the purge
// candidates.
func (r *productRepository) OldSold(cutoff time.Time) ([]entity.Product, error) {
	rows, err := r.db.Conn().Query(`
		SELECT `+productColumns+` FROM products
		WHERE sold_invoice IS NOT NULL AND sold_invoice != ''
		AND created_at < ?`,
		formatTime(cutoff))
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *productRepository) WipeAll() error {
	conn := r.db.Conn()
	for _, stmt := range []string{
		`DELETE FROM products`,
		`DELETE FROM bases`,
		`DELETE FROM activity_log`,
	} {
		if _, err := conn.Exec(stmt); err != nil {
			return err
		}
	}
	_, err := conn.Exec(`VACUUM`)
	return err
}
