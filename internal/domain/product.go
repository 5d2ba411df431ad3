package entity

import (
	"time"

	utils "goldshop/pkg"
)

// Product is a single inventory item. A product is sold iff SoldInvoice
// is non-empty; selling forces Quantity to zero and sets SoldAt.
type Product struct {
	ID          int64      `db:"id" json:"id"`
	ProductCode string     `db:"product_code" json:"product_code"`
	Name        string     `db:"name" json:"name"`
	Category    string     `db:"category" json:"category"`
	BaseNumber  string     `db:"base_number" json:"base_number"`
	Weight      float64    `db:"weight" json:"weight"`
	Quantity    int        `db:"quantity" json:"quantity"`
	Purity      string     `db:"purity" json:"purity,omitempty"`
	Image       string     `db:"image" json:"image,omitempty"`
	Thumb       string     `db:"thumb" json:"thumb,omitempty"`
	Notes       string     `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	SoldInvoice string     `db:"sold_invoice" json:"sold_invoice,omitempty"`
	SoldAt      *time.Time `db:"sold_at" json:"sold_at,omitempty"`

	// Jalali display strings, derived, not stored.
	CreatedAtFa string `db:"-" json:"created_at_fa,omitempty"`
	SoldAtFa    string `db:"-" json:"sold_at_fa,omitempty"`
}

func (p *Product) Sold() bool {
	return p.SoldInvoice != ""
}

// FillJalali populates the Persian-calendar display fields.
func (p *Product) FillJalali() {
	if !p.CreatedAt.IsZero() {
		p.CreatedAtFa = utils.JalaliDateTime(p.CreatedAt)
	}
	if p.SoldAt != nil {
		p.SoldAtFa = utils.JalaliDateTime(*p.SoldAt)
	}
}

// CreateProductInput is the single-intake form; every new product starts
// at quantity 1.
type CreateProductInput struct {
	Name       string  `form:"name" binding:"required"`
	Category   string  `form:"category"`
	BaseNumber string  `form:"base_number"`
	Weight     float64 `form:"weight"`
	Purity     string  `form:"purity"`
	Notes      string  `form:"notes"`
}

type UpdateProductInput struct {
	Name       string  `json:"name" binding:"required"`
	Category   string  `json:"category"`
	BaseNumber string  `json:"base_number"`
	Weight     float64 `json:"weight"`
	Quantity   int     `json:"quantity"`
	Purity     string  `json:"purity"`
	Notes      string  `json:"notes"`
}

// BatchItem is one row of a batch intake; every saved row gets quantity 1
// and its own generated product code.
type BatchItem struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Purity string  `json:"purity"`
	Notes  string  `json:"notes"`
	Image  string  `json:"image"`
	Thumb  string  `json:"thumb"`
}

type BatchCreateInput struct {
	Category   string      `json:"category" binding:"required"`
	BaseNumber string      `json:"base_number" binding:"required"`
	Items      []BatchItem `json:"items" binding:"required,min=1"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}
