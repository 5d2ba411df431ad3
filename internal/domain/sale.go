package entity

import "time"

type SellInput struct {
	// Invoice groups the sale; defaults to today's Jalali date when empty.
	Invoice string `json:"invoice"`
}

// SaleMetadata is the JSON sidecar written to sold/<invoice>/meta_<id>.json.
type SaleMetadata struct {
	SoldID      int64   `json:"sold_id,omitempty"`
	OriginalID  int64   `json:"original_id"`
	ProductCode string  `json:"product_code"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	BaseNumber  string  `json:"base_number"`
	Weight      float64 `json:"weight"`
	Purity      string  `json:"purity,omitempty"`
	Notes       string  `json:"notes,omitempty"`
	Image       string  `json:"image,omitempty"`
	Thumb       string  `json:"thumb,omitempty"`
	Invoice     string  `json:"invoice"`
	SoldAt      string  `json:"sold_at"`
}

// InvoiceGroup is one invoice with its sold products, newest invoice first
// in listings.
type InvoiceGroup struct {
	Invoice  string    `json:"invoice"`
	SoldAt   string    `json:"sold_at,omitempty"`
	Products []Product `json:"products"`
}

type StatBucket struct {
	Count  int     `json:"count"`
	Weight float64 `json:"weight"`
}

type InvoiceTotal struct {
	Invoice string  `json:"invoice"`
	Count   int     `json:"count"`
	Weight  float64 `json:"weight"`
}

// SalesStats aggregates sold items over calendar windows ending now.
type SalesStats struct {
	Today    StatBucket     `json:"today"`
	Week     StatBucket     `json:"week"`
	Month    StatBucket     `json:"month"`
	Invoices []InvoiceTotal `json:"invoices"`
}

// SaleRecord is the flattened view used by stats aggregation, merged from
// DB rows and sidecar files.
type SaleRecord struct {
	Invoice string
	SoldAt  *time.Time
	Weight  float64
	SoldID  int64
	Name    string
}
