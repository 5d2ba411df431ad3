package entity

// Base maps a (category, base_number) pair to its representative group
// photograph. Unique per pair.
type Base struct {
	ID         int64  `db:"id" json:"id"`
	Category   string `db:"category" json:"category"`
	BaseNumber string `db:"base_number" json:"base_number"`
	Image      string `db:"image" json:"image"`
	Thumb      string `db:"thumb" json:"thumb,omitempty"`
}

// BaseGroup is one row of the per-category group listing: a base number
// together with how many unsold products it holds.
type BaseGroup struct {
	BaseNumber string `json:"base_number"`
	Count      int    `json:"count"`
	Image      string `json:"image,omitempty"`
}
