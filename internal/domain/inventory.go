package entity

// WeightSummary is the per-category weight inventory row:
// SUM(weight * quantity) over unsold products.
type WeightSummary struct {
	Category     string  `json:"category"`
	TotalWeight  float64 `json:"total_weight"`
	ProductCount int     `json:"product_count"`
}

type WeightTotal struct {
	TotalWeight float64 `json:"total_weight"`
	TotalCount  int     `json:"total_count"`
}
