package domain

import "time"

type TopProduct struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// ReportRow is one seller line of a performance report. Revenue and profit
// are rounded to cents; bonus is a fixed two-decimal string.
type ReportRow struct {
	SellerID    string       `json:"seller_id"`
	Name        string       `json:"name"`
	Revenue     float64      `json:"revenue"`
	Profit      float64      `json:"profit"`
	SalesCount  int          `json:"sales_count"`
	TopProducts []TopProduct `json:"top_products"`
	Bonus       string       `json:"bonus"`
}

type Report struct {
	ID              string      `json:"id"`
	DatasetID       string      `json:"dataset_id"`
	RevenueStrategy string      `json:"revenue_strategy"`
	BonusStrategy   string      `json:"bonus_strategy"`
	SellerCount     int         `json:"seller_count"`
	GeneratedAt     time.Time   `json:"generated_at"`
	Rows            []ReportRow `json:"rows,omitempty"`
}
