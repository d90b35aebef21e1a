package domain

import "time"

// Dataset is the full input of one report: sellers, the product catalog and
// the purchase records to aggregate.
type Dataset struct {
	Sellers         []Seller         `json:"sellers"`
	Products        []Product        `json:"products"`
	PurchaseRecords []PurchaseRecord `json:"purchase_records"`
}

type DatasetFormat string

const (
	FormatJSON DatasetFormat = "json"
	FormatCSV  DatasetFormat = "csv"
)

// DatasetInfo describes a stored dataset without its rows.
type DatasetInfo struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Format       DatasetFormat `json:"format"`
	FileHash     string        `json:"file_hash"`
	SellerCount  int           `json:"seller_count"`
	ProductCount int           `json:"product_count"`
	RecordCount  int           `json:"record_count"`
	IngestedAt   time.Time     `json:"ingested_at"`
}
