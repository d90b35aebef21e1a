package ingestion

import (
	"encoding/json"
	"fmt"

	"github.com/wakala/sellerperf/internal/domain"
)

// datasetFile is the JSON document exported by the sales system. Customers
// are carried by the export but play no part in the report.
type datasetFile struct {
	Sellers         []domain.Seller         `json:"sellers"`
	Products        []domain.Product        `json:"products"`
	Customers       json.RawMessage         `json:"customers,omitempty"`
	PurchaseRecords []domain.PurchaseRecord `json:"purchase_records"`
}

// ParseDatasetJSON parses a full dataset document.
func ParseDatasetJSON(data []byte) (*domain.Dataset, error) {
	var file datasetFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	ds := &domain.Dataset{
		Sellers:         file.Sellers,
		Products:        file.Products,
		PurchaseRecords: file.PurchaseRecords,
	}
	if err := validateDataset(ds); err != nil {
		return nil, err
	}
	return ds, nil
}
