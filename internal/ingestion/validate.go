package ingestion

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/wakala/sellerperf/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateDataset applies the row-level structural rules declared on the
// domain types. Cross references between rows are left to the analysis.
func validateDataset(ds *domain.Dataset) error {
	for i, s := range ds.Sellers {
		if err := validate.Struct(s); err != nil {
			return fmt.Errorf("seller %d: %w", i, err)
		}
	}
	for i, p := range ds.Products {
		if err := validate.Struct(p); err != nil {
			return fmt.Errorf("product %d: %w", i, err)
		}
	}
	for i, rec := range ds.PurchaseRecords {
		if err := validate.Struct(rec); err != nil {
			return fmt.Errorf("purchase record %d: %w", i, err)
		}
	}
	return nil
}
