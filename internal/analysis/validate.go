package analysis

import (
	"fmt"

	"github.com/wakala/sellerperf/internal/domain"
)

// Validate checks the structural preconditions of a report run. The dataset
// is checked before the strategies.
func Validate(ds *domain.Dataset, s Strategies) error {
	if ds == nil {
		return fmt.Errorf("%w: dataset is missing", ErrInvalidInput)
	}
	if len(ds.Sellers) == 0 {
		return fmt.Errorf("%w: sellers must be a non-empty list", ErrInvalidInput)
	}
	if s.Revenue == nil {
		return fmt.Errorf("%w: revenue strategy is required", ErrInvalidConfiguration)
	}
	if s.Bonus == nil {
		return fmt.Errorf("%w: bonus strategy is required", ErrInvalidConfiguration)
	}
	return nil
}
