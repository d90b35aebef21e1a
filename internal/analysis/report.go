// Package analysis computes seller performance reports from a sales dataset.
//
// A run validates its input, accumulates revenue, profit, sales count and
// per-SKU quantities for every seller in one pass over the purchase records,
// then ranks sellers by profit and assigns bonuses. Runs are pure: nothing is
// retained between calls and no I/O is performed.
package analysis

import "github.com/wakala/sellerperf/internal/domain"

// ProduceReport returns one row per seller ordered by profit descending.
// Any error aborts the run; no partial report is returned.
func ProduceReport(ds *domain.Dataset, s Strategies) ([]domain.ReportRow, error) {
	if err := Validate(ds, s); err != nil {
		return nil, err
	}

	stats, err := accumulate(ds, s.Revenue)
	if err != nil {
		return nil, err
	}

	return rank(stats, s.Bonus)
}
