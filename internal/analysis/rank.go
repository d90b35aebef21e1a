package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/wakala/sellerperf/internal/domain"
)

// TopProductsLimit caps the number of products listed per seller.
const TopProductsLimit = 10

// rank orders stats by profit descending, keeping input order on ties, and
// projects each seller into a report row. Non-finite figures abort the run.
func rank(stats []*sellerStat, bonus BonusFunc) ([]domain.ReportRow, error) {
	for _, st := range stats {
		if err := checkFinite(st.id, "revenue", st.revenue); err != nil {
			return nil, err
		}
		if err := checkFinite(st.id, "profit", st.profit); err != nil {
			return nil, err
		}
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].profit > stats[j].profit
	})

	total := len(stats)
	rows := make([]domain.ReportRow, 0, total)
	for i, st := range stats {
		b := bonus(i, total, st.view())
		if err := checkFinite(st.id, "bonus", b); err != nil {
			return nil, err
		}
		rows = append(rows, domain.ReportRow{
			SellerID:    st.id,
			Name:        st.name,
			Revenue:     RoundMoney(st.revenue),
			Profit:      RoundMoney(st.profit),
			SalesCount:  st.salesCount,
			TopProducts: topProducts(st, TopProductsLimit),
			Bonus:       FormatMoney(b),
		})
	}
	return rows, nil
}

func checkFinite(sellerID, field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: seller %s %s is not a finite number", ErrInvalidInput, sellerID, field)
	}
	return nil
}

func topProducts(st *sellerStat, limit int) []domain.TopProduct {
	top := make([]domain.TopProduct, 0, len(st.skus))
	for _, sku := range st.skus {
		top = append(top, domain.TopProduct{SKU: sku, Quantity: st.sold[sku]})
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Quantity > top[j].Quantity
	})
	if len(top) > limit {
		top = top[:limit]
	}
	return top
}

// RoundMoney rounds to two decimals, half away from zero.
func RoundMoney(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// FormatMoney renders v with exactly two decimals.
func FormatMoney(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
