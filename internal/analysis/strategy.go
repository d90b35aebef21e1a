package analysis

import (
	"fmt"
	"sort"

	"github.com/wakala/sellerperf/internal/domain"
)

// SellerView is the read-only projection of accumulated seller statistics
// handed to a BonusFunc.
type SellerView struct {
	ID         string
	Name       string
	Revenue    float64
	Profit     float64
	SalesCount int
}

// RevenueFunc returns the revenue of one line item given its product.
type RevenueFunc func(item domain.LineItem, product domain.Product) float64

// BonusFunc returns the bonus for the seller at position rank (0-based) out
// of total sellers ordered by profit.
type BonusFunc func(rank, total int, seller SellerView) float64

type Strategies struct {
	Revenue RevenueFunc
	Bonus   BonusFunc
}

const (
	RevenueSimple     = "simple"
	BonusProfitRanked = "profit_rank"
)

// SimpleRevenue applies the line discount percentage to sale price times quantity.
func SimpleRevenue(item domain.LineItem, _ domain.Product) float64 {
	multiply := 1 - item.Discount/100
	return item.SalePrice * float64(item.Quantity) * multiply
}

// BonusByProfit pays 15% of profit to the leader, 10% to the next two, 5% to
// everyone else and nothing to the last seller. A lone seller is the leader.
func BonusByProfit(rank, total int, seller SellerView) float64 {
	switch {
	case rank == 0:
		return seller.Profit * 0.15
	case rank == 1 || rank == 2:
		return seller.Profit * 0.10
	case rank == total-1:
		return 0
	default:
		return seller.Profit * 0.05
	}
}

var (
	revenueStrategies = map[string]RevenueFunc{
		RevenueSimple: SimpleRevenue,
	}
	bonusStrategies = map[string]BonusFunc{
		BonusProfitRanked: BonusByProfit,
	}
)

// DefaultStrategies returns the reference revenue and bonus policies.
func DefaultStrategies() Strategies {
	return Strategies{Revenue: SimpleRevenue, Bonus: BonusByProfit}
}

// LookupStrategies resolves strategies registered under the given names.
func LookupStrategies(revenue, bonus string) (Strategies, error) {
	rev, ok := revenueStrategies[revenue]
	if !ok {
		return Strategies{}, fmt.Errorf("%w: unknown revenue strategy %q", ErrInvalidConfiguration, revenue)
	}
	b, ok := bonusStrategies[bonus]
	if !ok {
		return Strategies{}, fmt.Errorf("%w: unknown bonus strategy %q", ErrInvalidConfiguration, bonus)
	}
	return Strategies{Revenue: rev, Bonus: b}, nil
}

// StrategyNames lists registered strategy names, sorted.
func StrategyNames() (revenue []string, bonus []string) {
	for name := range revenueStrategies {
		revenue = append(revenue, name)
	}
	for name := range bonusStrategies {
		bonus = append(bonus, name)
	}
	sort.Strings(revenue)
	sort.Strings(bonus)
	return revenue, bonus
}
