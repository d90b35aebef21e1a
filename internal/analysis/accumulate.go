package analysis

import "github.com/wakala/sellerperf/internal/domain"

// sellerStat accumulates one seller's figures during a run.
type sellerStat struct {
	id         string
	name       string
	revenue    float64
	profit     float64
	salesCount int

	// skus keeps first-sold order so quantity ties rank stably.
	skus []string
	sold map[string]int
}

func newSellerStat(s domain.Seller) *sellerStat {
	return &sellerStat{
		id:   s.ID,
		name: s.FullName(),
		sold: make(map[string]int),
	}
}

func (st *sellerStat) addSold(sku string, qty int) {
	if _, ok := st.sold[sku]; !ok {
		st.skus = append(st.skus, sku)
		st.sold[sku] = 0
	}
	st.sold[sku] += qty
}

func (st *sellerStat) view() SellerView {
	return SellerView{
		ID:         st.id,
		Name:       st.name,
		Revenue:    st.revenue,
		Profit:     st.profit,
		SalesCount: st.salesCount,
	}
}

// accumulate makes one pass over the purchase records and returns a stat per
// seller in input order. A later seller or product with a duplicate key
// replaces the earlier one in the index.
func accumulate(ds *domain.Dataset, revenue RevenueFunc) ([]*sellerStat, error) {
	stats := make([]*sellerStat, 0, len(ds.Sellers))
	sellerIndex := make(map[string]*sellerStat, len(ds.Sellers))
	for _, s := range ds.Sellers {
		st := newSellerStat(s)
		stats = append(stats, st)
		sellerIndex[s.ID] = st
	}

	productIndex := make(map[string]domain.Product, len(ds.Products))
	for _, p := range ds.Products {
		productIndex[p.SKU] = p
	}

	for i, rec := range ds.PurchaseRecords {
		seller, ok := sellerIndex[rec.SellerID]
		if !ok {
			return nil, &ReferenceError{Kind: RefSeller, Key: rec.SellerID, Record: i}
		}
		seller.salesCount++
		seller.revenue += rec.TotalAmount

		for _, item := range rec.Items {
			product, ok := productIndex[item.SKU]
			if !ok {
				return nil, &ReferenceError{Kind: RefProduct, Key: item.SKU, Record: i}
			}
			cost := product.PurchasePrice * float64(item.Quantity)
			seller.profit += revenue(item, product) - cost
			seller.addSold(item.SKU, item.Quantity)
		}
	}

	return stats, nil
}
