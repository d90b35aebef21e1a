package domain

type Product struct {
	SKU           string  `json:"sku" validate:"required"`
	Name          string  `json:"name,omitempty"`
	Category      string  `json:"category,omitempty"`
	PurchasePrice float64 `json:"purchase_price" validate:"gte=0"`
	SalePrice     float64 `json:"sale_price,omitempty" validate:"gte=0"`
}
