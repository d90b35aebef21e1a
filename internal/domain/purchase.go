package domain

// PurchaseRecord is a single receipt attributed to one seller.
type PurchaseRecord struct {
	ReceiptID     string     `json:"receipt_id"`
	Date          string     `json:"date,omitempty"`
	SellerID      string     `json:"seller_id" validate:"required"`
	CustomerID    string     `json:"customer_id,omitempty"`
	Items         []LineItem `json:"items" validate:"dive"`
	TotalAmount   float64    `json:"total_amount" validate:"gte=0"`
	TotalDiscount float64    `json:"total_discount,omitempty"`
}

// LineItem is one product line of a receipt. Discount is a percentage.
type LineItem struct {
	SKU       string  `json:"sku" validate:"required"`
	Quantity  int     `json:"quantity" validate:"gt=0"`
	SalePrice float64 `json:"sale_price" validate:"gte=0"`
	Discount  float64 `json:"discount" validate:"gte=0,lte=100"`
}
