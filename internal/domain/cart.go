package domain

import "github.com/shopspring/decimal"

// MaxLineQuantity bounds a single cart line and order item.
const MaxLineQuantity = 10000

// CartLine is a cart row joined with the product's current price.
type CartLine struct {
	ProductID    int64           `json:"productId"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	MainImageURL string          `json:"mainImageUrl"`
}
