package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID   int64  `json:"categoryId"`
	Name string `json:"name"`
}

type Product struct {
	ID              int64           `json:"productId"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	QuantityInStock int             `json:"quantityInStock"`
	CategoryID      int64           `json:"categoryId"`
	CategoryName    string          `json:"categoryName,omitempty"`
	MainImageURL    string          `json:"mainImageUrl"`
}

func (p *Product) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	switch {
	case p.Name == "":
		return Invalid("product name is required")
	case p.Price.IsNegative():
		return Invalid("price must not be negative")
	case p.QuantityInStock < 0:
		return Invalid("quantityInStock must not be negative")
	case p.CategoryID <= 0:
		return Invalid("categoryId is required")
	}
	return nil
}
