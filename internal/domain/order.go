package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MaxOrderTotal is the largest total the orders table can hold.
var MaxOrderTotal = decimal.RequireFromString("9999999999.99")

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusPaid      OrderStatus = "Paid"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// statusRank orders the forward path. Cancelled sits outside it.
var statusRank = map[OrderStatus]int{
	OrderStatusPending:   0,
	OrderStatusPaid:      1,
	OrderStatusShipped:   2,
	OrderStatusDelivered: 3,
}

func (s OrderStatus) Valid() bool {
	if s == OrderStatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether an order in status s may move to next.
// Moves go forward along Pending, Paid, Shipped, Delivered (skipping is allowed),
// Cancelled is reachable from any non-terminal status, and setting the current
// status again is a no-op.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	if s.Terminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	return statusRank[next] > statusRank[s]
}

// ParseOrderStatus accepts exactly the five enumerated values.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(raw)
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

type Address struct {
	City       string `json:"city"`
	Street     string `json:"street"`
	House      string `json:"house"`
	Apartment  string `json:"apartment,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

// Normalize trims every field and checks the ones a courier cannot do without.
func (a Address) Normalize() (Address, error) {
	a.City = strings.TrimSpace(a.City)
	a.Street = strings.TrimSpace(a.Street)
	a.House = strings.TrimSpace(a.House)
	a.Apartment = strings.TrimSpace(a.Apartment)
	a.PostalCode = strings.TrimSpace(a.PostalCode)

	if a.City == "" || a.Street == "" || a.House == "" {
		return Address{}, ErrIncompleteAddress
	}
	return a, nil
}

type DeliveryAddress struct {
	ID     string `json:"addressId"`
	UserID int64  `json:"userId"`
	Address
}

type OrderItem struct {
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID          string          `json:"orderId"`
	UserID      int64           `json:"userId"`
	AddressID   string          `json:"addressId"`
	Items       []OrderItem     `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      OrderStatus     `json:"status"`
	OrderDate   time.Time       `json:"orderDate"`
}

// NewOrder freezes the cart snapshot into a pending order: every item keeps the
// price it was read with and the total is summed from those prices.
func NewOrder(id string, userID int64, addressID string, lines []CartLine, placedAt time.Time) *Order {
	order := &Order{
		ID:          id,
		UserID:      userID,
		AddressID:   addressID,
		Items:       make([]OrderItem, 0, len(lines)),
		TotalAmount: decimal.Zero,
		Status:      OrderStatusPending,
		OrderDate:   placedAt,
	}
	for _, line := range lines {
		item := OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.Price,
		}
		order.Items = append(order.Items, item)
		order.TotalAmount = order.TotalAmount.Add(item.Subtotal())
	}
	return order
}

// OrderLine is one row of a customer's order history: the order header repeated
// for each of its items.
type OrderLine struct {
	OrderID      string          `json:"orderId"`
	OrderDate    time.Time       `json:"orderDate"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Status       OrderStatus     `json:"status"`
	ProductID    int64           `json:"productId"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Name         string          `json:"name"`
	MainImageURL string          `json:"mainImageUrl"`
}

type OrderSummary struct {
	OrderID     string          `json:"orderId"`
	OrderDate   time.Time       `json:"orderDate"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      OrderStatus     `json:"status"`
	UserLogin   string          `json:"userLogin"`
	City        string          `json:"city"`
	Street      string          `json:"street"`
	House       string          `json:"house"`
	Apartment   string          `json:"apartment,omitempty"`
	PostalCode  string          `json:"postalCode,omitempty"`
}

type OrderDetailItem struct {
	ProductID    int64           `json:"productId"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	MainImageURL string          `json:"mainImageUrl"`
}

type OrderDetail struct {
	OrderSummary
	Items []OrderDetailItem `json:"items"`
}
