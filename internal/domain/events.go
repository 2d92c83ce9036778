package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const TopicOrderPlaced = "order.placed"

type OrderPlacedEvent struct {
	OrderID     string          `json:"orderId"`
	UserID      int64           `json:"userId"`
	Email       string          `json:"email"`
	Items       []OrderItem     `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Timestamp   time.Time       `json:"timestamp"`
}

func NewOrderPlacedEvent(order *Order, email string) OrderPlacedEvent {
	return OrderPlacedEvent{
		OrderID:     order.ID,
		UserID:      order.UserID,
		Email:       email,
		Items:       order.Items,
		TotalAmount: order.TotalAmount,
		Timestamp:   order.OrderDate,
	}
}
