package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/joao-fontenele/storefront/internal/domain"
)

// Store is the persistence the order pipeline needs. Writes go through InTx so
// every multi-row change commits or rolls back as one unit.
type Store interface {
	InTx(ctx context.Context, fn func(Tx) error) error
	ListByUser(ctx context.Context, userID int64) ([]domain.OrderLine, error)
	ListAll(ctx context.Context) ([]domain.OrderSummary, error)
	GetByID(ctx context.Context, id string) (*domain.OrderDetail, error)
}

type Tx interface {
	LockCustomer(ctx context.Context, userID int64) (string, error)
	CartSnapshot(ctx context.Context, userID int64) ([]domain.CartLine, error)
	InsertAddress(ctx context.Context, addr *domain.DeliveryAddress) error
	InsertOrder(ctx context.Context, order *domain.Order) error
	ClearCart(ctx context.Context, userID int64, productIDs []int64) error
	LockOrderStatus(ctx context.Context, id string) (domain.OrderStatus, error)
	SetOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error
	DeleteOrder(ctx context.Context, id string) error
}

type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

var tracer = otel.Tracer("storefront/orders")

type Service struct {
	store     Store
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string

	placed   metric.Int64Counter
	failures metric.Int64Counter
	amount   metric.Float64Histogram
}

// NewService wires the order pipeline. publisher may be nil, in which case no
// events are emitted.
func NewService(store Store, publisher Publisher, logger *slog.Logger) (*Service, error) {
	meter := otel.Meter("storefront/orders")

	placed, err := meter.Int64Counter("orders.placed",
		metric.WithDescription("Orders created by checkout"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter("orders.checkout.failures",
		metric.WithDescription("Checkout attempts that did not produce an order"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	amount, err := meter.Float64Histogram("orders.amount",
		metric.WithDescription("Total amount of placed orders"),
	)
	if err != nil {
		return nil, err
	}

	return &Service{
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
		placed:    placed,
		failures:  failures,
		amount:    amount,
	}, nil
}

// Checkout turns the user's cart into a pending order. The customer lock, cart
// read, address, order, items and cart cleanup share one transaction.
func (s *Service) Checkout(ctx context.Context, userID int64, addr domain.Address) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "orders.Checkout")
	defer span.End()

	addr, err := addr.Normalize()
	if err != nil {
		s.recordFailure(ctx, err)
		return nil, err
	}

	var (
		order *domain.Order
		email string
	)
	err = s.store.InTx(ctx, func(tx Tx) error {
		var err error
		if email, err = tx.LockCustomer(ctx, userID); err != nil {
			return err
		}

		lines, err := tx.CartSnapshot(ctx, userID)
		if err != nil {
			return fmt.Errorf("read cart: %w", err)
		}
		if len(lines) == 0 {
			return domain.ErrCartEmpty
		}

		delivery := &domain.DeliveryAddress{ID: s.newID(), UserID: userID, Address: addr}
		if err := tx.InsertAddress(ctx, delivery); err != nil {
			return fmt.Errorf("insert address: %w", err)
		}

		order = domain.NewOrder(s.newID(), userID, delivery.ID, lines, s.now())
		if order.TotalAmount.GreaterThan(domain.MaxOrderTotal) {
			return domain.ErrOrderTooLarge
		}
		if err := tx.InsertOrder(ctx, order); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		productIDs := make([]int64, len(lines))
		for i, l := range lines {
			productIDs[i] = l.ProductID
		}
		if err := tx.ClearCart(ctx, userID, productIDs); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		return nil
	})
	if err != nil {
		span.RecordError(err)
		s.recordFailure(ctx, err)
		return nil, err
	}

	s.placed.Add(ctx, 1)
	total, _ := order.TotalAmount.Float64()
	s.amount.Record(ctx, total)

	s.publishPlaced(ctx, order, email)
	return order, nil
}

func (s *Service) publishPlaced(ctx context.Context, order *domain.Order, email string) {
	if s.publisher == nil {
		return
	}
	event := domain.NewOrderPlacedEvent(order, email)
	if err := s.publisher.Publish(ctx, order.ID, event); err != nil {
		s.logger.Error("failed to publish order placed event", "error", err, "order_id", order.ID)
	}
}

func (s *Service) recordFailure(ctx context.Context, err error) {
	reason := "storage"
	switch {
	case errors.Is(err, domain.ErrCartEmpty):
		reason = "cart_empty"
	case errors.Is(err, domain.ErrValidation):
		reason = "invalid_address"
	case errors.Is(err, domain.ErrNotFound):
		reason = "unknown_user"
	}
	s.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (s *Service) ListForUser(ctx context.Context, userID int64) ([]domain.OrderLine, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context) ([]domain.OrderSummary, error) {
	return s.store.ListAll(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.OrderDetail, error) {
	if !validID(id) {
		return nil, domain.ErrOrderNotFound
	}
	return s.store.GetByID(ctx, id)
}

// UpdateStatus validates raw against the status enumeration and the allowed
// transitions, then stores it. The order row stays locked between the check
// and the write.
func (s *Service) UpdateStatus(ctx context.Context, id, raw string) (domain.OrderStatus, error) {
	next, err := domain.ParseOrderStatus(raw)
	if err != nil {
		return "", err
	}
	if !validID(id) {
		return "", domain.ErrOrderNotFound
	}

	err = s.store.InTx(ctx, func(tx Tx) error {
		current, err := tx.LockOrderStatus(ctx, id)
		if err != nil {
			return err
		}
		if !current.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s to %s", domain.ErrStatusTransition, current, next)
		}
		if current == next {
			return nil
		}
		return tx.SetOrderStatus(ctx, id, next)
	})
	if err != nil {
		return "", err
	}

	return next, nil
}

// Delete removes the order and its items together.
func (s *Service) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrOrderNotFound
	}
	return s.store.InTx(ctx, func(tx Tx) error {
		return tx.DeleteOrder(ctx, id)
	})
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
