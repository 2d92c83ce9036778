package orders

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/storefront/internal/domain"
)

type cartKey struct {
	userID    int64
	productID int64
}

type memState struct {
	emails    map[int64]string
	products  map[int64]decimal.Decimal
	cart      map[cartKey]int
	addresses map[string]domain.DeliveryAddress
	orders    map[string]domain.Order
	items     map[string][]domain.OrderItem
}

func (s memState) clone() memState {
	c := memState{
		emails:    map[int64]string{},
		products:  map[int64]decimal.Decimal{},
		cart:      map[cartKey]int{},
		addresses: map[string]domain.DeliveryAddress{},
		orders:    map[string]domain.Order{},
		items:     map[string][]domain.OrderItem{},
	}
	for k, v := range s.emails {
		c.emails[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.cart {
		c.cart[k] = v
	}
	for k, v := range s.addresses {
		c.addresses[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.items {
		c.items[k] = append([]domain.OrderItem(nil), v...)
	}
	return c
}

// memStore is an in-memory Store. InTx works on a copy and swaps it in only
// when fn succeeds; transactions run one at a time.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex
	st   memState

	failOn string
}

func newMemStore() *memStore {
	return &memStore{st: memState{}.clone()}
}

func (m *memStore) addUser(id int64, email string) {
	m.st.emails[id] = email
}

func (m *memStore) addProduct(id int64, price string) {
	m.st.products[id] = decimal.RequireFromString(price)
}

func (m *memStore) addToCart(userID, productID int64, qty int) {
	m.st.cart[cartKey{userID, productID}] += qty
}

func (m *memStore) snapshot() memState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.clone()
}

func (m *memStore) InTx(ctx context.Context, fn func(Tx) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	work := &memTx{st: m.snapshot(), failOn: m.failOn}
	if err := fn(work); err != nil {
		return err
	}

	m.mu.Lock()
	m.st = work.st
	m.mu.Unlock()
	return nil
}

func (m *memStore) ListByUser(ctx context.Context, userID int64) ([]domain.OrderLine, error) {
	st := m.snapshot()
	var lines []domain.OrderLine
	for _, o := range st.orders {
		if o.UserID != userID {
			continue
		}
		for _, it := range st.items[o.ID] {
			lines = append(lines, domain.OrderLine{
				OrderID: o.ID, OrderDate: o.OrderDate, TotalAmount: o.TotalAmount, Status: o.Status,
				ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price,
			})
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].OrderDate.After(lines[j].OrderDate) })
	return lines, nil
}

func (m *memStore) ListAll(ctx context.Context) ([]domain.OrderSummary, error) {
	st := m.snapshot()
	var out []domain.OrderSummary
	for _, o := range st.orders {
		a := st.addresses[o.AddressID]
		out = append(out, domain.OrderSummary{
			OrderID: o.ID, OrderDate: o.OrderDate, TotalAmount: o.TotalAmount, Status: o.Status,
			City: a.City, Street: a.Street, House: a.House,
		})
	}
	return out, nil
}

func (m *memStore) GetByID(ctx context.Context, id string) (*domain.OrderDetail, error) {
	st := m.snapshot()
	o, ok := st.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	d := &domain.OrderDetail{OrderSummary: domain.OrderSummary{
		OrderID: o.ID, OrderDate: o.OrderDate, TotalAmount: o.TotalAmount, Status: o.Status,
	}}
	for _, it := range st.items[id] {
		d.Items = append(d.Items, domain.OrderDetailItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	return d, nil
}

var errInjected = errors.New("injected storage failure")

type memTx struct {
	st     memState
	failOn string
}

func (t *memTx) fail(step string) error {
	if t.failOn == step {
		return errInjected
	}
	return nil
}

func (t *memTx) LockCustomer(ctx context.Context, userID int64) (string, error) {
	email, ok := t.st.emails[userID]
	if !ok {
		return "", domain.ErrUserNotFound
	}
	return email, nil
}

func (t *memTx) CartSnapshot(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	if err := t.fail("cart"); err != nil {
		return nil, err
	}
	var lines []domain.CartLine
	for k, qty := range t.st.cart {
		price, ok := t.st.products[k.productID]
		if k.userID != userID || !ok {
			continue
		}
		lines = append(lines, domain.CartLine{ProductID: k.productID, Price: price, Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines, nil
}

func (t *memTx) InsertAddress(ctx context.Context, addr *domain.DeliveryAddress) error {
	if err := t.fail("address"); err != nil {
		return err
	}
	t.st.addresses[addr.ID] = *addr
	return nil
}

func (t *memTx) InsertOrder(ctx context.Context, order *domain.Order) error {
	if err := t.fail("order"); err != nil {
		return err
	}
	t.st.orders[order.ID] = *order
	t.st.items[order.ID] = append([]domain.OrderItem(nil), order.Items...)
	return nil
}

func (t *memTx) ClearCart(ctx context.Context, userID int64, productIDs []int64) error {
	if err := t.fail("clear"); err != nil {
		return err
	}
	for k := range t.st.cart {
		if k.userID == userID {
			delete(t.st.cart, k)
		}
	}
	return nil
}

func (t *memTx) LockOrderStatus(ctx context.Context, id string) (domain.OrderStatus, error) {
	o, ok := t.st.orders[id]
	if !ok {
		return "", domain.ErrOrderNotFound
	}
	return o.Status, nil
}

func (t *memTx) SetOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	o, ok := t.st.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = status
	t.st.orders[id] = o
	return nil
}

func (t *memTx) DeleteOrder(ctx context.Context, id string) error {
	delete(t.st.items, id)
	if _, ok := t.st.orders[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(t.st.orders, id)
	return nil
}
