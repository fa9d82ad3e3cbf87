package services

import (
	"context"
	"errors"
	"time"

	"homechef/internal/models"
	"homechef/internal/repository"
)

// In-memory repository fakes. They honor the same version compare-and-swap
// contract as the persistent implementations so the services' concurrency
// handling is exercised without a database.

type fakeCartRepo struct {
	nextCartID uint
	nextItemID uint
	carts      map[uint]*models.Cart

	// staleReads makes lookups report a version one behind the stored one,
	// simulating a concurrent writer landing between read and write.
	staleReads bool
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[uint]*models.Cart)}
}

func (r *fakeCartRepo) FindActiveByCustomer(_ context.Context, customerID uint) (*models.Cart, error) {
	for _, cart := range r.carts {
		if cart.CustomerID == customerID {
			dup := copyCart(cart)
			if r.staleReads {
				dup.Version--
			}
			return dup, nil
		}
	}
	return nil, nil
}

func (r *fakeCartRepo) Create(_ context.Context, cart *models.Cart) error {
	r.nextCartID++
	cart.ID = r.nextCartID
	r.carts[cart.ID] = copyCart(cart)
	return nil
}

func (r *fakeCartRepo) GetByID(_ context.Context, id uint) (*models.Cart, error) {
	cart, ok := r.carts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyCart(cart), nil
}

func (r *fakeCartRepo) AddItem(_ context.Context, cartID uint, version int, item *models.CartItem) error {
	cart, err := r.locked(cartID, version)
	if err != nil {
		return err
	}
	r.nextItemID++
	item.ID = r.nextItemID
	item.CartID = cartID
	cart.Items = append(cart.Items, *item)
	cart.Version++
	return nil
}

func (r *fakeCartRepo) UpdateItemQuantity(_ context.Context, cartID uint, version int, itemID uint, quantity int) error {
	cart, err := r.locked(cartID, version)
	if err != nil {
		return err
	}
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items[i].Quantity = quantity
			cart.Version++
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeCartRepo) RemoveItem(_ context.Context, cartID uint, version int, itemID uint) error {
	cart, err := r.locked(cartID, version)
	if err != nil {
		return err
	}
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			cart.Version++
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeCartRepo) Clear(_ context.Context, cartID uint, version int) error {
	cart, err := r.locked(cartID, version)
	if err != nil {
		return err
	}
	cart.Items = nil
	cart.Version++
	return nil
}

func (r *fakeCartRepo) ReplaceItems(_ context.Context, cartID uint, version int, item *models.CartItem) error {
	cart, err := r.locked(cartID, version)
	if err != nil {
		return err
	}
	r.nextItemID++
	item.ID = r.nextItemID
	item.CartID = cartID
	cart.Items = []models.CartItem{*item}
	cart.Version++
	return nil
}

func (r *fakeCartRepo) locked(cartID uint, version int) (*models.Cart, error) {
	cart, ok := r.carts[cartID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if cart.Version != version {
		return nil, repository.ErrVersionConflict
	}
	return cart, nil
}

func copyCart(c *models.Cart) *models.Cart {
	dup := *c
	dup.Items = append([]models.CartItem(nil), c.Items...)
	return &dup
}

type fakeOrderRepo struct {
	nextOrderID uint
	nextItemID  uint
	orders      map[uint]*models.Order
	carts       *fakeCartRepo

	failCreate     bool
	statusConflict bool
	// beforeCreate runs inside CreateWithItems before any state changes,
	// simulating a writer that slips in between checkout's read and its
	// transaction.
	beforeCreate func()
}

func newFakeOrderRepo(carts *fakeCartRepo) *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uint]*models.Order), carts: carts}
}

func (r *fakeOrderRepo) CreateWithItems(_ context.Context, order *models.Order, items []models.OrderItem, cartID uint, cartVersion int) error {
	if r.beforeCreate != nil {
		r.beforeCreate()
	}
	if r.failCreate {
		return errors.New("insert failed")
	}
	if r.carts != nil {
		cart, ok := r.carts.carts[cartID]
		if !ok {
			return repository.ErrNotFound
		}
		if cart.Version != cartVersion {
			return repository.ErrVersionConflict
		}
		cart.Items = nil
		cart.Version++
	}
	r.nextOrderID++
	order.ID = r.nextOrderID
	for i := range items {
		r.nextItemID++
		items[i].ID = r.nextItemID
		items[i].OrderID = order.ID
	}
	order.Items = items
	r.orders[order.ID] = copyOrder(order)
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id uint) (*models.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyOrder(order), nil
}

func (r *fakeOrderRepo) GetByCustomer(_ context.Context, customerID uint) ([]models.Order, error) {
	var out []models.Order
	for _, order := range r.orders {
		if order.CustomerID == customerID {
			out = append(out, *copyOrder(order))
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, orderID uint, version int, status models.OrderStatus, paymentStatus models.PaymentStatus, totals repository.OrderTotals) error {
	if r.statusConflict {
		return repository.ErrVersionConflict
	}
	order, ok := r.orders[orderID]
	if !ok {
		return repository.ErrNotFound
	}
	if order.Version != version {
		return repository.ErrVersionConflict
	}
	order.Status = status
	order.PaymentStatus = paymentStatus
	order.TotalAmountCents = totals.TotalAmountCents
	order.OriginalAmountCents = totals.OriginalAmountCents
	order.CancellationFeeCents = totals.CancellationFeeCents
	order.Version++
	return nil
}

func (r *fakeOrderRepo) UpdateItemPrice(_ context.Context, orderID uint, version int, itemID uint, priceCents, newTotalCents int64) error {
	order, ok := r.orders[orderID]
	if !ok {
		return repository.ErrNotFound
	}
	if order.Version != version {
		return repository.ErrVersionConflict
	}
	for i := range order.Items {
		if order.Items[i].ID == itemID {
			order.Items[i].UnitPriceCents = priceCents
			order.TotalAmountCents = newTotalCents
			order.Version++
			return nil
		}
	}
	return repository.ErrNotFound
}

// addOrder seeds an order directly, the way checkout would have left it.
func (r *fakeOrderRepo) addOrder(order *models.Order) *models.Order {
	r.nextOrderID++
	order.ID = r.nextOrderID
	if order.Version == 0 {
		order.Version = 1
	}
	for i := range order.Items {
		r.nextItemID++
		order.Items[i].ID = r.nextItemID
		order.Items[i].OrderID = order.ID
	}
	r.orders[order.ID] = copyOrder(order)
	return r.orders[order.ID]
}

func copyOrder(o *models.Order) *models.Order {
	dup := *o
	dup.Items = append([]models.OrderItem(nil), o.Items...)
	return &dup
}

type fakeDishRepo struct {
	dishes map[uint]*models.Dish
}

func (r *fakeDishRepo) GetByID(_ context.Context, id uint) (*models.Dish, error) {
	dish, ok := r.dishes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return dish, nil
}

type fakeAddressRepo struct {
	addresses map[uint]*models.Address
}

func (r *fakeAddressRepo) GetByID(_ context.Context, id uint) (*models.Address, error) {
	address, ok := r.addresses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return address, nil
}

type fakePaymentRepo struct {
	methods map[uint]*models.PaymentMethod
}

func (r *fakePaymentRepo) GetByID(_ context.Context, id uint) (*models.PaymentMethod, error) {
	method, ok := r.methods[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return method, nil
}

type fakeUserRepo struct {
	users map[uint]*models.User
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

type fakeCache struct {
	cartViews    map[uint]CartView
	orderViews   map[uint]OrderView
	orderDeletes int
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		cartViews:  make(map[uint]CartView),
		orderViews: make(map[uint]OrderView),
	}
}

func (c *fakeCache) GetCart(_ context.Context, customerID uint, dest interface{}) error {
	view, ok := c.cartViews[customerID]
	if !ok {
		return errors.New("cache miss")
	}
	*dest.(*CartView) = view
	return nil
}

func (c *fakeCache) SetCart(_ context.Context, customerID uint, value interface{}, _ time.Duration) error {
	c.cartViews[customerID] = *value.(*CartView)
	return nil
}

func (c *fakeCache) DeleteCart(_ context.Context, customerID uint) error {
	delete(c.cartViews, customerID)
	return nil
}

func (c *fakeCache) GetOrder(_ context.Context, orderID uint, dest interface{}) error {
	view, ok := c.orderViews[orderID]
	if !ok {
		return errors.New("cache miss")
	}
	*dest.(*OrderView) = view
	return nil
}

func (c *fakeCache) SetOrder(_ context.Context, orderID uint, value interface{}, _ time.Duration) error {
	c.orderViews[orderID] = *value.(*OrderView)
	return nil
}

func (c *fakeCache) DeleteOrder(_ context.Context, orderID uint) error {
	delete(c.orderViews, orderID)
	c.orderDeletes++
	return nil
}

type fakePublisher struct {
	events []OrderEvent
	err    error
}

func (p *fakePublisher) PublishOrderEvent(_ context.Context, event OrderEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}
