package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/flicky/go-marketplace-api/internal/model"
	"github.com/flicky/go-marketplace-api/internal/repository"
)

// memStore backs every mock repository so that services sharing tables see
// each other's writes, as they would against Postgres.
type memStore struct {
	users      map[uuid.UUID]*model.User
	products   map[uuid.UUID]*model.Product
	carts      map[uuid.UUID]*model.Cart
	cartItems  map[uuid.UUID]*model.CartItem
	orders     map[uuid.UUID]*model.Order
	orderItems map[uuid.UUID]*model.OrderItem
	favorites  map[uuid.UUID]*model.Favorite
	clock      time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users:      make(map[uuid.UUID]*model.User),
		products:   make(map[uuid.UUID]*model.Product),
		carts:      make(map[uuid.UUID]*model.Cart),
		cartItems:  make(map[uuid.UUID]*model.CartItem),
		orders:     make(map[uuid.UUID]*model.Order),
		orderItems: make(map[uuid.UUID]*model.OrderItem),
		favorites:  make(map[uuid.UUID]*model.Favorite),
		clock:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// now ticks so that creation order is recoverable from timestamps.
func (s *memStore) now() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

func cloneMap[T any](in map[uuid.UUID]*T) map[uuid.UUID]*T {
	out := make(map[uuid.UUID]*T, len(in))
	for k, v := range in {
		c := *v
		out[k] = &c
	}
	return out
}

func (s *memStore) clone() *memStore {
	return &memStore{
		users:      cloneMap(s.users),
		products:   cloneMap(s.products),
		carts:      cloneMap(s.carts),
		cartItems:  cloneMap(s.cartItems),
		orders:     cloneMap(s.orders),
		orderItems: cloneMap(s.orderItems),
		favorites:  cloneMap(s.favorites),
		clock:      s.clock,
	}
}

func (s *memStore) cartDetail(c *model.Cart) *model.CartDetail {
	d := &model.CartDetail{Cart: *c}
	for _, it := range s.cartItems {
		if it.CartID == c.ID {
			d.Items = append(d.Items, model.CartItemDetail{CartItem: *it, Product: *s.products[it.ProductID]})
		}
	}
	sort.Slice(d.Items, func(i, j int) bool { return d.Items[i].CreatedAt.Before(d.Items[j].CreatedAt) })
	return d
}

func (s *memStore) orderDetail(o *model.Order) *model.OrderDetail {
	d := &model.OrderDetail{Order: *o}
	for _, it := range s.orderItems {
		if it.OrderID == o.ID {
			d.Items = append(d.Items, model.OrderItemDetail{OrderItem: *it, Product: *s.products[it.ProductID]})
		}
	}
	return d
}

// ordered reports whether any order line references the product.
func (s *memStore) ordered(productID uuid.UUID) bool {
	for _, it := range s.orderItems {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

func (s *memStore) ordersWhere(keep func(*model.OrderDetail) bool) []model.OrderDetail {
	var out []model.OrderDetail
	for _, o := range s.orders {
		if d := s.orderDetail(o); keep(d) {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// --- users ---

type mockUserRepo struct{ *memStore }

func (m mockUserRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = m.now()
	u.UpdatedAt = u.CreatedAt
	c := *u
	m.users[u.ID] = &c
	return nil
}

func (m mockUserRepo) live(keep func(*model.User) bool) *model.User {
	for _, u := range m.users {
		if u.DeletedAt == nil && keep(u) {
			c := *u
			return &c
		}
	}
	return nil
}

func (m mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	return m.live(func(u *model.User) bool { return u.ID == id }), nil
}

func (m mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return m.live(func(u *model.User) bool { return u.Email == email }), nil
}

func (m mockUserRepo) List(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range m.users {
		if u.DeletedAt == nil {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m mockUserRepo) Update(_ context.Context, u *model.User) error {
	existing, ok := m.users[u.ID]
	if !ok || existing.DeletedAt != nil {
		return pgx.ErrNoRows
	}
	for _, other := range m.users {
		if other.ID != u.ID && other.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.UpdatedAt = m.now()
	c := *u
	m.users[u.ID] = &c
	return nil
}

func (m mockUserRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	u, ok := m.users[id]
	if !ok || u.DeletedAt != nil {
		return pgx.ErrNoRows
	}
	now := m.now()
	u.DeletedAt = &now
	return nil
}

func (m mockUserRepo) HardDelete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.users[id]; !ok {
		return pgx.ErrNoRows
	}
	for pid, p := range m.products {
		if p.SellerID == id && m.ordered(pid) {
			return repository.ErrInUse
		}
	}
	delete(m.users, id)
	return nil
}

// --- products ---

type mockProductRepo struct{ *memStore }

func (m mockProductRepo) Create(_ context.Context, p *model.Product) error {
	p.ID = uuid.New()
	p.CreatedAt = m.now()
	p.UpdatedAt = p.CreatedAt
	p.TotalSold = 0
	c := *p
	m.products[p.ID] = &c
	return nil
}

func (m mockProductRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (m mockProductRepo) List(_ context.Context, f repository.ProductFilter) ([]model.Product, int, error) {
	var all []model.Product
	for _, p := range m.products {
		if p.IsActive != f.IsActive || (f.SellerID != nil && p.SellerID != *f.SellerID) {
			continue
		}
		if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
			continue
		}
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	if f.Offset >= total {
		return nil, total, nil
	}
	end := min(f.Offset+f.Limit, total)
	return all[f.Offset:end], total, nil
}

func (m mockProductRepo) ListBySeller(_ context.Context, sellerID uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, p := range m.products {
		if p.SellerID == sellerID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m mockProductRepo) Update(_ context.Context, p *model.Product) error {
	existing, ok := m.products[p.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	p.SellerID = existing.SellerID
	p.TotalSold = existing.TotalSold
	p.UpdatedAt = m.now()
	c := *p
	m.products[p.ID] = &c
	return nil
}

func (m mockProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.products[id]; !ok {
		return pgx.ErrNoRows
	}
	if m.ordered(id) {
		return repository.ErrInUse
	}
	delete(m.products, id)
	return nil
}

// --- carts ---

type mockCartRepo struct{ *memStore }

func (m mockCartRepo) Create(_ context.Context, c *model.Cart) error {
	for _, existing := range m.carts {
		if existing.CustomerID == c.CustomerID {
			return repository.ErrDuplicate
		}
	}
	c.ID = uuid.New()
	c.CreatedAt = m.now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	m.carts[c.ID] = &cp
	return nil
}

func (m mockCartRepo) GetByID(_ context.Context, id uuid.UUID) (*model.CartDetail, error) {
	c, ok := m.carts[id]
	if !ok {
		return nil, nil
	}
	return m.cartDetail(c), nil
}

func (m mockCartRepo) GetByCustomer(_ context.Context, customerID uuid.UUID) (*model.CartDetail, error) {
	for _, c := range m.carts {
		if c.CustomerID == customerID {
			return m.cartDetail(c), nil
		}
	}
	return nil, nil
}

func (m mockCartRepo) List(_ context.Context) ([]model.CartDetail, error) {
	var out []model.CartDetail
	for _, c := range m.carts {
		out = append(out, *m.cartDetail(c))
	}
	return out, nil
}

func (m mockCartRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.carts[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.carts, id)
	for itemID, it := range m.cartItems {
		if it.CartID == id {
			delete(m.cartItems, itemID)
		}
	}
	return nil
}

func (m mockCartRepo) ClearItems(_ context.Context, cartID uuid.UUID) error {
	for id, it := range m.cartItems {
		if it.CartID == cartID {
			delete(m.cartItems, id)
		}
	}
	return nil
}

func (m mockCartRepo) AddItem(_ context.Context, item *model.CartItem) error {
	for _, existing := range m.cartItems {
		if existing.CartID == item.CartID && existing.ProductID == item.ProductID {
			existing.Quantity += item.Quantity
			existing.UpdatedAt = m.now()
			*item = *existing
			return nil
		}
	}
	item.ID = uuid.New()
	item.CreatedAt = m.now()
	item.UpdatedAt = item.CreatedAt
	c := *item
	m.cartItems[item.ID] = &c
	return nil
}

func (m mockCartRepo) GetItem(_ context.Context, id uuid.UUID) (*model.CartItemDetail, error) {
	it, ok := m.cartItems[id]
	if !ok {
		return nil, nil
	}
	return &model.CartItemDetail{CartItem: *it, Product: *m.products[it.ProductID]}, nil
}

func (m mockCartRepo) ListItems(_ context.Context, cartID uuid.UUID) ([]model.CartItemDetail, error) {
	c, ok := m.carts[cartID]
	if !ok {
		return nil, nil
	}
	return m.cartDetail(c).Items, nil
}

func (m mockCartRepo) UpdateItemQuantity(_ context.Context, id uuid.UUID, quantity int) error {
	it, ok := m.cartItems[id]
	if !ok {
		return pgx.ErrNoRows
	}
	it.Quantity = quantity
	return nil
}

func (m mockCartRepo) DeleteItem(_ context.Context, id uuid.UUID) error {
	if _, ok := m.cartItems[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.cartItems, id)
	return nil
}

func (m mockCartRepo) DeleteItemByProduct(_ context.Context, cartID, productID uuid.UUID) error {
	for id, it := range m.cartItems {
		if it.CartID == cartID && it.ProductID == productID {
			delete(m.cartItems, id)
			return nil
		}
	}
	return pgx.ErrNoRows
}

// --- checkout ---

var errInjected = errors.New("injected failure")

// mockCheckoutRepo runs each transaction against a copy of the store and
// swaps it in only when fn succeeds.
type mockCheckoutRepo struct {
	store  *memStore
	failOn string
}

func (m *mockCheckoutRepo) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.CheckoutTx) error) error {
	staged := m.store.clone()
	if err := fn(ctx, &memCheckoutTx{s: staged, failOn: m.failOn}); err != nil {
		return err
	}
	*m.store = *staged
	return nil
}

type memCheckoutTx struct {
	s      *memStore
	failOn string
}

func (t *memCheckoutTx) LockCart(_ context.Context, customerID uuid.UUID) (*model.CartDetail, error) {
	if t.failOn == "LockCart" {
		return nil, errInjected
	}
	for _, c := range t.s.carts {
		if c.CustomerID == customerID {
			return t.s.cartDetail(c), nil
		}
	}
	return nil, nil
}

func (t *memCheckoutTx) CreateOrder(_ context.Context, o *model.Order) error {
	if t.failOn == "CreateOrder" {
		return errInjected
	}
	o.ID = uuid.New()
	o.CreatedAt = t.s.now()
	c := *o
	t.s.orders[o.ID] = &c
	return nil
}

func (t *memCheckoutTx) CreateOrderItem(_ context.Context, it *model.OrderItem) error {
	if t.failOn == "CreateOrderItem" {
		return errInjected
	}
	it.ID = uuid.New()
	c := *it
	t.s.orderItems[it.ID] = &c
	return nil
}

func (t *memCheckoutTx) IncrementTotalSold(_ context.Context, productID uuid.UUID, quantity int) error {
	if t.failOn == "IncrementTotalSold" {
		return errInjected
	}
	p, ok := t.s.products[productID]
	if !ok {
		return pgx.ErrNoRows
	}
	p.TotalSold += quantity
	return nil
}

func (t *memCheckoutTx) ClearCart(_ context.Context, cartID uuid.UUID) error {
	if t.failOn == "ClearCart" {
		return errInjected
	}
	for id, it := range t.s.cartItems {
		if it.CartID == cartID {
			delete(t.s.cartItems, id)
		}
	}
	return nil
}

// --- orders ---

type mockOrderRepo struct{ *memStore }

func (m mockOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*model.OrderDetail, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	return m.orderDetail(o), nil
}

func (m mockOrderRepo) List(_ context.Context) ([]model.OrderDetail, error) {
	return m.ordersWhere(func(*model.OrderDetail) bool { return true }), nil
}

func (m mockOrderRepo) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]model.OrderDetail, error) {
	return m.ordersWhere(func(o *model.OrderDetail) bool { return o.CustomerID == customerID }), nil
}

func (m mockOrderRepo) ListBySeller(_ context.Context, sellerID uuid.UUID) ([]model.OrderDetail, error) {
	return m.ordersWhere(func(o *model.OrderDetail) bool {
		for _, id := range o.SellerIDs() {
			if id == sellerID {
				return true
			}
		}
		return false
	}), nil
}

func (m mockOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.orders[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.orders, id)
	for itemID, it := range m.orderItems {
		if it.OrderID == id {
			delete(m.orderItems, itemID)
		}
	}
	return nil
}

func (m mockOrderRepo) GetItem(_ context.Context, id uuid.UUID) (*model.OrderItemDetail, error) {
	it, ok := m.orderItems[id]
	if !ok {
		return nil, nil
	}
	return &model.OrderItemDetail{OrderItem: *it, Product: *m.products[it.ProductID]}, nil
}

// --- favorites ---

type mockFavoriteRepo struct{ *memStore }

func (m mockFavoriteRepo) Create(_ context.Context, f *model.Favorite) error {
	for _, existing := range m.favorites {
		if existing.CustomerID == f.CustomerID && existing.ProductID == f.ProductID {
			return repository.ErrDuplicate
		}
	}
	f.ID = uuid.New()
	f.CreatedAt = m.now()
	c := *f
	m.favorites[f.ID] = &c
	return nil
}

func (m mockFavoriteRepo) detail(f *model.Favorite) *model.FavoriteDetail {
	return &model.FavoriteDetail{Favorite: *f, Product: *m.products[f.ProductID]}
}

func (m mockFavoriteRepo) GetByID(_ context.Context, id uuid.UUID) (*model.FavoriteDetail, error) {
	f, ok := m.favorites[id]
	if !ok {
		return nil, nil
	}
	return m.detail(f), nil
}

func (m mockFavoriteRepo) GetByCustomerAndProduct(_ context.Context, customerID, productID uuid.UUID) (*model.FavoriteDetail, error) {
	for _, f := range m.favorites {
		if f.CustomerID == customerID && f.ProductID == productID {
			return m.detail(f), nil
		}
	}
	return nil, nil
}

func (m mockFavoriteRepo) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]model.FavoriteDetail, error) {
	var out []model.FavoriteDetail
	for _, f := range m.favorites {
		if f.CustomerID == customerID {
			out = append(out, *m.detail(f))
		}
	}
	return out, nil
}

func (m mockFavoriteRepo) List(_ context.Context) ([]model.FavoriteDetail, error) {
	var out []model.FavoriteDetail
	for _, f := range m.favorites {
		out = append(out, *m.detail(f))
	}
	return out, nil
}

func (m mockFavoriteRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.favorites[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.favorites, id)
	return nil
}

// --- stats ---

type mockStatsRepo struct {
	*memStore
	err error
}

func (m mockStatsRepo) ListSellerProductSales(_ context.Context, sellerID uuid.UUID) ([]model.ProductSales, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []model.ProductSales
	for _, p := range m.products {
		if p.SellerID != sellerID {
			continue
		}
		ps := model.ProductSales{Product: *p}
		for _, it := range m.orderItems {
			if it.ProductID == p.ID {
				ps.OrderItems = append(ps.OrderItems, *it)
			}
		}
		out = append(out, ps)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
