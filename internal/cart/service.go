package cart

import (
	"context"
	"errors"
	"strings"
	"sync"

	"cafebar-be/internal/catalog"
	"cafebar-be/internal/logger"
	"cafebar-be/internal/order"

	"go.uber.org/zap"
)

// ProductLookup resolves menu entries.
type ProductLookup interface {
	Product(id string) (catalog.Product, error)
}

// OrderPlacer submits a composed order.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, input order.PlaceOrderInput) (*order.Order, error)
}

// Service manages one cart per session.
type Service interface {
	AddToCart(ctx context.Context, sessionID, productID string) (*View, error)
	GetCart(ctx context.Context, sessionID string) (*View, error)
	UpdateCartQuantity(ctx context.Context, sessionID, productID string, delta int) (*View, error)
	RemoveFromCart(ctx context.Context, sessionID, productID string) (*View, error)
	ClearCart(ctx context.Context, sessionID string) error
	Checkout(ctx context.Context, sessionID, customerName string) (*order.Order, error)
}

type service struct {
	products ProductLookup
	orders   OrderPlacer

	mu    sync.Mutex
	carts map[string]*Cart
}

func NewService(products ProductLookup, orders OrderPlacer) Service {
	return &service{
		products: products,
		orders:   orders,
		carts:    make(map[string]*Cart),
	}
}

func (s *service) AddToCart(ctx context.Context, sessionID, productID string) (*View, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddToCart"),
		zap.String("product_id", productID),
	)

	c, err := s.cart(sessionID, true)
	if err != nil {
		return nil, err
	}

	p, err := s.products.Product(productID)
	if err != nil {
		log.Warn("product lookup failed", zap.Error(err))
		if errors.Is(err, catalog.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	line := c.Add(p)
	log.Debug("added to cart", zap.Int("quantity", line.Quantity))

	v := c.View()
	return &v, nil
}

func (s *service) GetCart(ctx context.Context, sessionID string) (*View, error) {
	c, err := s.cart(sessionID, false)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return &View{Lines: []Line{}, Formatted: order.FormatPrice(0)}, nil
	}
	v := c.View()
	return &v, nil
}

// UpdateCartQuantity applies delta; a line reaching zero is removed.
func (s *service) UpdateCartQuantity(ctx context.Context, sessionID, productID string, delta int) (*View, error) {
	if delta == 0 {
		return nil, ErrInvalidQuantity
	}

	c, err := s.cart(sessionID, false)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCartItemNotFound
	}

	if _, err := c.UpdateQuantity(productID, delta); err != nil {
		return nil, err
	}
	v := c.View()
	return &v, nil
}

func (s *service) RemoveFromCart(ctx context.Context, sessionID, productID string) (*View, error) {
	c, err := s.cart(sessionID, false)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCartItemNotFound
	}

	if err := c.Remove(productID); err != nil {
		return nil, err
	}
	v := c.View()
	return &v, nil
}

func (s *service) ClearCart(ctx context.Context, sessionID string) error {
	c, err := s.cart(sessionID, false)
	if err != nil {
		return err
	}
	if c != nil {
		c.Clear()
	}
	return nil
}

// Checkout places the cart as a new order. The lines are taken out of the
// cart before placing, so items added meanwhile stay for the next checkout;
// a failed placement puts the taken lines back.
func (s *service) Checkout(ctx context.Context, sessionID, customerName string) (*order.Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Checkout"),
	)

	customerName = strings.TrimSpace(customerName)
	if customerName == "" {
		return nil, ErrMissingCustomer
	}

	c, err := s.cart(sessionID, false)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCartEmpty
	}

	lines := c.Take()
	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}

	o, err := s.orders.PlaceOrder(ctx, order.PlaceOrderInput{
		CustomerName: customerName,
		Items:        toItems(lines),
	})
	if err != nil {
		c.Restore(lines)
		log.Warn("checkout failed", zap.Error(err))
		return nil, err
	}

	log.Info("cart checked out", zap.String("order_id", o.ID))
	return o, nil
}

func (s *service) cart(sessionID string, create bool) (*Cart, error) {
	if sessionID == "" {
		return nil, ErrMissingSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[sessionID]
	if !ok && create {
		c = New()
		s.carts[sessionID] = c
	}
	return c, nil
}
