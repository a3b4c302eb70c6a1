package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cafebar-be/internal/logger"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Repository is what the service needs from the order store.
type Repository interface {
	AddOrder(ctx context.Context, o Order) error
	UpdateOrderStatus(ctx context.Context, orderID string, status OrderStatus) (bool, error)
	DeleteOrder(ctx context.Context, orderID string) (bool, error)
	AddFavoriteOrder(ctx context.Context, fav FavoriteOrder) error
	RemoveFavoriteOrder(ctx context.Context, favoriteID string) (bool, error)
	FindOrder(orderID string) (Order, bool)
	FindFavoriteOrder(favoriteID string) (FavoriteOrder, bool)
	ListOrders(f ListFilter) []Order
}

// PlaceOrderInput is the submitted order form.
type PlaceOrderInput struct {
	CustomerName string      `json:"customerName" validate:"required"`
	Items        []OrderItem `json:"items" validate:"required,min=1,dive"`
}

type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Order, error)
	PrefillRepeat(ctx context.Context, orderID string) (*PlaceOrderInput, error)
	RepeatOrder(ctx context.Context, orderID string) (*Order, error)
	SaveAsFavorite(ctx context.Context, orderID string) (*FavoriteOrder, error)
	RepeatFavorite(ctx context.Context, favoriteID string) (*Order, error)
	RemoveFavorite(ctx context.Context, favoriteID string) (bool, error)
	UpdateStatus(ctx context.Context, orderID, status string) (*Order, error)
	DeleteOrder(ctx context.Context, orderID string) (bool, error)
	RateOrder(ctx context.Context, orderID string, stars int) error
	ListOrders(ctx context.Context, f ListFilter) ([]Order, Summary)
}

type service struct {
	repo     Repository
	validate *validator.Validate
	now      func() time.Time
	ids      idSequence
}

func NewService(repo Repository) Service {
	return newService(repo, time.Now)
}

func newService(repo Repository, now func() time.Time) *service {
	return &service{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      now,
	}
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PlaceOrder"),
		zap.Int("item_count", len(input.Items)),
	)

	input.CustomerName = strings.TrimSpace(input.CustomerName)
	if err := s.validate.Struct(input); err != nil {
		log.Warn("invalid order input", zap.Error(err))
		return nil, validationError(err)
	}

	items := make([]OrderItem, 0, len(input.Items))
	for _, it := range input.Items {
		if it.Quantity == 0 {
			continue
		}
		it.Name = strings.TrimSpace(it.Name)
		items = append(items, it)
	}
	if len(items) == 0 {
		log.Warn("order has no items with a quantity")
		return nil, ErrEmptyOrder
	}

	o := s.newOrder(input.CustomerName, items, CalculateTotal(items))
	if err := s.add(ctx, log, o); err != nil {
		return nil, err
	}

	log.Info("order placed",
		zap.String("order_id", o.ID),
		zap.String("total", FormatPrice(o.Total)),
	)
	return &o, nil
}

// PrefillRepeat returns the form values of an existing order for editing.
func (s *service) PrefillRepeat(ctx context.Context, orderID string) (*PlaceOrderInput, error) {
	src, ok := s.repo.FindOrder(orderID)
	if !ok {
		return nil, ErrOrderNotFound
	}
	return &PlaceOrderInput{
		CustomerName: src.CustomerName,
		Items:        cloneItems(src.Items),
	}, nil
}

// RepeatOrder places a copy of an existing order as a new pending order.
func (s *service) RepeatOrder(ctx context.Context, orderID string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "RepeatOrder"),
		zap.String("source_order_id", orderID),
	)

	src, ok := s.repo.FindOrder(orderID)
	if !ok {
		log.Warn("source order not found")
		return nil, ErrOrderNotFound
	}

	o := s.newOrder(src.CustomerName, src.Items, src.Total)
	if err := s.add(ctx, log, o); err != nil {
		return nil, err
	}

	log.Info("order repeated", zap.String("order_id", o.ID))
	return &o, nil
}

func (s *service) SaveAsFavorite(ctx context.Context, orderID string) (*FavoriteOrder, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "SaveAsFavorite"),
		zap.String("order_id", orderID),
	)

	src, ok := s.repo.FindOrder(orderID)
	if !ok {
		log.Warn("order not found")
		return nil, ErrOrderNotFound
	}

	fav := FavoriteOrder{
		ID:    NewFavoriteID(),
		Name:  FavoriteName(src),
		Items: cloneItems(src.Items),
		Total: src.Total,
	}
	if err := s.repo.AddFavoriteOrder(ctx, fav); err != nil && !errors.Is(err, ErrStoreClosed) {
		log.Error("failed to add favorite", zap.Error(err))
		return nil, err
	}

	log.Info("order saved as favorite", zap.String("favorite_id", fav.ID))
	return &fav, nil
}

func (s *service) RepeatFavorite(ctx context.Context, favoriteID string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "RepeatFavorite"),
		zap.String("favorite_id", favoriteID),
	)

	fav, ok := s.repo.FindFavoriteOrder(favoriteID)
	if !ok {
		log.Warn("favorite not found")
		return nil, ErrFavoriteNotFound
	}

	o := s.newOrder("", fav.Items, fav.Total)
	if err := s.add(ctx, log, o); err != nil {
		return nil, err
	}

	log.Info("favorite repeated", zap.String("order_id", o.ID))
	return &o, nil
}

func (s *service) RemoveFavorite(ctx context.Context, favoriteID string) (bool, error) {
	removed, err := s.repo.RemoveFavoriteOrder(ctx, favoriteID)
	if errors.Is(err, ErrStoreClosed) {
		err = nil
	}
	return removed, err
}

// UpdateStatus accepts any known status from any other; there is no
// transition guard. An unknown order id returns (nil, nil).
func (s *service) UpdateStatus(ctx context.Context, orderID, status string) (*Order, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}

	found, err := s.repo.UpdateOrderStatus(ctx, orderID, st)
	if err != nil && !errors.Is(err, ErrStoreClosed) {
		return nil, err
	}
	if !found {
		logger.FromCtx(ctx).Debug("status update for unknown order ignored",
			zap.String("layer", "service"),
			zap.String("order_id", orderID),
		)
		return nil, nil
	}

	o, _ := s.repo.FindOrder(orderID)
	return &o, nil
}

func (s *service) DeleteOrder(ctx context.Context, orderID string) (bool, error) {
	deleted, err := s.repo.DeleteOrder(ctx, orderID)
	if errors.Is(err, ErrStoreClosed) {
		err = nil
	}
	return deleted, err
}

// RateOrder records a 1-5 star rating in the log only.
func (s *service) RateOrder(ctx context.Context, orderID string, stars int) error {
	if stars < 1 || stars > 5 {
		return ErrInvalidRating
	}
	if _, ok := s.repo.FindOrder(orderID); !ok {
		return ErrOrderNotFound
	}

	logger.FromCtx(ctx).Info("order rated",
		zap.String("layer", "service"),
		zap.String("order_id", orderID),
		zap.Int("stars", stars),
	)
	return nil
}

func (s *service) ListOrders(ctx context.Context, f ListFilter) ([]Order, Summary) {
	orders := s.repo.ListOrders(f)
	return orders, Summarize(orders)
}

func (s *service) newOrder(customer string, items []OrderItem, total float64) Order {
	now := s.now()
	return Order{
		ID:           s.ids.next(now),
		Date:         FormatDate(now),
		CustomerName: customer,
		Items:        cloneItems(items),
		Total:        total,
		Status:       StatusPending,
	}
}

// add tolerates a closed store: the order is in memory, only its
// persistence was skipped.
func (s *service) add(ctx context.Context, log *zap.Logger, o Order) error {
	err := s.repo.AddOrder(ctx, o)
	if err == nil || errors.Is(err, ErrStoreClosed) {
		return nil
	}
	log.Error("failed to add order", zap.String("order_id", o.ID), zap.Error(err))
	return err
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}
