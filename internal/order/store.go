package order

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"cafebar-be/internal/logger"
	"cafebar-be/internal/metrics"
	"cafebar-be/internal/storage"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Persistence keys.
const (
	KeyOrders         = "orders"
	KeyFavoriteOrders = "favoriteOrders"
)

const defaultWriteTimeout = 5 * time.Second

// Store owns the orders and favorite orders, both newest first. Mutations
// apply to memory immediately; the full collection is then persisted in the
// background. Readers always get copies.
type Store struct {
	mu        sync.RWMutex
	orders    []Order
	favorites []FavoriteOrder
	mutated   bool

	kv      storage.Storage
	persist *persister
	metrics *metrics.Metrics
}

type storeOptions struct {
	notify       chan<- PersistResult
	metrics      *metrics.Metrics
	writeTimeout time.Duration
}

type Option func(*storeOptions)

// WithPersistNotify delivers every write outcome to ch. Sends never block:
// results are dropped (and logged) when ch is full.
func WithPersistNotify(ch chan<- PersistResult) Option {
	return func(o *storeOptions) { o.notify = ch }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *storeOptions) { o.metrics = m }
}

func WithWriteTimeout(d time.Duration) Option {
	return func(o *storeOptions) {
		if d > 0 {
			o.writeTimeout = d
		}
	}
}

func NewStore(kv storage.Storage, opts ...Option) *Store {
	o := storeOptions{writeTimeout: defaultWriteTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	return &Store{
		orders:    []Order{},
		favorites: []FavoriteOrder{},
		kv:        kv,
		persist:   newPersister(kv, o.writeTimeout, o.notify, o.metrics),
		metrics:   o.metrics,
	}
}

// Load hydrates both collections at startup. A missing or unreadable value
// leaves that collection empty and is only logged. Once any mutation has
// been applied Load refuses with ErrStoreInUse; otherwise the returned
// error is non-nil only when ctx ends first.
func (s *Store) Load(ctx context.Context) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "store"),
		zap.String("method", "Load"),
	)

	s.mu.RLock()
	mutated := s.mutated
	s.mu.RUnlock()
	if mutated {
		log.Warn("load refused, store already mutated")
		return ErrStoreInUse
	}

	var (
		orders    []Order
		favorites []FavoriteOrder
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.loadKey(gctx, log, KeyOrders, &orders)
	})
	g.Go(func() error {
		return s.loadKey(gctx, log, KeyFavoriteOrders, &favorites)
	})
	err := g.Wait()

	if orders == nil {
		orders = []Order{}
	}
	if favorites == nil {
		favorites = []FavoriteOrder{}
	}

	s.mu.Lock()
	if s.mutated {
		s.mu.Unlock()
		log.Warn("load refused, store mutated while loading")
		return ErrStoreInUse
	}
	s.orders = orders
	s.favorites = favorites
	s.mu.Unlock()

	log.Info("order store loaded",
		zap.Int("orders", len(orders)),
		zap.Int("favorite_orders", len(favorites)),
	)
	return err
}

func (s *Store) loadKey(ctx context.Context, log *zap.Logger, key string, dst any) error {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		log.Info("no persisted value, starting empty", zap.String("key", key))
		return nil
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		log.Warn("failed to read persisted value, starting empty",
			zap.String("key", key),
			zap.Error(err),
		)
		return nil
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		log.Warn("failed to parse persisted value, starting empty",
			zap.String("key", key),
			zap.Error(err),
		)
		// drop whatever a partial decode left behind
		switch v := dst.(type) {
		case *[]Order:
			*v = nil
		case *[]FavoriteOrder:
			*v = nil
		}
	}
	return nil
}

// AddOrder prepends o and persists the orders. The caller supplies a unique id.
func (s *Store) AddOrder(ctx context.Context, o Order) error {
	if o.ID == "" {
		return ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if indexOfOrder(s.orders, o.ID) >= 0 {
		return ErrDuplicateOrderID
	}

	s.orders = append([]Order{o.clone()}, s.orders...)
	if s.metrics != nil {
		s.metrics.OrdersPlaced.Inc()
	}

	logger.FromCtx(ctx).Info("order added",
		zap.String("layer", "store"),
		zap.String("order_id", o.ID),
		zap.Int("item_count", len(o.Items)),
	)
	return s.saveOrdersLocked(ctx)
}

// UpdateOrderStatus changes only the status of the matching order. An
// unknown id is a no-op and reports false.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, status OrderStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOfOrder(s.orders, orderID)
	if i < 0 {
		return false, nil
	}

	prev := s.orders[i].Status
	s.orders[i].Status = status

	logger.FromCtx(ctx).Info("order status updated",
		zap.String("layer", "store"),
		zap.String("order_id", orderID),
		zap.String("from", string(prev)),
		zap.String("to", string(status)),
	)
	return true, s.saveOrdersLocked(ctx)
}

// DeleteOrder removes the matching order; unknown ids are a no-op.
func (s *Store) DeleteOrder(ctx context.Context, orderID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOfOrder(s.orders, orderID)
	if i < 0 {
		return false, nil
	}

	s.orders = append(s.orders[:i:i], s.orders[i+1:]...)

	logger.FromCtx(ctx).Info("order deleted",
		zap.String("layer", "store"),
		zap.String("order_id", orderID),
	)
	return true, s.saveOrdersLocked(ctx)
}

func (s *Store) AddFavoriteOrder(ctx context.Context, fav FavoriteOrder) error {
	if fav.ID == "" {
		return ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if indexOfFavorite(s.favorites, fav.ID) >= 0 {
		return ErrDuplicateFavoriteID
	}

	s.favorites = append([]FavoriteOrder{fav.clone()}, s.favorites...)

	logger.FromCtx(ctx).Info("favorite order added",
		zap.String("layer", "store"),
		zap.String("favorite_id", fav.ID),
	)
	return s.saveFavoritesLocked(ctx)
}

// RemoveFavoriteOrder removes by favorite id; unknown ids are a no-op.
func (s *Store) RemoveFavoriteOrder(ctx context.Context, favoriteID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOfFavorite(s.favorites, favoriteID)
	if i < 0 {
		return false, nil
	}

	s.favorites = append(s.favorites[:i:i], s.favorites[i+1:]...)

	logger.FromCtx(ctx).Info("favorite order removed",
		zap.String("layer", "store"),
		zap.String("favorite_id", favoriteID),
	)
	return true, s.saveFavoritesLocked(ctx)
}

func (s *Store) Orders() []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Order, len(s.orders))
	for i, o := range s.orders {
		out[i] = o.clone()
	}
	return out
}

func (s *Store) FavoriteOrders() []FavoriteOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]FavoriteOrder, len(s.favorites))
	for i, f := range s.favorites {
		out[i] = f.clone()
	}
	return out
}

// RecentOrders is the newest-first prefix of at most RecentLimit orders.
func (s *Store) RecentOrders() []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Recent(s.orders)
}

func (s *Store) ListOrders(f ListFilter) []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ApplyFilter(s.orders, f)
}

func (s *Store) FindOrder(orderID string) (Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := indexOfOrder(s.orders, orderID); i >= 0 {
		return s.orders[i].clone(), true
	}
	return Order{}, false
}

func (s *Store) FindFavoriteOrder(favoriteID string) (FavoriteOrder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := indexOfFavorite(s.favorites, favoriteID); i >= 0 {
		return s.favorites[i].clone(), true
	}
	return FavoriteOrder{}, false
}

// Flush waits for all pending writes; after it returns nil, storage holds
// the state as of the call.
func (s *Store) Flush(ctx context.Context) error {
	return s.persist.flush(ctx)
}

// Close flushes pending writes and stops the background writer. Later
// mutations still apply in memory but return ErrStoreClosed.
func (s *Store) Close(ctx context.Context) error {
	return s.persist.close(ctx)
}

func (s *Store) saveOrdersLocked(ctx context.Context) error {
	return s.enqueueLocked(ctx, KeyOrders, s.orders)
}

func (s *Store) saveFavoritesLocked(ctx context.Context) error {
	return s.enqueueLocked(ctx, KeyFavoriteOrders, s.favorites)
}

// enqueueLocked serializes under the store lock so snapshots reach the
// writer in mutation order.
func (s *Store) enqueueLocked(ctx context.Context, key string, v any) error {
	s.mutated = true

	data, err := json.Marshal(v)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to encode snapshot",
			zap.String("layer", "store"),
			zap.String("key", key),
			zap.Error(err),
		)
		return err
	}

	if err := s.persist.enqueue(key, string(data)); err != nil {
		logger.FromCtx(ctx).Warn("snapshot not persisted",
			zap.String("layer", "store"),
			zap.String("key", key),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func indexOfOrder(orders []Order, id string) int {
	for i := range orders {
		if orders[i].ID == id {
			return i
		}
	}
	return -1
}

func indexOfFavorite(favs []FavoriteOrder, id string) int {
	for i := range favs {
		if favs[i].ID == id {
			return i
		}
	}
	return -1
}
