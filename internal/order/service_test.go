package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) AddOrder(ctx context.Context, o Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockRepository) UpdateOrderStatus(ctx context.Context, orderID string, status OrderStatus) (bool, error) {
	args := m.Called(ctx, orderID, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) DeleteOrder(ctx context.Context, orderID string) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) AddFavoriteOrder(ctx context.Context, fav FavoriteOrder) error {
	args := m.Called(ctx, fav)
	return args.Error(0)
}

func (m *MockRepository) RemoveFavoriteOrder(ctx context.Context, favoriteID string) (bool, error) {
	args := m.Called(ctx, favoriteID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) FindOrder(orderID string) (Order, bool) {
	args := m.Called(orderID)
	return args.Get(0).(Order), args.Bool(1)
}

func (m *MockRepository) FindFavoriteOrder(favoriteID string) (FavoriteOrder, bool) {
	args := m.Called(favoriteID)
	return args.Get(0).(FavoriteOrder), args.Bool(1)
}

func (m *MockRepository) ListOrders(f ListFilter) []Order {
	args := m.Called(f)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]Order)
}

var _ Repository = (*Store)(nil)

var fixedNow = time.Date(2024, 6, 12, 8, 15, 0, 0, time.UTC)

func setupService() (*service, *MockRepository) {
	repo := new(MockRepository)
	return newService(repo, func() time.Time { return fixedNow }), repo
}

func TestService_PlaceOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Success drops zero lines", func(t *testing.T) {
		svc, repo := setupService()
		repo.On("AddOrder", ctx, mock.MatchedBy(func(o Order) bool {
			return o.ID == NewOrderID(fixedNow) &&
				o.Date == "2024-06-12T08:15:00.000Z" &&
				o.CustomerName == "Mia" &&
				len(o.Items) == 2 &&
				o.Total == 8.0 &&
				o.Status == StatusPending
		})).Return(nil)

		o, err := svc.PlaceOrder(ctx, PlaceOrderInput{
			CustomerName: "  Mia ",
			Items: []OrderItem{
				{Name: "Coffee", Quantity: 2, Price: 2.5},
				{Name: "Latte", Quantity: 0, Price: 3.5},
				{Name: "Tea", Quantity: 3, Price: 1.0},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "Mia", o.CustomerName)
		assert.Equal(t, StatusPending, o.Status)
		repo.AssertExpectations(t)
	})

	t.Run("Validation errors", func(t *testing.T) {
		tests := []struct {
			name  string
			input PlaceOrderInput
			want  error
		}{
			{"missing customer", PlaceOrderInput{CustomerName: "  ", Items: []OrderItem{{Name: "Tea", Quantity: 1, Price: 2}}}, ErrInvalidInput},
			{"no items", PlaceOrderInput{CustomerName: "Mia"}, ErrInvalidInput},
			{"negative quantity", PlaceOrderInput{CustomerName: "Mia", Items: []OrderItem{{Name: "Tea", Quantity: -1, Price: 2}}}, ErrInvalidInput},
			{"negative price", PlaceOrderInput{CustomerName: "Mia", Items: []OrderItem{{Name: "Tea", Quantity: 1, Price: -2}}}, ErrInvalidInput},
			{"unnamed item", PlaceOrderInput{CustomerName: "Mia", Items: []OrderItem{{Quantity: 1, Price: 2}}}, ErrInvalidInput},
			{"all zero quantities", PlaceOrderInput{CustomerName: "Mia", Items: []OrderItem{{Name: "Tea", Quantity: 0, Price: 2}}}, ErrEmptyOrder},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				svc, repo := setupService()
				o, err := svc.PlaceOrder(ctx, tt.input)
				assert.Nil(t, o)
				assert.ErrorIs(t, err, tt.want)
				repo.AssertNotCalled(t, "AddOrder", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("Repository error", func(t *testing.T) {
		svc, repo := setupService()
		repo.On("AddOrder", ctx, mock.Anything).Return(ErrDuplicateOrderID)

		o, err := svc.PlaceOrder(ctx, PlaceOrderInput{CustomerName: "Mia", Items: []OrderItem{{Name: "Tea", Quantity: 1, Price: 2}}})
		assert.Nil(t, o)
		assert.ErrorIs(t, err, ErrDuplicateOrderID)
	})

	t.Run("Closed store still returns the order", func(t *testing.T) {
		svc, repo := setupService()
		repo.On("AddOrder", ctx, mock.Anything).Return(ErrStoreClosed)

		o, err := svc.PlaceOrder(ctx, PlaceOrderInput{CustomerName: "Mia", Items: []OrderItem{{Name: "Tea", Quantity: 1, Price: 2}}})
		require.NoError(t, err)
		assert.Equal(t, 2.0, o.Total)
	})
}

func TestService_RepeatOrder(t *testing.T) {
	ctx := context.Background()
	src := Order{
		ID:           "100",
		Date:         "2024-01-01T10:00:00.000Z",
		CustomerName: "Ola",
		Items:        []OrderItem{{Name: "Espresso", Quantity: 2, Price: 2}},
		Total:        4,
		Status:       StatusDelivered,
	}

	t.Run("Success creates a new pending order", func(t *testing.T) {
		svc, repo := setupService()
		repo.On("FindOrder", "100").Return(src, true)

		var added Order
		repo.On("AddOrder", ctx, mock.Anything).Run(func(args mock.Arguments) {
			added = args.Get(1).(Order)
		}).Return(nil)

		o, err := svc.RepeatOrder(ctx, "100")
		require.NoError(t, err)
		assert.NotEqual(t, src.ID, o.ID)
		assert.NotEqual(t, src.Date, o.Date)
		assert.Equal(t, StatusPending, o.Status)
		assert.Equal(t, src.Items, o.Items)
		assert.Equal(t, src.Total, o.Total)
		assert.Equal(t, src.CustomerName, o.CustomerName)
		assert.Equal(t, *o, added)
		repo.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Not found", func(t *testing.T) {
		svc, repo := setupService()
		repo.On("FindOrder", "404").Return(Order{}, false)

		o, err := svc.RepeatOrder(ctx, "404")
		assert.Nil(t, o)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("Prefill", func(t *testing.T) {
		svc, repo := setupService()
		repo.On("FindOrder", "100").Return(src, true)

		in, err := svc.PrefillRepeat(ctx, "100")
		require.NoError(t, err)
		assert.Equal(t, "Ola", in.CustomerName)
		assert.Equal(t, src.Items, in.Items)

		in.Items[0].Quantity = 9
		assert.Equal(t, 2, src.Items[0].Quantity)
	})
}

func TestService_Favorites(t *testing.T) {
	ctx := context.Background()
	src := Order{ID: "100", Date: "2024-01-01T10:00:00.000Z", Items: []OrderItem{{Name: "Tea", Quantity: 1, Price: 2}}, Total: 2}

	t.Run("SaveAsFavorite", func(t *testing.T) {
		svc, repo := setupService()
		repo.On("FindOrder", "100").Return(src, true)
		repo.On("AddFavoriteOrder", ctx, mock.MatchedBy(func(f FavoriteOrder) bool {
			return f.ID != "" && f.ID != src.ID && f.Name == "Order from 2024-01-01" && f.Total == 2
		})).Return(nil)

		fav, err := svc.SaveAsFavorite(ctx, "100")
		require.NoError(t, err)
		assert.Equal(t, "Order from 2024-01-01", fav.Name)
		repo.AssertExpectations(t)
	})

	t.Run("SaveAsFavorite unknown order", func(t *testing.T) {
		svc, repo := setupService()
		repo.On("FindOrder", "x").Return(Order{}, false)

		_, err := svc.SaveAsFavorite(ctx, "x")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("RepeatFavorite", func(t *testing.T) {
		svc, repo := setupService()
		fav := FavoriteOrder{ID: "f1", Name: "Usual", Items: src.Items, Total: 2}
		repo.On("FindFavoriteOrder", "f1").Return(fav, true)
		repo.On("AddOrder", ctx, mock.Anything).Return(nil)

		o, err := svc.RepeatFavorite(ctx, "f1")
		require.NoError(t, err)
		assert.Equal(t, StatusPending, o.Status)
		assert.Equal(t, fav.Items, o.Items)
		assert.Equal(t, 2.0, o.Total)
	})

	t.Run("RepeatFavorite unknown", func(t *testing.T) {
		svc, repo := setupService()
		repo.On("FindFavoriteOrder", "nope").Return(FavoriteOrder{}, false)

		_, err := svc.RepeatFavorite(ctx, "nope")
		assert.ErrorIs(t, err, ErrFavoriteNotFound)
	})

	t.Run("RemoveFavorite tolerates closed store", func(t *testing.T) {
		svc, repo := setupService()
		repo.On("RemoveFavoriteOrder", ctx, "f1").Return(true, ErrStoreClosed)

		removed, err := svc.RemoveFavorite(ctx, "f1")
		assert.NoError(t, err)
		assert.True(t, removed)
	})
}

func TestService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, repo := setupService()
		repo.On("UpdateOrderStatus", ctx, "1", StatusCancelled).Return(true, nil)
		repo.On("FindOrder", "1").Return(Order{ID: "1", Status: StatusCancelled}, true)

		o, err := svc.UpdateStatus(ctx, "1", "cancelled")
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, o.Status)
	})

	t.Run("Unknown status", func(t *testing.T) {
		svc, repo := setupService()
		_, err := svc.UpdateStatus(ctx, "1", "Shipped")
		assert.ErrorIs(t, err, ErrInvalidStatus)
		repo.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown order is a no-op", func(t *testing.T) {
		svc, repo := setupService()
		repo.On("UpdateOrderStatus", ctx, "9", StatusPending).Return(false, nil)

		o, err := svc.UpdateStatus(ctx, "9", "Pending")
		assert.NoError(t, err)
		assert.Nil(t, o)
	})

	t.Run("Repository error", func(t *testing.T) {
		svc, repo := setupService()
		repo.On("UpdateOrderStatus", ctx, "1", StatusPending).Return(true, errors.New("encode"))

		_, err := svc.UpdateStatus(ctx, "1", "Pending")
		assert.Error(t, err)
	})
}

func TestService_DeleteOrder(t *testing.T) {
	ctx := context.Background()
	svc, repo := setupService()
	repo.On("DeleteOrder", ctx, "1").Return(true, nil)
	repo.On("DeleteOrder", ctx, "2").Return(false, nil)

	deleted, err := svc.DeleteOrder(ctx, "1")
	assert.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.DeleteOrder(ctx, "2")
	assert.NoError(t, err)
	assert.False(t, deleted)
}

func TestService_RateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Logs the rating", func(t *testing.T) {
		logs := observe(t)
		svc, repo := setupService()
		repo.On("FindOrder", "1").Return(Order{ID: "1"}, true)

		require.NoError(t, svc.RateOrder(ctx, "1", 4))

		rated := logs.FilterMessage("order rated").FilterLevelExact(zapcore.InfoLevel)
		require.Equal(t, 1, rated.Len())
		assert.Equal(t, int64(4), rated.All()[0].ContextMap()["stars"])
	})

	t.Run("Out of range", func(t *testing.T) {
		svc, _ := setupService()
		assert.ErrorIs(t, svc.RateOrder(ctx, "1", 0), ErrInvalidRating)
		assert.ErrorIs(t, svc.RateOrder(ctx, "1", 6), ErrInvalidRating)
	})

	t.Run("Unknown order", func(t *testing.T) {
		svc, repo := setupService()
		repo.On("FindOrder", "1").Return(Order{}, false)
		assert.ErrorIs(t, svc.RateOrder(ctx, "1", 5), ErrOrderNotFound)
	})
}

func TestService_ListOrders(t *testing.T) {
	ctx := context.Background()
	svc, repo := setupService()
	f := ListFilter{Status: StatusAll, RecentOnly: true}
	repo.On("ListOrders", f).Return([]Order{mkOrder(2, StatusPending, 3.5), mkOrder(1, StatusPending, 2.5)})

	orders, sum := svc.ListOrders(ctx, f)
	assert.Len(t, orders, 2)
	assert.Equal(t, 2, sum.Count)
	assert.Equal(t, "€6.00", sum.Total)
}

func TestService_WithStore(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, newMemoryKV())
	svc := newService(store, time.Now)

	o, err := svc.PlaceOrder(ctx, PlaceOrderInput{CustomerName: "Eva", Items: []OrderItem{{Name: "Latte", Quantity: 1, Price: 3.5}}})
	require.NoError(t, err)

	fav, err := svc.SaveAsFavorite(ctx, o.ID)
	require.NoError(t, err)

	deleted, err := svc.DeleteOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	again, err := svc.RepeatFavorite(ctx, fav.ID)
	require.NoError(t, err)
	assert.Len(t, store.Orders(), 1)
	assert.Equal(t, again.ID, store.Orders()[0].ID)
}

func TestService_SameClockTickGetsDistinctIDs(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, newMemoryKV())
	svc := newService(store, func() time.Time { return fixedNow })

	input := PlaceOrderInput{CustomerName: "Eva", Items: []OrderItem{{Name: "Tea", Quantity: 1, Price: 2}}}
	first, err := svc.PlaceOrder(ctx, input)
	require.NoError(t, err)
	second, err := svc.PlaceOrder(ctx, input)
	require.NoError(t, err)
	repeated, err := svc.RepeatOrder(ctx, first.ID)
	require.NoError(t, err)

	assert.Equal(t, NewOrderID(fixedNow), first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, second.ID, repeated.ID)
	assert.Len(t, store.Orders(), 3)
}
