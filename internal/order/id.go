package order

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// NewOrderID derives an id from the creation timestamp in nanoseconds.
func NewOrderID(now time.Time) string {
	return strconv.FormatInt(now.UnixNano(), 10)
}

// idSequence hands out strictly increasing order ids. A clock that repeats a
// reading or steps backwards yields last+1 instead.
type idSequence struct {
	mu   sync.Mutex
	last int64
}

func (q *idSequence) next(now time.Time) string {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := now.UnixNano()
	if n <= q.last {
		n = q.last + 1
	}
	q.last = n
	return strconv.FormatInt(n, 10)
}

func NewFavoriteID() string {
	return uuid.NewString()
}

// FavoriteName labels a favorite by the day its source order was placed.
func FavoriteName(o Order) string {
	if t, ok := o.CreatedAt(); ok {
		return "Order from " + t.Format("2006-01-02")
	}
	if o.Date != "" {
		return "Order from " + o.Date
	}
	return "Order " + o.ID
}
