package order

import (
	"fmt"
	"strings"
	"time"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusProcessing OrderStatus = "Processing"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

var allStatuses = []OrderStatus{StatusPending, StatusProcessing, StatusDelivered, StatusCancelled}

func Statuses() []OrderStatus {
	return append([]OrderStatus(nil), allStatuses...)
}

func (s OrderStatus) Valid() bool {
	for _, v := range allStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseStatus matches case-insensitively and returns the canonical value.
func ParseStatus(raw string) (OrderStatus, error) {
	for _, v := range allStatuses {
		if strings.EqualFold(strings.TrimSpace(raw), string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

type OrderItem struct {
	Name     string  `json:"name" validate:"required"`
	Quantity int     `json:"quantity" validate:"gte=0"`
	Price    float64 `json:"price" validate:"gte=0"`
}

type Order struct {
	ID           string      `json:"id"`
	Date         string      `json:"date"`
	CustomerName string      `json:"customerName,omitempty"`
	Items        []OrderItem `json:"items"`
	Total        float64     `json:"total"`
	Status       OrderStatus `json:"status"`
}

// FavoriteOrder is a reusable snapshot of items, independent of the order
// it was saved from.
type FavoriteOrder struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Items []OrderItem `json:"items"`
	Total float64     `json:"total"`
}

// DateLayout matches the millisecond ISO-8601 form the mobile client writes.
const DateLayout = "2006-01-02T15:04:05.000Z07:00"

var dateLayouts = []string{time.RFC3339Nano, DateLayout, "2006-01-02"}

func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// CreatedAt parses Date; orders written by older clients may carry a bare date.
func (o Order) CreatedAt() (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, o.Date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func cloneItems(items []OrderItem) []OrderItem {
	if items == nil {
		return []OrderItem{}
	}
	out := make([]OrderItem, len(items))
	copy(out, items)
	return out
}

func (o Order) clone() Order {
	o.Items = cloneItems(o.Items)
	return o
}

func (f FavoriteOrder) clone() FavoriteOrder {
	f.Items = cloneItems(f.Items)
	return f
}
