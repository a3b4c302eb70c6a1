package order

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RecentLimit is how many orders count as "recent".
const RecentLimit = 5

type StatusFilter string

const StatusAll StatusFilter = "All"

type SortKey string

const (
	SortByDate  SortKey = "date"
	SortByTotal SortKey = "total"
)

type ListFilter struct {
	Status     StatusFilter
	Search     string
	RecentOnly bool
	SortBy     SortKey
}

// Recent returns a copy of the first RecentLimit orders.
func Recent(orders []Order) []Order {
	n := min(RecentLimit, len(orders))
	out := make([]Order, n)
	for i := 0; i < n; i++ {
		out[i] = orders[i].clone()
	}
	return out
}

// ApplyFilter composes recency window -> status -> search -> sort.
//
// The recency window is taken from the unfiltered list, so RecentOnly plus a
// status yields the matching orders among the five newest overall, not the
// five newest matching orders.
func ApplyFilter(orders []Order, f ListFilter) []Order {
	src := orders
	if f.RecentOnly {
		src = orders[:min(RecentLimit, len(orders))]
	}

	query := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]Order, 0, len(src))
	for _, o := range src {
		if f.Status != "" && f.Status != StatusAll && string(o.Status) != string(f.Status) {
			continue
		}
		if query != "" && !matchesSearch(o, query) {
			continue
		}
		out = append(out, o.clone())
	}

	switch f.SortBy {
	case SortByTotal:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	default:
		sort.SliceStable(out, func(i, j int) bool { return newerThan(out[i], out[j]) })
	}
	return out
}

func matchesSearch(o Order, query string) bool {
	return strings.Contains(strings.ToLower(o.ID), query) ||
		strings.Contains(strings.ToLower(o.CustomerName), query)
}

func newerThan(a, b Order) bool {
	ta, okA := a.CreatedAt()
	tb, okB := b.CreatedAt()
	if okA && okB {
		return ta.After(tb)
	}
	if okA != okB {
		// unparsable dates sink to the bottom
		return okA
	}
	return a.Date > b.Date
}

// ParseStatusFilter accepts "All" (or empty) and any order status.
func ParseStatusFilter(raw string) (StatusFilter, error) {
	if raw == "" || strings.EqualFold(raw, string(StatusAll)) {
		return StatusAll, nil
	}
	s, err := ParseStatus(raw)
	if err != nil {
		return "", err
	}
	return StatusFilter(s), nil
}

func ParseSortKey(raw string) SortKey {
	if strings.EqualFold(raw, string(SortByTotal)) {
		return SortByTotal
	}
	return SortByDate
}

// Summary is the footer of an order list.
type Summary struct {
	Count int    `json:"count"`
	Total string `json:"total"`
	Since string `json:"since,omitempty"`
}

func Summarize(orders []Order) Summary {
	var oldest time.Time
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(decimal.NewFromFloat(o.Total))
		if t, ok := o.CreatedAt(); ok && (oldest.IsZero() || t.Before(oldest)) {
			oldest = t
		}
	}

	s := Summary{Count: len(orders), Total: FormatDecimal(total)}
	if !oldest.IsZero() {
		s.Since = oldest.Format("2006-01-02")
	}
	return s
}
