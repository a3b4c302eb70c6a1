package transport

import (
	"net/http"
	"strconv"

	"cafebar-be/internal/logger"
	"cafebar-be/internal/order"
)

// deviceID is the session's device, set by the auth middleware.
func deviceID(r *http.Request) string {
	return logger.DeviceIDFrom(r.Context())
}

// listFilter reads ?status=&q=&recent=&sort= into an order filter.
func listFilter(r *http.Request) (order.ListFilter, error) {
	q := r.URL.Query()

	status, err := order.ParseStatusFilter(q.Get("status"))
	if err != nil {
		return order.ListFilter{}, err
	}

	recent := false
	if v := q.Get("recent"); v != "" {
		recent, err = strconv.ParseBool(v)
		if err != nil {
			return order.ListFilter{}, errBadRequest("recent must be a boolean")
		}
	}

	return order.ListFilter{
		Status:     status,
		Search:     q.Get("q"),
		RecentOnly: recent,
		SortBy:     order.ParseSortKey(q.Get("sort")),
	}, nil
}
