package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cafebar-be/internal/cart"
	"cafebar-be/internal/catalog"
	"cafebar-be/internal/issue"
	"cafebar-be/internal/logger"
	"cafebar-be/internal/order"
	"cafebar-be/internal/user"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// badRequestError is a malformed request detected by the transport itself.
type badRequestError string

func (e badRequestError) Error() string { return string(e) }

func errBadRequest(msg string) error { return badRequestError(msg) }

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L().Warn("failed to encode response", zap.Error(err))
	}
}

// writeError maps domain errors to status codes. Unknown errors are logged
// and reported as 500 without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("layer", "transport"),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func errorStatus(err error) int {
	var bad badRequestError
	switch {
	case errors.As(err, &bad):
		return http.StatusBadRequest

	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrFavoriteNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrBrandNotFound),
		errors.Is(err, cart.ErrProductNotFound),
		errors.Is(err, cart.ErrCartItemNotFound),
		errors.Is(err, user.ErrProfileNotFound):
		return http.StatusNotFound

	case errors.Is(err, order.ErrInvalidInput),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrInvalidRating),
		errors.Is(err, order.ErrEmptyID),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrMissingCustomer),
		errors.Is(err, cart.ErrCartEmpty),
		errors.Is(err, user.ErrInvalidProfile),
		errors.Is(err, issue.ErrInvalidReport),
		errors.Is(err, issue.ErrUnknownDevice),
		errors.Is(err, issue.ErrUnknownIssue):
		return http.StatusBadRequest

	case errors.Is(err, order.ErrDuplicateOrderID),
		errors.Is(err, order.ErrDuplicateFavoriteID):
		return http.StatusConflict

	case errors.Is(err, cart.ErrMissingSession):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errBadRequest("request body is empty")
		}
		return errBadRequest(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}
