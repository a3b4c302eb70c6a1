package transport

import (
	"net/http"

	"cafebar-be/internal/order"
)

type orderListResponse struct {
	Orders  []order.Order `json:"orders"`
	Summary order.Summary `json:"summary"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type ratingRequest struct {
	Stars int `json:"stars"`
}

func (h *handler) listStatuses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, order.Statuses())
}

func (h *handler) listOrders(w http.ResponseWriter, r *http.Request) {
	f, err := listFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	orders, summary := h.Orders.ListOrders(r.Context(), f)
	writeJSON(w, http.StatusOK, orderListResponse{Orders: orders, Summary: summary})
}

func (h *handler) recentOrders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.OrderStore.RecentOrders())
}

func (h *handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var in order.PlaceOrderInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.Orders.PlaceOrder(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, ok := h.OrderStore.FindOrder(r.PathValue("id"))
	if !ok {
		writeError(w, r, order.ErrOrderNotFound)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// deleteOrder answers 204 for unknown ids as well.
func (h *handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Orders.DeleteOrder(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// updateStatus returns the updated order, or 204 when the id is unknown.
func (h *handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.Orders.UpdateStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if o == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *handler) prefillRepeat(w http.ResponseWriter, r *http.Request) {
	in, err := h.Orders.PrefillRepeat(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

func (h *handler) repeatOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.RepeatOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *handler) saveFavorite(w http.ResponseWriter, r *http.Request) {
	fav, err := h.Orders.SaveAsFavorite(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, fav)
}

func (h *handler) rateOrder(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Orders.RateOrder(r.Context(), r.PathValue("id"), req.Stars); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listFavorites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.OrderStore.FavoriteOrders())
}

func (h *handler) repeatFavorite(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.RepeatFavorite(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *handler) removeFavorite(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Orders.RemoveFavorite(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
