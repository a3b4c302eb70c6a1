package transport

import (
	"net/http"
)

type addToCartRequest struct {
	ProductID string `json:"productId"`
}

type updateCartRequest struct {
	Delta int `json:"delta"`
}

type checkoutRequest struct {
	CustomerName string `json:"customerName"`
}

func (h *handler) getCart(w http.ResponseWriter, r *http.Request) {
	v, err := h.Cart.GetCart(r.Context(), deviceID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.Cart.ClearCart(r.Context(), deviceID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.ProductID == "" {
		writeError(w, r, errBadRequest("productId is required"))
		return
	}

	v, err := h.Cart.AddToCart(r.Context(), deviceID(r), req.ProductID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateCartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	v, err := h.Cart.UpdateCartQuantity(r.Context(), deviceID(r), r.PathValue("productId"), req.Delta)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	v, err := h.Cart.RemoveFromCart(r.Context(), deviceID(r), r.PathValue("productId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.Cart.Checkout(r.Context(), deviceID(r), req.CustomerName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}
