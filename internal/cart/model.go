package cart

// Line is one product in a cart.
type Line struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Subtotal  string  `json:"subtotal"`
}

// View is a cart snapshot as returned to clients.
type View struct {
	Lines     []Line  `json:"lines"`
	ItemCount int     `json:"itemCount"`
	Total     float64 `json:"total"`
	Formatted string  `json:"formattedTotal"`
}
