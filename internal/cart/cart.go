package cart

import (
	"sync"

	"cafebar-be/internal/catalog"
	"cafebar-be/internal/order"
)

// Cart holds lines in insertion order. Quantities never go below zero and a
// line whose quantity reaches zero is dropped.
type Cart struct {
	mu    sync.Mutex
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// Add increments the product's quantity by one, creating the line if needed.
func (c *Cart) Add(p catalog.Product) Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(p.ID); i >= 0 {
		c.lines[i].Quantity++
		return withSubtotal(c.lines[i])
	}

	l := Line{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: 1}
	c.lines = append(c.lines, l)
	return withSubtotal(l)
}

// UpdateQuantity applies delta, clamping at zero. It reports the resulting
// quantity; zero means the line was removed.
func (c *Cart) UpdateQuantity(productID string, delta int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(productID)
	if i < 0 {
		return 0, ErrCartItemNotFound
	}

	q := max(0, c.lines[i].Quantity+delta)
	if q == 0 {
		c.lines = append(c.lines[:i:i], c.lines[i+1:]...)
		return 0, nil
	}
	c.lines[i].Quantity = q
	return q, nil
}

func (c *Cart) Remove(productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(productID)
	if i < 0 {
		return ErrCartItemNotFound
	}
	c.lines = append(c.lines[:i:i], c.lines[i+1:]...)
	return nil
}

func (c *Cart) Clear() {
	c.mu.Lock()
	c.lines = nil
	c.mu.Unlock()
}

// Take empties the cart and returns the lines it held.
func (c *Cart) Take() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.lines
	c.lines = nil
	return out
}

// Restore puts taken lines back ahead of anything added since, merging
// quantities of products present in both.
func (c *Cart) Restore(taken []Line) {
	c.mu.Lock()
	defer c.mu.Unlock()

	merged := append([]Line(nil), taken...)
	for _, l := range c.lines {
		found := false
		for i := range merged {
			if merged[i].ProductID == l.ProductID {
				merged[i].Quantity += l.Quantity
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, l)
		}
	}
	c.lines = merged
}

func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Line, len(c.lines))
	for i, l := range c.lines {
		out[i] = withSubtotal(l)
	}
	return out
}

// Items converts the lines into order items.
func (c *Cart) Items() []order.OrderItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return toItems(c.lines)
}

func (c *Cart) Total() float64 {
	return order.CalculateTotal(c.Items())
}

func (c *Cart) View() View {
	lines := c.Lines()
	items := toItems(lines)
	count := 0
	for _, l := range lines {
		count += l.Quantity
	}

	return View{
		Lines:     lines,
		ItemCount: count,
		Total:     order.CalculateTotal(items),
		Formatted: order.FormatDecimal(order.ExactTotal(items)),
	}
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func toItems(lines []Line) []order.OrderItem {
	items := make([]order.OrderItem, len(lines))
	for i, l := range lines {
		items[i] = order.OrderItem{Name: l.Name, Quantity: l.Quantity, Price: l.Price}
	}
	return items
}

func withSubtotal(l Line) Line {
	l.Subtotal = order.FormatDecimal(order.LineTotal(order.OrderItem{Quantity: l.Quantity, Price: l.Price}))
	return l
}
