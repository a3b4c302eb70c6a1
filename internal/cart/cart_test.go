package cart

import (
	"testing"

	"cafebar-be/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	coffee = catalog.Product{ID: "1", Name: "Coffee", Price: 2.50}
	latte  = catalog.Product{ID: "2", Name: "Latte", Price: 3.50}
	tea    = catalog.Product{ID: "5", Name: "Tea", Price: 2.00}
)

func TestCart_AddKeepsInsertionOrder(t *testing.T) {
	c := New()
	c.Add(latte)
	c.Add(coffee)
	line := c.Add(latte)

	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, "€7.00", line.Subtotal)

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "2", lines[0].ProductID)
	assert.Equal(t, "1", lines[1].ProductID)
}

func TestCart_UpdateQuantity(t *testing.T) {
	c := New()
	c.Add(coffee)
	c.Add(tea)

	q, err := c.UpdateQuantity("1", 3)
	require.NoError(t, err)
	assert.Equal(t, 4, q)

	q, err = c.UpdateQuantity("5", -5)
	require.NoError(t, err)
	assert.Zero(t, q)
	assert.Len(t, c.Lines(), 1)

	_, err = c.UpdateQuantity("5", 1)
	assert.ErrorIs(t, err, ErrCartItemNotFound)
}

func TestCart_RemoveAndClear(t *testing.T) {
	c := New()
	c.Add(coffee)
	c.Add(latte)

	require.NoError(t, c.Remove("1"))
	assert.ErrorIs(t, c.Remove("1"), ErrCartItemNotFound)
	assert.Len(t, c.Lines(), 1)

	c.Clear()
	assert.Empty(t, c.Lines())
	assert.Zero(t, c.Total())
}

func TestCart_View(t *testing.T) {
	c := New()
	c.Add(coffee)
	c.Add(coffee)
	c.Add(tea)
	c.Add(tea)
	c.Add(tea)

	v := c.View()
	assert.Equal(t, 5, v.ItemCount)
	assert.InDelta(t, 11.0, v.Total, 1e-9)
	assert.Equal(t, "€11.00", v.Formatted)

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "Coffee", items[0].Name)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestCart_TakeAndRestore(t *testing.T) {
	c := New()
	c.Add(coffee)
	c.Add(latte)

	taken := c.Take()
	require.Len(t, taken, 2)
	assert.Empty(t, c.Lines())

	c.Add(latte)
	c.Add(tea)
	c.Restore(taken)

	lines := c.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "1", lines[0].ProductID)
	assert.Equal(t, "2", lines[1].ProductID)
	assert.Equal(t, 2, lines[1].Quantity)
	assert.Equal(t, "5", lines[2].ProductID)
}
