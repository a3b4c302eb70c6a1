// Package catalog serves the fixed menu and coffee brand list.
package catalog

import "strings"

var menu = []Product{
	{ID: "1", Name: "Coffee", Price: 2.50},
	{ID: "2", Name: "Latte", Price: 3.50},
	{ID: "3", Name: "Espresso", Price: 2.00},
	{ID: "4", Name: "Cappuccino", Price: 3.00},
	{ID: "5", Name: "Tea", Price: 2.00},
}

var brands = []Brand{
	{ID: "1", Name: "Espresso", Description: "Strong, concentrated coffee served in small shots.", ImageURL: "https://example.com/espresso.jpg"},
	{ID: "2", Name: "Cappuccino", Description: "Espresso with steamed milk foam.", ImageURL: "https://example.com/cappuccino.jpg"},
	{ID: "3", Name: "Latte", Description: "Espresso with steamed milk and a small layer of foam.", ImageURL: "https://example.com/latte.jpg"},
	{ID: "4", Name: "Americano", Description: "Espresso diluted with hot water.", ImageURL: "https://example.com/americano.jpg"},
}

// Catalog is read-only; a zero value is not usable, use Default or New.
type Catalog struct {
	products []Product
	brands   []Brand
}

// Default returns the built-in menu.
func Default() *Catalog {
	return New(menu, brands)
}

func New(products []Product, brands []Brand) *Catalog {
	return &Catalog{
		products: append([]Product(nil), products...),
		brands:   append([]Brand(nil), brands...),
	}
}

func (c *Catalog) Products() []Product {
	return append([]Product{}, c.products...)
}

func (c *Catalog) Product(id string) (Product, error) {
	for _, p := range c.products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrProductNotFound
}

// ProductByName matches case-insensitively.
func (c *Catalog) ProductByName(name string) (Product, error) {
	name = strings.TrimSpace(name)
	for _, p := range c.products {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Product{}, ErrProductNotFound
}

func (c *Catalog) Brands() []Brand {
	return append([]Brand{}, c.brands...)
}

func (c *Catalog) Brand(id string) (Brand, error) {
	for _, b := range c.brands {
		if b.ID == id {
			return b, nil
		}
	}
	return Brand{}, ErrBrandNotFound
}
