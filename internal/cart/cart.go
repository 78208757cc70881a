// Package cart holds a buyer's pending order for a single store.
package cart

import "github.com/lukman83/campusfair/internal/models"

type Item struct {
	Product models.Product `json:"product"`
	Qty     int            `json:"qty"`
}

// Subtotal is the item's price times its quantity.
func (i Item) Subtotal() int64 { return i.Product.Price * int64(i.Qty) }

// Cart keeps items in the order they were first added.
type Cart struct {
	items []Item
}

// Add puts one more unit of p in the cart.
func (c *Cart) Add(p models.Product) {
	if i := c.index(p.ID); i >= 0 {
		c.items[i].Qty++
		return
	}
	c.items = append(c.items, Item{Product: p, Qty: 1})
}

// AddQty puts n more units of p in the cart in one step. n below 1 is
// ignored.
func (c *Cart) AddQty(p models.Product, n int) {
	if n < 1 {
		return
	}
	if i := c.index(p.ID); i >= 0 {
		c.items[i].Qty += n
		return
	}
	c.items = append(c.items, Item{Product: p, Qty: n})
}

// Increase adds a unit of a product already in the cart.
func (c *Cart) Increase(id string) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.items[i].Qty++
	return true
}

// Decrease removes a unit and drops the item when none are left.
func (c *Cart) Decrease(id string) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.items[i].Qty--
	if c.items[i].Qty <= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
	return true
}

func (c *Cart) Items() []Item {
	return append([]Item(nil), c.items...)
}

// Count is the number of units across all items.
func (c *Cart) Count() int {
	n := 0
	for _, it := range c.items {
		n += it.Qty
	}
	return n
}

func (c *Cart) Total() int64 {
	var t int64
	for _, it := range c.items {
		t += it.Subtotal()
	}
	return t
}

func (c *Cart) Empty() bool { return len(c.items) == 0 }

func (c *Cart) index(id string) int {
	for i, it := range c.items {
		if it.Product.ID == id {
			return i
		}
	}
	return -1
}
