package cart

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one variant held in a session cart. UnitPrice is the snapshot taken
// when the line was first added; checkout decides whether to honor or refresh
// it, the cart itself never re-prices.
type Line struct {
	VariantID uuid.UUID       `json:"variant_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Subtotal multiplies the snapshot price by the quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the session cart value. Lines keep insertion order; the index makes
// per-variant lookups cheap. The zero value is not usable, construct with New.
type Cart struct {
	lines []Line
	index map[uuid.UUID]int
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{index: map[uuid.UUID]int{}}
}

// Add appends a new line or increments an existing one. The price snapshot of
// an existing line is kept; only the first add sets it.
func (c *Cart) Add(variantID uuid.UUID, qty int, unitPrice decimal.Decimal) error {
	if qty <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", qty)
	}
	if pos, ok := c.index[variantID]; ok {
		c.lines[pos].Quantity += qty
		return nil
	}
	c.lines = append(c.lines, Line{VariantID: variantID, Quantity: qty, UnitPrice: unitPrice})
	c.index[variantID] = len(c.lines) - 1
	return nil
}

// SetQuantity replaces the quantity of an existing line. Zero removes the
// line; negatives are rejected.
func (c *Cart) SetQuantity(variantID uuid.UUID, qty int) (bool, error) {
	if qty < 0 {
		return false, fmt.Errorf("quantity must not be negative, got %d", qty)
	}
	pos, ok := c.index[variantID]
	if !ok {
		return false, nil
	}
	if qty == 0 {
		c.removeAt(pos)
		return true, nil
	}
	c.lines[pos].Quantity = qty
	return true, nil
}

// Remove drops the line for the given variant if present.
func (c *Cart) Remove(variantID uuid.UUID) bool {
	pos, ok := c.index[variantID]
	if !ok {
		return false
	}
	c.removeAt(pos)
	return true
}

func (c *Cart) removeAt(pos int) {
	c.lines = append(c.lines[:pos], c.lines[pos+1:]...)
	c.reindex()
}

func (c *Cart) reindex() {
	c.index = make(map[uuid.UUID]int, len(c.lines))
	for i, line := range c.lines {
		c.index[line.VariantID] = i
	}
}

// Clear drops every line.
func (c *Cart) Clear() {
	c.lines = nil
	c.index = map[uuid.UUID]int{}
}

// Get returns the line for a variant.
func (c *Cart) Get(variantID uuid.UUID) (Line, bool) {
	pos, ok := c.index[variantID]
	if !ok {
		return Line{}, false
	}
	return c.lines[pos], true
}

// Lines returns the lines in insertion order. The slice is a copy.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// LineCount is the number of distinct variants.
func (c *Cart) LineCount() int {
	return len(c.lines)
}

// ItemCount is the total number of units across all lines.
func (c *Cart) ItemCount() int {
	count := 0
	for _, line := range c.lines {
		count += line.Quantity
	}
	return count
}

// IsEmpty reports whether the cart holds no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Total sums the snapshot subtotals.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// MarshalJSON serializes the cart as an ordered array of lines.
func (c *Cart) MarshalJSON() ([]byte, error) {
	if c.lines == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.lines)
}

// UnmarshalJSON restores the cart from its serialized line array, rebuilding
// the index and rejecting corrupt quantities.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	c.lines = nil
	c.index = map[uuid.UUID]int{}
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		if _, ok := c.index[line.VariantID]; ok {
			continue
		}
		c.lines = append(c.lines, line)
		c.index[line.VariantID] = len(c.lines) - 1
	}
	return nil
}
