package cart

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func price(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestAddKeepsFirstPriceSnapshot(t *testing.T) {
	c := New()
	id := uuid.New()

	if err := c.Add(id, 2, price("10.00")); err != nil {
		t.Fatalf("add: %v", err)
	}
	// Second add increments quantity but must not re-price the line.
	if err := c.Add(id, 1, price("12.50")); err != nil {
		t.Fatalf("add again: %v", err)
	}

	line, ok := c.Get(id)
	if !ok {
		t.Fatal("expected line present")
	}
	if line.Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", line.Quantity)
	}
	if !line.UnitPrice.Equal(price("10.00")) {
		t.Fatalf("expected original snapshot 10.00, got %s", line.UnitPrice)
	}
	if !c.Total().Equal(price("30.00")) {
		t.Fatalf("expected total 30.00, got %s", c.Total())
	}
}

func TestAddRejectsNonPositiveQuantity(t *testing.T) {
	c := New()
	if err := c.Add(uuid.New(), 0, price("5.00")); err == nil {
		t.Fatal("expected error for zero quantity")
	}
	if err := c.Add(uuid.New(), -1, price("5.00")); err == nil {
		t.Fatal("expected error for negative quantity")
	}
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	c := New()
	id := uuid.New()
	if err := c.Add(id, 2, price("8.00")); err != nil {
		t.Fatalf("add: %v", err)
	}

	found, err := c.SetQuantity(id, 0)
	if err != nil || !found {
		t.Fatalf("set quantity: found=%v err=%v", found, err)
	}
	if !c.IsEmpty() {
		t.Fatal("expected empty cart after zeroing the only line")
	}

	found, err = c.SetQuantity(uuid.New(), 5)
	if err != nil {
		t.Fatalf("set quantity unknown: %v", err)
	}
	if found {
		t.Fatal("expected not found for unknown variant")
	}
}

func TestJSONRoundTripPreservesOrder(t *testing.T) {
	c := New()
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for i, id := range ids {
		if err := c.Add(id, i+1, price("10.00")); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	payload, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	restored := New()
	if err := json.Unmarshal(payload, restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	lines := restored.Lines()
	if len(lines) != len(ids) {
		t.Fatalf("expected %d lines, got %d", len(ids), len(lines))
	}
	for i, line := range lines {
		if line.VariantID != ids[i] {
			t.Fatalf("line %d out of order", i)
		}
		if line.Quantity != i+1 {
			t.Fatalf("line %d quantity mismatch", i)
		}
	}
}

func TestUnmarshalSkipsCorruptLines(t *testing.T) {
	dup := uuid.New()
	raw, _ := json.Marshal([]Line{
		{VariantID: dup, Quantity: 1, UnitPrice: price("5.00")},
		{VariantID: uuid.New(), Quantity: 0, UnitPrice: price("9.00")},
		{VariantID: dup, Quantity: 4, UnitPrice: price("6.00")},
	})

	c := New()
	if err := json.Unmarshal(raw, c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.LineCount() != 1 {
		t.Fatalf("expected 1 surviving line, got %d", c.LineCount())
	}
	line, _ := c.Get(dup)
	if line.Quantity != 1 {
		t.Fatalf("expected first duplicate to win, got quantity %d", line.Quantity)
	}
}

func TestEmptyCartMarshalsAsEmptyArray(t *testing.T) {
	payload, err := json.Marshal(New())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(payload) != "[]" {
		t.Fatalf("expected [], got %s", payload)
	}
}

// Random op sequences against a plain map model keep the index and the line
// slice honest.
func TestCartMatchesMapModel(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	variants := make([]uuid.UUID, 8)
	for i := range variants {
		variants[i] = uuid.New()
	}

	c := New()
	model := map[uuid.UUID]int{}

	for i := 0; i < 500; i++ {
		id := variants[rng.Intn(len(variants))]
		switch rng.Intn(4) {
		case 0:
			qty := rng.Intn(5) + 1
			if err := c.Add(id, qty, price("10.00")); err != nil {
				t.Fatalf("add: %v", err)
			}
			model[id] += qty
		case 1:
			qty := rng.Intn(6)
			found, err := c.SetQuantity(id, qty)
			if err != nil {
				t.Fatalf("set quantity: %v", err)
			}
			if _, ok := model[id]; ok != found {
				t.Fatalf("found mismatch for set quantity")
			}
			if found {
				if qty == 0 {
					delete(model, id)
				} else {
					model[id] = qty
				}
			}
		case 2:
			removed := c.Remove(id)
			if _, ok := model[id]; ok != removed {
				t.Fatalf("found mismatch for remove")
			}
			delete(model, id)
		case 3:
			line, ok := c.Get(id)
			want, modelOk := model[id]
			if ok != modelOk {
				t.Fatalf("presence mismatch for get")
			}
			if ok && line.Quantity != want {
				t.Fatalf("quantity mismatch: cart=%d model=%d", line.Quantity, want)
			}
		}

		if c.LineCount() != len(model) {
			t.Fatalf("line count mismatch: cart=%d model=%d", c.LineCount(), len(model))
		}
		total := 0
		for _, qty := range model {
			total += qty
		}
		if c.ItemCount() != total {
			t.Fatalf("item count mismatch: cart=%d model=%d", c.ItemCount(), total)
		}
	}
}
