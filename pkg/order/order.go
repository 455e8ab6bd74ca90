// Package order defines the immutable order domain model and the
// stage-dependent outcome record produced by the pipeline.
package order

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jzx17/orderflow/pkg/types"
)

// LineItem is one ordered item with a strictly positive quantity
type LineItem struct {
	ItemCode string
	Quantity int
}

// NewLineItem creates a line item. It fails with a ValidationError when
// quantity is not positive.
func NewLineItem(itemCode string, quantity int) (LineItem, error) {
	if quantity <= 0 {
		return LineItem{}, types.NewValidationError("quantity",
			fmt.Sprintf("must be greater than zero, got %d", quantity))
	}
	return LineItem{ItemCode: itemCode, Quantity: quantity}, nil
}

// Order is an immutable customer order. Created once per request, never
// mutated.
type Order struct {
	ID    string
	Items []LineItem
}

// New creates an order. An empty id is replaced with a generated one; an
// order must carry at least one line item.
func New(id string, items ...LineItem) (Order, error) {
	if id == "" {
		id = "ORDER-" + uuid.NewString()
	}
	if len(items) == 0 {
		return Order{}, types.NewValidationError("items", "order must contain at least one line item")
	}

	copied := make([]LineItem, len(items))
	copy(copied, items)

	return Order{ID: id, Items: copied}, nil
}

// MustNew is like New but panics on validation failure. For tests and
// hard-coded scenarios only.
func MustNew(id string, items ...LineItem) Order {
	o, err := New(id, items...)
	if err != nil {
		panic(err)
	}
	return o
}

// TotalQuantity sums the quantities across all line items
func (o Order) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}
