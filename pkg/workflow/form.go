package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/banyan-furniture/api/pkg/client"
	"github.com/shopspring/decimal"
)

// Validation errors surfaced by the order form before anything is sent to
// the server.
var (
	ErrNoItems            = errors.New("order must contain at least one furniture item")
	ErrLastItem           = errors.New("order must keep at least one furniture item")
	ErrItemIndex          = errors.New("no item at that position")
	ErrQuantityTooLow     = errors.New("quantity must be at least 1")
	ErrBadUnitPrice       = errors.New("unit price must be a number >= 0")
	ErrBadAdvance         = errors.New("advance amount must be a number >= 0")
	ErrAdvanceOverTotal   = errors.New("advance amount cannot exceed the order total")
	ErrCustomerIncomplete = errors.New("customer name, contact number, email and address are required")
)

// OrderCreator submits a finished form. Satisfied by *client.Client.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req client.CreateOrderRequest) (*client.Order, error)
}

// OrderForm accumulates a draft order the way store staff build one: add
// furniture line by line, adjust quantities, then submit. The form validates
// locally so a bad draft never reaches the server.
type OrderForm struct {
	api     OrderCreator
	catalog *FurnitureCache

	Customer client.CustomerInfo
	Items    []client.OrderItem
	Advance  string
	Notes    string
}

// NewOrderForm creates an empty draft backed by the given API and catalog
// cache.
func NewOrderForm(api OrderCreator, catalog *FurnitureCache) *OrderForm {
	return &OrderForm{api: api, catalog: catalog, Advance: "0"}
}

// AddItem appends a line for sku with quantity 1. The unit price is filled
// from the catalog's sale price; staff can override it via UpdateItem.
func (f *OrderForm) AddItem(ctx context.Context, sku string) error {
	piece, err := f.catalog.Get(ctx, sku)
	if err != nil {
		return fmt.Errorf("look up %s: %w", sku, err)
	}

	f.Items = append(f.Items, client.OrderItem{
		Sku:       piece.Sku,
		Quantity:  1,
		UnitPrice: piece.SalePrice,
	})
	return nil
}

// UpdateItem replaces the quantity, unit price and note of the line at index.
func (f *OrderForm) UpdateItem(index int, quantity int, unitPrice, note string) error {
	if index < 0 || index >= len(f.Items) {
		return ErrItemIndex
	}
	if quantity < 1 {
		return ErrQuantityTooLow
	}
	if _, err := parseAmount(unitPrice); err != nil {
		return ErrBadUnitPrice
	}

	f.Items[index].Quantity = quantity
	f.Items[index].UnitPrice = unitPrice
	f.Items[index].Note = note
	return nil
}

// RemoveItem deletes the line at index. An order always keeps at least one
// item, so removing the last line is rejected.
func (f *OrderForm) RemoveItem(index int) error {
	if index < 0 || index >= len(f.Items) {
		return ErrItemIndex
	}
	if len(f.Items) == 1 {
		return ErrLastItem
	}
	f.Items = append(f.Items[:index], f.Items[index+1:]...)
	return nil
}

// Total computes the draft total as the sum of unit price times quantity
// across all lines.
func (f *OrderForm) Total() (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range f.Items {
		price, err := parseAmount(item.UnitPrice)
		if err != nil {
			return decimal.Zero, ErrBadUnitPrice
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total, nil
}

// Validate checks the draft without sending it anywhere.
func (f *OrderForm) Validate() error {
	if len(f.Items) == 0 {
		return ErrNoItems
	}
	for _, item := range f.Items {
		if item.Quantity < 1 {
			return ErrQuantityTooLow
		}
		if _, err := parseAmount(item.UnitPrice); err != nil {
			return ErrBadUnitPrice
		}
	}
	if f.Customer.Name == "" || f.Customer.ContactNumber == "" ||
		f.Customer.Email == "" || f.Customer.Address == "" {
		return ErrCustomerIncomplete
	}

	total, err := f.Total()
	if err != nil {
		return err
	}
	advance, err := parseAmount(f.Advance)
	if err != nil {
		return ErrBadAdvance
	}
	if advance.GreaterThan(total) {
		return ErrAdvanceOverTotal
	}
	return nil
}

// Submit validates the draft, sends it to the server, and resets the form on
// success. A draft that fails validation is never sent.
func (f *OrderForm) Submit(ctx context.Context) (*client.Order, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	total, err := f.Total()
	if err != nil {
		return nil, err
	}

	order, err := f.api.CreateOrder(ctx, client.CreateOrderRequest{
		CustomerInfo:   f.Customer,
		FurnitureItems: f.Items,
		TotalAmount:    total.StringFixed(2),
		AdvanceAmount:  f.Advance,
		Notes:          f.Notes,
	})
	if err != nil {
		return nil, err
	}

	f.Reset()
	return order, nil
}

// Reset clears the draft back to an empty form.
func (f *OrderForm) Reset() {
	f.Customer = client.CustomerInfo{}
	f.Items = nil
	f.Advance = "0"
	f.Notes = ""
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("negative amount")
	}
	return d, nil
}
