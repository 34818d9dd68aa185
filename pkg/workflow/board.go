package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/banyan-furniture/api/pkg/client"
)

// ErrUpdateInFlight is returned when a status change is requested for an
// order that already has one pending.
var ErrUpdateInFlight = errors.New("a status update for this order is already in progress")

// OrderAPI is the slice of the API the board needs. Satisfied by
// *client.Client.
type OrderAPI interface {
	FetchOrders(ctx context.Context) ([]client.Order, error)
	UpdateOrderStatus(ctx context.Context, orderNumber, newStatus string) (*client.Order, error)
}

// Stats summarizes the loaded orders for the dashboard header.
type Stats struct {
	Total        int
	Pending      int
	InProduction int
	Ready        int
	Completed    int
	Cancelled    int
	TotalItems   int
}

// OrderDetail pairs an order with the catalog details of its furniture
// lines, resolved through the shared cache.
type OrderDetail struct {
	Order     client.Order
	Furniture map[string]*client.Furniture
}

// OrderBoard is the single source of truth for the back-office order list.
// It holds the fetched orders, applies status changes with a per-order
// in-flight guard, and patches its copy only after the server confirms.
type OrderBoard struct {
	api     OrderAPI
	catalog *FurnitureCache

	mu       sync.Mutex
	orders   []client.Order
	inFlight map[string]bool
}

// NewOrderBoard creates a board backed by the given API and catalog cache.
func NewOrderBoard(api OrderAPI, catalog *FurnitureCache) *OrderBoard {
	return &OrderBoard{
		api:      api,
		catalog:  catalog,
		inFlight: make(map[string]bool),
	}
}

// Refresh reloads all orders from the server.
func (b *OrderBoard) Refresh(ctx context.Context) error {
	orders, err := b.api.FetchOrders(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.orders = orders
	b.mu.Unlock()
	return nil
}

// Orders returns a copy of the loaded orders.
func (b *OrderBoard) Orders() []client.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]client.Order, len(b.orders))
	copy(out, b.orders)
	return out
}

// UpdateInFlight reports whether a status change is pending for the order,
// so the UI can disable its controls.
func (b *OrderBoard) UpdateInFlight(orderNumber string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inFlight[orderNumber]
}

// SetStatus moves an order to a new status. Only one update per order may be
// in flight; the local copy changes only after the server confirms, so a
// failed request leaves the board untouched. The guard is cleared on both
// outcomes.
func (b *OrderBoard) SetStatus(ctx context.Context, orderNumber, newStatus string) (*client.Order, error) {
	b.mu.Lock()
	if b.inFlight[orderNumber] {
		b.mu.Unlock()
		return nil, ErrUpdateInFlight
	}
	b.inFlight[orderNumber] = true
	b.mu.Unlock()

	updated, err := b.api.UpdateOrderStatus(ctx, orderNumber, newStatus)

	b.mu.Lock()
	delete(b.inFlight, orderNumber)
	if err == nil {
		for i := range b.orders {
			if b.orders[i].OrderNumber == updated.OrderNumber {
				b.orders[i] = *updated
				break
			}
		}
	}
	b.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Filter returns orders matching the query and status. The query is a
// case-insensitive substring match over order number, customer name, contact
// number and mill worker. An empty status matches every status; otherwise
// the status must match exactly.
func (b *OrderBoard) Filter(query, status string) []client.Order {
	q := strings.ToLower(strings.TrimSpace(query))

	b.mu.Lock()
	defer b.mu.Unlock()

	matched := []client.Order{}
	for _, o := range b.orders {
		if status != "" && o.Status != status {
			continue
		}
		if q != "" && !orderMatches(o, q) {
			continue
		}
		matched = append(matched, o)
	}
	return matched
}

func orderMatches(o client.Order, q string) bool {
	return strings.Contains(strings.ToLower(o.OrderNumber), q) ||
		strings.Contains(strings.ToLower(o.CustomerInfo.Name), q) ||
		strings.Contains(strings.ToLower(o.CustomerInfo.ContactNumber), q) ||
		strings.Contains(strings.ToLower(o.MillWorker), q)
}

// OpenDetail resolves the catalog details for every line on the order. SKUs
// already in the shared cache are not refetched; a SKU that fails to resolve
// is left out of the map rather than failing the whole view.
func (b *OrderBoard) OpenDetail(ctx context.Context, orderNumber string) (*OrderDetail, error) {
	b.mu.Lock()
	var found *client.Order
	for i := range b.orders {
		if b.orders[i].OrderNumber == orderNumber {
			o := b.orders[i]
			found = &o
			break
		}
	}
	b.mu.Unlock()

	if found == nil {
		return nil, errors.New("order not loaded: " + orderNumber)
	}

	detail := &OrderDetail{
		Order:     *found,
		Furniture: make(map[string]*client.Furniture),
	}
	for _, item := range found.FurnitureItems {
		if _, ok := detail.Furniture[item.Sku]; ok {
			continue
		}
		piece, err := b.catalog.Get(ctx, item.Sku)
		if err != nil {
			continue
		}
		detail.Furniture[item.Sku] = piece
	}
	return detail, nil
}

// Stats derives the dashboard counters from the loaded orders.
func (b *OrderBoard) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	var s Stats
	s.Total = len(b.orders)
	for _, o := range b.orders {
		for _, item := range o.FurnitureItems {
			s.TotalItems += item.Quantity
		}
		switch o.Status {
		case "Pending":
			s.Pending++
		case "In Production":
			s.InProduction++
		case "Ready for Delivery":
			s.Ready++
		case "Completed":
			s.Completed++
		case "Cancelled":
			s.Cancelled++
		}
	}
	return s
}
