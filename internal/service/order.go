package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/banyan-furniture/api/internal/database"
	"github.com/banyan-furniture/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const maxOrderNumberRetries = 3

// Errors returned by the order service.
var (
	ErrEmptyItems          = errors.New("at least one furniture item is required")
	ErrInvalidQuantity     = errors.New("quantity must be >= 1")
	ErrInvalidUnitPrice    = errors.New("unit price must be >= 0")
	ErrMissingSku          = errors.New("sku is required")
	ErrFurnitureNotFound   = errors.New("furniture not found")
	ErrMissingCustomerInfo = errors.New("customer name, contact number, email and address are required")
	ErrInvalidAdvance      = errors.New("invalid advance amount")
	ErrAdvanceExceedsTotal = errors.New("advance amount cannot exceed total amount")
	ErrOrderNotFound       = errors.New("order not found")
)

// Transitions is the order status transition table: current status to the
// set of statuses it may move to. Deployments can swap the table without
// touching the workflow code.
type Transitions map[string][]string

// DefaultTransitions matches the behavior the back office runs with today:
// any status is reachable from any other, so operators can correct mistakes
// (a Completed order can be reopened). Same-status moves are rejected.
var DefaultTransitions = Transitions{
	enum.OrderStatusPending:      {enum.OrderStatusInProduction, enum.OrderStatusReady, enum.OrderStatusCompleted, enum.OrderStatusCancelled},
	enum.OrderStatusInProduction: {enum.OrderStatusPending, enum.OrderStatusReady, enum.OrderStatusCompleted, enum.OrderStatusCancelled},
	enum.OrderStatusReady:        {enum.OrderStatusPending, enum.OrderStatusInProduction, enum.OrderStatusCompleted, enum.OrderStatusCancelled},
	enum.OrderStatusCompleted:    {enum.OrderStatusPending, enum.OrderStatusInProduction, enum.OrderStatusReady, enum.OrderStatusCancelled},
	enum.OrderStatusCancelled:    {enum.OrderStatusPending, enum.OrderStatusInProduction, enum.OrderStatusReady, enum.OrderStatusCompleted},
}

// StrictTransitions is the forward-only alternative: Completed and Cancelled
// are terminal.
var StrictTransitions = Transitions{
	enum.OrderStatusPending:      {enum.OrderStatusInProduction, enum.OrderStatusCancelled},
	enum.OrderStatusInProduction: {enum.OrderStatusReady, enum.OrderStatusCancelled},
	enum.OrderStatusReady:        {enum.OrderStatusCompleted, enum.OrderStatusCancelled},
}

// Validate reports whether the move from current to next is permitted.
func (t Transitions) Validate(current, next string) error {
	for _, s := range t[current] {
		if s == next {
			return nil
		}
	}
	return fmt.Errorf("cannot transition from %s to %s", current, next)
}

// ValidStatus reports whether s is a member of the status enumeration.
func ValidStatus(s string) bool {
	switch s {
	case enum.OrderStatusPending, enum.OrderStatusInProduction,
		enum.OrderStatusReady, enum.OrderStatusCompleted, enum.OrderStatusCancelled:
		return true
	}
	return false
}

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to create and update orders.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetNextOrderNumber(ctx context.Context) (int32, error)
	GetFurnitureBySku(ctx context.Context, sku string) (database.Furniture, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (database.Order, error)
	UpdateOrder(ctx context.Context, arg database.UpdateOrderParams) (database.Order, error)
	DeleteOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) error
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the validated input for creating an order.
type CreateOrderRequest struct {
	CustomerName    string
	CustomerContact string
	CustomerEmail   string
	CustomerAddress string
	AdvanceAmount   string
	OrderedBy       string
	Notes           string
	Items           []OrderItemRequest
}

// OrderItemRequest is a single furniture line item.
type OrderItemRequest struct {
	Sku       string
	Quantity  int32
	UnitPrice string
	Note      string
}

// UpdateOrderRequest is the whole-record replacement for an existing order.
// Status is not part of it; status moves only through the dedicated
// transition endpoint.
type UpdateOrderRequest struct {
	OrderNumber     string
	CustomerName    string
	CustomerContact string
	CustomerEmail   string
	CustomerAddress string
	AdvanceAmount   string
	MillWorker      string
	Notes           string
	Items           []OrderItemRequest
}

// CreateOrderResult is the full created order with items.
type CreateOrderResult struct {
	Order database.Order
	Items []database.OrderItem
}

// OrderService handles order business logic.
type OrderService struct {
	pool        TxBeginner
	newStore    NewOrderStore
	Transitions Transitions
}

// NewOrderService creates a new OrderService using the default transition
// table.
func NewOrderService(pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore, Transitions: DefaultTransitions}
}

// processedItem holds a validated line item ready to insert.
type processedItem struct {
	sku       string
	quantity  int32
	unitPrice decimal.Decimal
	note      string
}

// CreateOrder validates, recomputes the total from the line items, and
// creates the order atomically. Retries on order_number unique constraint
// violations (concurrent transactions can draw the same MAX).
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	items, total, advance, err := s.prepareItems(ctx, req.Items, req.AdvanceAmount)
	if err != nil {
		return nil, err
	}

	if req.CustomerName == "" || req.CustomerContact == "" ||
		req.CustomerEmail == "" || req.CustomerAddress == "" {
		return nil, ErrMissingCustomerInfo
	}

	var lastErr error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		result, err := s.createOrderTx(ctx, req, items, total, advance)
		if err == nil {
			return result, nil
		}
		if isOrderNumberConflict(err) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// prepareItems validates line items against the catalog-free invariants,
// totals them, and checks the advance against the recomputed total.
func (s *OrderService) prepareItems(ctx context.Context, items []OrderItemRequest, advanceStr string) ([]processedItem, decimal.Decimal, decimal.Decimal, error) {
	if len(items) == 0 {
		return nil, decimal.Zero, decimal.Zero, ErrEmptyItems
	}

	total := decimal.Zero
	prepared := make([]processedItem, 0, len(items))
	for i, item := range items {
		if item.Sku == "" {
			return nil, decimal.Zero, decimal.Zero, fmt.Errorf("items[%d]: %w", i, ErrMissingSku)
		}
		if item.Quantity < 1 {
			return nil, decimal.Zero, decimal.Zero, fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}
		price, err := decimal.NewFromString(item.UnitPrice)
		if err != nil || price.IsNegative() {
			return nil, decimal.Zero, decimal.Zero, fmt.Errorf("items[%d]: %w", i, ErrInvalidUnitPrice)
		}
		total = total.Add(price.Mul(decimal.NewFromInt32(item.Quantity)))
		prepared = append(prepared, processedItem{
			sku:       item.Sku,
			quantity:  item.Quantity,
			unitPrice: price,
			note:      item.Note,
		})
	}

	advance := decimal.Zero
	if advanceStr != "" {
		var err error
		advance, err = decimal.NewFromString(advanceStr)
		if err != nil || advance.IsNegative() {
			return nil, decimal.Zero, decimal.Zero, ErrInvalidAdvance
		}
	}
	if advance.GreaterThan(total) {
		return nil, decimal.Zero, decimal.Zero, ErrAdvanceExceedsTotal
	}

	return prepared, total, advance, nil
}

// isOrderNumberConflict checks for a unique constraint violation on the
// order number (pgconn error code 23505).
func isOrderNumberConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "orders_order_number_key"
	}
	return false
}

func (s *OrderService) createOrderTx(ctx context.Context, req CreateOrderRequest, items []processedItem, total, advance decimal.Decimal) (*CreateOrderResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	// Every referenced SKU must exist in the catalog.
	for i, item := range items {
		if _, err := store.GetFurnitureBySku(ctx, item.sku); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("items[%d]: %w", i, ErrFurnitureNotFound)
			}
			return nil, fmt.Errorf("items[%d]: get furniture: %w", i, err)
		}
	}

	nextNum, err := store.GetNextOrderNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("get next order number: %w", err)
	}
	orderNumber := fmt.Sprintf("ORD-%03d", nextNum)

	orderedBy := req.OrderedBy
	if orderedBy == "" {
		orderedBy = enum.UserRoleStore
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		OrderNumber:     orderNumber,
		Status:          enum.OrderStatusPending,
		CustomerName:    req.CustomerName,
		CustomerContact: req.CustomerContact,
		CustomerEmail:   req.CustomerEmail,
		CustomerAddress: req.CustomerAddress,
		TotalAmount:     decimalToNumeric(total),
		AdvanceAmount:   decimalToNumeric(advance),
		OrderedBy:       orderedBy,
		MillWorker:      enum.DefaultMillWorker,
		Notes:           textOrNull(req.Notes),
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	created := make([]database.OrderItem, 0, len(items))
	for i, pi := range items {
		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:   order.ID,
			LineNo:    int32(i + 1),
			Sku:       pi.sku,
			Quantity:  pi.quantity,
			UnitPrice: decimalToNumeric(pi.unitPrice),
			Note:      textOrNull(pi.note),
		})
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		created = append(created, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &CreateOrderResult{Order: order, Items: created}, nil
}

// UpdateOrder replaces an order's customer info, line items and amounts in a
// single transaction, recomputing the total from the submitted items.
func (s *OrderService) UpdateOrder(ctx context.Context, req UpdateOrderRequest) (*CreateOrderResult, error) {
	items, total, advance, err := s.prepareItems(ctx, req.Items, req.AdvanceAmount)
	if err != nil {
		return nil, err
	}

	if req.CustomerName == "" || req.CustomerContact == "" ||
		req.CustomerEmail == "" || req.CustomerAddress == "" {
		return nil, ErrMissingCustomerInfo
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	existing, err := store.GetOrderByNumber(ctx, req.OrderNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	for i, item := range items {
		if _, err := store.GetFurnitureBySku(ctx, item.sku); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("items[%d]: %w", i, ErrFurnitureNotFound)
			}
			return nil, fmt.Errorf("items[%d]: get furniture: %w", i, err)
		}
	}

	millWorker := req.MillWorker
	if millWorker == "" {
		millWorker = existing.MillWorker
	}

	order, err := store.UpdateOrder(ctx, database.UpdateOrderParams{
		OrderNumber:     req.OrderNumber,
		CustomerName:    req.CustomerName,
		CustomerContact: req.CustomerContact,
		CustomerEmail:   req.CustomerEmail,
		CustomerAddress: req.CustomerAddress,
		TotalAmount:     decimalToNumeric(total),
		AdvanceAmount:   decimalToNumeric(advance),
		MillWorker:      millWorker,
		Notes:           textOrNull(req.Notes),
	})
	if err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	if err := store.DeleteOrderItemsByOrder(ctx, existing.ID); err != nil {
		return nil, fmt.Errorf("delete order items: %w", err)
	}

	created := make([]database.OrderItem, 0, len(items))
	for i, pi := range items {
		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:   existing.ID,
			LineNo:    int32(i + 1),
			Sku:       pi.sku,
			Quantity:  pi.quantity,
			UnitPrice: decimalToNumeric(pi.unitPrice),
			Note:      textOrNull(pi.note),
		})
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		created = append(created, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &CreateOrderResult{Order: order, Items: created}, nil
}

// --- Helpers ---

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
