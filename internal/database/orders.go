package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, order_number, status, customer_name, customer_contact,
	customer_email, customer_address, total_amount, advance_amount,
	ordered_by, mill_worker, notes, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.Status, &o.CustomerName, &o.CustomerContact,
		&o.CustomerEmail, &o.CustomerAddress, &o.TotalAmount, &o.AdvanceAmount,
		&o.OrderedBy, &o.MillWorker, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

// GetNextOrderNumber returns the next sequential order number suffix.
// Concurrent callers can race to the same value; the service retries on the
// resulting unique constraint violation.
func (q *Queries) GetNextOrderNumber(ctx context.Context) (int32, error) {
	const query = `SELECT COALESCE(MAX(CAST(SUBSTRING(order_number FROM 5) AS INT)), 0) + 1 FROM orders`
	var next int32
	err := q.db.QueryRow(ctx, query).Scan(&next)
	return next, err
}

type CreateOrderParams struct {
	OrderNumber     string
	Status          string
	CustomerName    string
	CustomerContact string
	CustomerEmail   string
	CustomerAddress string
	TotalAmount     pgtype.Numeric
	AdvanceAmount   pgtype.Numeric
	OrderedBy       string
	MillWorker      string
	Notes           pgtype.Text
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	const query = `
		INSERT INTO orders (
			order_number, status, customer_name, customer_contact,
			customer_email, customer_address, total_amount, advance_amount,
			ordered_by, mill_worker, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + orderColumns
	return scanOrder(q.db.QueryRow(ctx, query,
		arg.OrderNumber, arg.Status, arg.CustomerName, arg.CustomerContact,
		arg.CustomerEmail, arg.CustomerAddress, arg.TotalAmount, arg.AdvanceAmount,
		arg.OrderedBy, arg.MillWorker, arg.Notes,
	))
}

type CreateOrderItemParams struct {
	OrderID   uuid.UUID
	LineNo    int32
	Sku       string
	Quantity  int32
	UnitPrice pgtype.Numeric
	Note      pgtype.Text
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	const query = `
		INSERT INTO order_items (order_id, line_no, sku, quantity, unit_price, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, order_id, line_no, sku, quantity, unit_price, note`
	var it OrderItem
	err := q.db.QueryRow(ctx, query,
		arg.OrderID, arg.LineNo, arg.Sku, arg.Quantity, arg.UnitPrice, arg.Note,
	).Scan(&it.ID, &it.OrderID, &it.LineNo, &it.Sku, &it.Quantity, &it.UnitPrice, &it.Note)
	return it, err
}

func (q *Queries) GetOrderByNumber(ctx context.Context, orderNumber string) (Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`
	return scanOrder(q.db.QueryRow(ctx, query, orderNumber))
}

func (q *Queries) ListOrders(ctx context.Context) ([]Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	rows, err := q.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	const query = `
		SELECT id, order_id, line_no, sku, quantity, unit_price, note
		FROM order_items WHERE order_id = $1 ORDER BY line_no`
	rows, err := q.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []OrderItem{}
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.LineNo, &it.Sku, &it.Quantity, &it.UnitPrice, &it.Note); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type UpdateOrderStatusParams struct {
	OrderNumber string
	Status      string
	PrevStatus  string
}

// UpdateOrderStatus transitions an order only if it is still in PrevStatus,
// so a concurrent transition between the caller's read and this write fails
// with no rows instead of silently clobbering.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	const query = `
		UPDATE orders SET status = $2, updated_at = NOW()
		WHERE order_number = $1 AND status = $3
		RETURNING ` + orderColumns
	return scanOrder(q.db.QueryRow(ctx, query, arg.OrderNumber, arg.Status, arg.PrevStatus))
}

type UpdateOrderParams struct {
	OrderNumber     string
	CustomerName    string
	CustomerContact string
	CustomerEmail   string
	CustomerAddress string
	TotalAmount     pgtype.Numeric
	AdvanceAmount   pgtype.Numeric
	MillWorker      string
	Notes           pgtype.Text
}

func (q *Queries) UpdateOrder(ctx context.Context, arg UpdateOrderParams) (Order, error) {
	const query = `
		UPDATE orders SET
			customer_name = $2, customer_contact = $3, customer_email = $4,
			customer_address = $5, total_amount = $6, advance_amount = $7,
			mill_worker = $8, notes = $9, updated_at = NOW()
		WHERE order_number = $1
		RETURNING ` + orderColumns
	return scanOrder(q.db.QueryRow(ctx, query,
		arg.OrderNumber, arg.CustomerName, arg.CustomerContact, arg.CustomerEmail,
		arg.CustomerAddress, arg.TotalAmount, arg.AdvanceAmount, arg.MillWorker, arg.Notes,
	))
}

func (q *Queries) DeleteOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) error {
	const query = `DELETE FROM order_items WHERE order_id = $1`
	_, err := q.db.Exec(ctx, query, orderID)
	return err
}
