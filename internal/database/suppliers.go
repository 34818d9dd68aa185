package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const supplierColumns = `id, name, contact_person, phone, email, address, notes, is_active, created_at, updated_at`

func scanSupplier(row interface{ Scan(...any) error }) (Supplier, error) {
	var s Supplier
	err := row.Scan(
		&s.ID, &s.Name, &s.ContactPerson, &s.Phone, &s.Email,
		&s.Address, &s.Notes, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func (q *Queries) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	const query = `SELECT ` + supplierColumns + ` FROM suppliers WHERE is_active ORDER BY name`
	rows, err := q.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	suppliers := []Supplier{}
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

func (q *Queries) GetSupplier(ctx context.Context, id uuid.UUID) (Supplier, error) {
	const query = `SELECT ` + supplierColumns + ` FROM suppliers WHERE id = $1 AND is_active`
	return scanSupplier(q.db.QueryRow(ctx, query, id))
}

type CreateSupplierParams struct {
	Name          string
	ContactPerson pgtype.Text
	Phone         pgtype.Text
	Email         pgtype.Text
	Address       pgtype.Text
	Notes         pgtype.Text
}

func (q *Queries) CreateSupplier(ctx context.Context, arg CreateSupplierParams) (Supplier, error) {
	const query = `
		INSERT INTO suppliers (name, contact_person, phone, email, address, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + supplierColumns
	return scanSupplier(q.db.QueryRow(ctx, query,
		arg.Name, arg.ContactPerson, arg.Phone, arg.Email, arg.Address, arg.Notes,
	))
}

type UpdateSupplierParams struct {
	ID            uuid.UUID
	Name          string
	ContactPerson pgtype.Text
	Phone         pgtype.Text
	Email         pgtype.Text
	Address       pgtype.Text
	Notes         pgtype.Text
}

func (q *Queries) UpdateSupplier(ctx context.Context, arg UpdateSupplierParams) (Supplier, error) {
	const query = `
		UPDATE suppliers SET
			name = $2, contact_person = $3, phone = $4, email = $5,
			address = $6, notes = $7, updated_at = NOW()
		WHERE id = $1 AND is_active
		RETURNING ` + supplierColumns
	return scanSupplier(q.db.QueryRow(ctx, query,
		arg.ID, arg.Name, arg.ContactPerson, arg.Phone, arg.Email, arg.Address, arg.Notes,
	))
}

func (q *Queries) SoftDeleteSupplier(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	const query = `
		UPDATE suppliers SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND is_active
		RETURNING id`
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, query, id).Scan(&deleted)
	return deleted, err
}
