package database

import (
	"context"

	"github.com/google/uuid"
)

const userColumns = `id, full_name, email, hashed_password, role, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.FullName, &u.Email, &u.HashedPassword, &u.Role,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND is_active`
	return scanUser(q.db.QueryRow(ctx, query, email))
}

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND is_active`
	return scanUser(q.db.QueryRow(ctx, query, id))
}

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE is_active ORDER BY full_name`
	rows, err := q.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type CreateUserParams struct {
	FullName       string
	Email          string
	HashedPassword string
	Role           string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	const query = `
		INSERT INTO users (full_name, email, hashed_password, role)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns
	return scanUser(q.db.QueryRow(ctx, query,
		arg.FullName, arg.Email, arg.HashedPassword, arg.Role,
	))
}

type UpdateUserParams struct {
	ID       uuid.UUID
	FullName string
	Email    string
	Role     string
}

func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error) {
	const query = `
		UPDATE users SET full_name = $2, email = $3, role = $4, updated_at = NOW()
		WHERE id = $1 AND is_active
		RETURNING ` + userColumns
	return scanUser(q.db.QueryRow(ctx, query, arg.ID, arg.FullName, arg.Email, arg.Role))
}

func (q *Queries) SoftDeleteUser(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	const query = `
		UPDATE users SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND is_active
		RETURNING id`
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, query, id).Scan(&deleted)
	return deleted, err
}
