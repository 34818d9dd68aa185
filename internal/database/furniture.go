package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const furnitureColumns = `id, sku, name, description, price, sale_price,
	category, wood_type, dimensions, images, is_active, created_at, updated_at`

func scanFurniture(row interface{ Scan(...any) error }) (Furniture, error) {
	var f Furniture
	err := row.Scan(
		&f.ID, &f.Sku, &f.Name, &f.Description, &f.Price, &f.SalePrice,
		&f.Category, &f.WoodType, &f.Dimensions, &f.Images, &f.IsActive,
		&f.CreatedAt, &f.UpdatedAt,
	)
	return f, err
}

func (q *Queries) ListFurniture(ctx context.Context) ([]Furniture, error) {
	const query = `SELECT ` + furnitureColumns + ` FROM furniture WHERE is_active ORDER BY name`
	rows, err := q.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pieces := []Furniture{}
	for rows.Next() {
		f, err := scanFurniture(rows)
		if err != nil {
			return nil, err
		}
		pieces = append(pieces, f)
	}
	return pieces, rows.Err()
}

func (q *Queries) GetFurnitureBySku(ctx context.Context, sku string) (Furniture, error) {
	const query = `SELECT ` + furnitureColumns + ` FROM furniture WHERE sku = $1 AND is_active`
	return scanFurniture(q.db.QueryRow(ctx, query, sku))
}

type CreateFurnitureParams struct {
	Sku         string
	Name        string
	Description pgtype.Text
	Price       pgtype.Numeric
	SalePrice   pgtype.Numeric
	Category    string
	WoodType    string
	Dimensions  pgtype.Text
	Images      []string
}

func (q *Queries) CreateFurniture(ctx context.Context, arg CreateFurnitureParams) (Furniture, error) {
	const query = `
		INSERT INTO furniture (sku, name, description, price, sale_price,
			category, wood_type, dimensions, images)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + furnitureColumns
	return scanFurniture(q.db.QueryRow(ctx, query,
		arg.Sku, arg.Name, arg.Description, arg.Price, arg.SalePrice,
		arg.Category, arg.WoodType, arg.Dimensions, arg.Images,
	))
}

type UpdateFurnitureParams struct {
	Sku         string
	Name        string
	Description pgtype.Text
	Price       pgtype.Numeric
	SalePrice   pgtype.Numeric
	Category    string
	WoodType    string
	Dimensions  pgtype.Text
	Images      []string
}

func (q *Queries) UpdateFurniture(ctx context.Context, arg UpdateFurnitureParams) (Furniture, error) {
	const query = `
		UPDATE furniture SET
			name = $2, description = $3, price = $4, sale_price = $5,
			category = $6, wood_type = $7, dimensions = $8, images = $9,
			updated_at = NOW()
		WHERE sku = $1 AND is_active
		RETURNING ` + furnitureColumns
	return scanFurniture(q.db.QueryRow(ctx, query,
		arg.Sku, arg.Name, arg.Description, arg.Price, arg.SalePrice,
		arg.Category, arg.WoodType, arg.Dimensions, arg.Images,
	))
}

func (q *Queries) SoftDeleteFurniture(ctx context.Context, sku string) (uuid.UUID, error) {
	const query = `
		UPDATE furniture SET is_active = FALSE, updated_at = NOW()
		WHERE sku = $1 AND is_active
		RETURNING id`
	var id uuid.UUID
	err := q.db.QueryRow(ctx, query, sku).Scan(&id)
	return id, err
}
