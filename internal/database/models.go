package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Order struct {
	ID              uuid.UUID
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
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	LineNo    int32
	Sku       string
	Quantity  int32
	UnitPrice pgtype.Numeric
	Note      pgtype.Text
}

type Furniture struct {
	ID          uuid.UUID
	Sku         string
	Name        string
	Description pgtype.Text
	Price       pgtype.Numeric
	SalePrice   pgtype.Numeric
	Category    string
	WoodType    string
	Dimensions  pgtype.Text
	Images      []string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type User struct {
	ID             uuid.UUID
	FullName       string
	Email          string
	HashedPassword string
	Role           string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Supplier struct {
	ID            uuid.UUID
	Name          string
	ContactPerson pgtype.Text
	Phone         pgtype.Text
	Email         pgtype.Text
	Address       pgtype.Text
	Notes         pgtype.Text
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
