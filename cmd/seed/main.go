package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/banyan-furniture/api/internal/config"
	"github.com/banyan-furniture/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type seedUser struct {
	fullName string
	email    string
	role     string
}

type seedPiece struct {
	sku        string
	name       string
	price      string
	salePrice  string
	category   string
	woodType   string
	dimensions string
}

func main() {
	// CLI flags
	password := flag.String("password", "", "Password for all seeded staff accounts")
	flag.Parse()

	if *password == "" {
		*password = os.Getenv("SEED_PASSWORD")
	}
	if *password == "" {
		*password = "password123"
		log.Println("WARNING: Using default password 'password123'. Change immediately in production!")
	}

	cfg := config.Load()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Println("Connected to database")

	// Seed in a transaction (all accounts + catalog or nothing)
	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	if err := seedStaff(ctx, tx, *password); err != nil {
		log.Fatalf("Failed to seed staff: %v", err)
	}
	if err := seedCatalog(ctx, tx); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Println("Seed completed successfully")
}

// seedStaff creates one account per role if they don't exist.
func seedStaff(ctx context.Context, tx pgx.Tx, password string) error {
	staff := []seedUser{
		{fullName: "Banyan Admin", email: "admin@banyanfurniture.com", role: enum.UserRoleAdmin},
		{fullName: "Mill Supervisor", email: "mill@banyanfurniture.com", role: enum.UserRoleMill},
		{fullName: "Store Manager", email: "store@banyanfurniture.com", role: enum.UserRoleStore},
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	for _, u := range staff {
		var existingID uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM users WHERE email = $1 LIMIT 1`, u.email).Scan(&existingID)
		if err == nil {
			log.Printf("User '%s' already exists (ID: %s), skipping", u.email, existingID)
			continue
		}
		if err != pgx.ErrNoRows {
			return fmt.Errorf("check user: %w", err)
		}

		var newID uuid.UUID
		err = tx.QueryRow(ctx, `
			INSERT INTO users (full_name, email, hashed_password, role)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			u.fullName, u.email, string(hashed), u.role,
		).Scan(&newID)
		if err != nil {
			return fmt.Errorf("insert user %s: %w", u.email, err)
		}
		log.Printf("Created %s user '%s' (ID: %s)", u.role, u.email, newID)
	}
	return nil
}

// seedCatalog inserts a small starter catalog if the SKUs aren't taken.
func seedCatalog(ctx context.Context, tx pgx.Tx) error {
	pieces := []seedPiece{
		{sku: "SOF-001", name: "Teak 3-Seater Sofa", price: "45000.00", salePrice: "42000.00", category: enum.CategoryLivingRoom, woodType: enum.WoodTypeTeak, dimensions: "210x90x85 cm"},
		{sku: "BED-001", name: "Sheesham Queen Bed", price: "38000.00", salePrice: "38000.00", category: enum.CategoryBedroom, woodType: enum.WoodTypeSheesham, dimensions: "160x200 cm"},
		{sku: "DIN-001", name: "Mahogany Dining Table", price: "28000.00", salePrice: "25000.00", category: enum.CategoryDining, woodType: enum.WoodTypeMahogany, dimensions: "180x90x76 cm"},
		{sku: "DIN-002", name: "Mahogany Dining Chair", price: "5500.00", salePrice: "5000.00", category: enum.CategoryDining, woodType: enum.WoodTypeMahogany, dimensions: "45x50x95 cm"},
		{sku: "OFF-001", name: "Oak Writing Desk", price: "14000.00", salePrice: "12000.00", category: enum.CategoryOffice, woodType: enum.WoodTypeOak, dimensions: "120x60x75 cm"},
	}

	for _, p := range pieces {
		var existingID uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM furniture WHERE sku = $1 LIMIT 1`, p.sku).Scan(&existingID)
		if err == nil {
			log.Printf("Furniture '%s' already exists (ID: %s), skipping", p.sku, existingID)
			continue
		}
		if err != pgx.ErrNoRows {
			return fmt.Errorf("check furniture: %w", err)
		}

		var newID uuid.UUID
		err = tx.QueryRow(ctx, `
			INSERT INTO furniture (sku, name, price, sale_price, category, wood_type, dimensions, images)
			VALUES ($1, $2, $3, $4, $5, $6, $7, '{}')
			RETURNING id`,
			p.sku, p.name, p.price, p.salePrice, p.category, p.woodType, p.dimensions,
		).Scan(&newID)
		if err != nil {
			return fmt.Errorf("insert furniture %s: %w", p.sku, err)
		}
		log.Printf("Created furniture '%s' (ID: %s)", p.sku, newID)
	}
	return nil
}
