package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/banyan-furniture/api/internal/database"
	"github.com/banyan-furniture/api/internal/enum"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// FurnitureStore defines the database methods needed by catalog handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type FurnitureStore interface {
	ListFurniture(ctx context.Context) ([]database.Furniture, error)
	GetFurnitureBySku(ctx context.Context, sku string) (database.Furniture, error)
	CreateFurniture(ctx context.Context, arg database.CreateFurnitureParams) (database.Furniture, error)
	UpdateFurniture(ctx context.Context, arg database.UpdateFurnitureParams) (database.Furniture, error)
	SoftDeleteFurniture(ctx context.Context, sku string) (uuid.UUID, error)
}

// FurnitureHandler handles catalog endpoints. Reads are public (storefront);
// mutations are mounted behind the admin route group.
type FurnitureHandler struct {
	store FurnitureStore
}

// NewFurnitureHandler creates a new FurnitureHandler.
func NewFurnitureHandler(store FurnitureStore) *FurnitureHandler {
	return &FurnitureHandler{store: store}
}

// RegisterPublicRoutes registers the storefront read endpoints.
func (h *FurnitureHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{sku}", h.Get)
}

// RegisterAdminRoutes registers the catalog mutation endpoints.
func (h *FurnitureHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Put("/{sku}", h.Update)
	r.Delete("/{sku}", h.Delete)
}

// --- Request / Response types ---

type furnitureRequest struct {
	Sku         string   `json:"sku"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	SalePrice   string   `json:"salePrice"`
	Category    string   `json:"category"`
	WoodType    string   `json:"woodType"`
	Dimensions  string   `json:"dimensions"`
	Images      []string `json:"images"`
}

type furnitureResponse struct {
	Sku         string    `json:"sku"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	SalePrice   string    `json:"salePrice"`
	Category    string    `json:"category"`
	WoodType    string    `json:"woodType"`
	Dimensions  string    `json:"dimensions"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toFurnitureResponse(f database.Furniture) furnitureResponse {
	images := f.Images
	if images == nil {
		images = []string{}
	}
	return furnitureResponse{
		Sku:         f.Sku,
		Name:        f.Name,
		Description: textValue(f.Description),
		Price:       numericToString(f.Price),
		SalePrice:   numericToString(f.SalePrice),
		Category:    f.Category,
		WoodType:    f.WoodType,
		Dimensions:  textValue(f.Dimensions),
		Images:      images,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// --- Handlers ---

// List handles GET /api/furniture.
func (h *FurnitureHandler) List(w http.ResponseWriter, r *http.Request) {
	pieces, err := h.store.ListFurniture(r.Context())
	if err != nil {
		log.Printf("ERROR: list furniture: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]furnitureResponse, len(pieces))
	for i, f := range pieces {
		resp[i] = toFurnitureResponse(f)
	}
	writeData(w, http.StatusOK, resp)
}

// Get handles GET /api/furniture/{sku}.
func (h *FurnitureHandler) Get(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")

	f, err := h.store.GetFurnitureBySku(r.Context(), sku)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "furniture not found")
			return
		}
		log.Printf("ERROR: get furniture: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeData(w, http.StatusOK, toFurnitureResponse(f))
}

// Create handles POST /api/furniture.
func (h *FurnitureHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req furnitureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Sku == "" {
		writeError(w, http.StatusBadRequest, "sku is required")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !isValidCategory(req.Category) {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}
	if !isValidWoodType(req.WoodType) {
		writeError(w, http.StatusBadRequest, "invalid woodType")
		return
	}

	price, err := parsePrice(req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, "price must be a number >= 0")
		return
	}

	salePrice := price
	if req.SalePrice != "" {
		salePrice, err = parsePrice(req.SalePrice)
		if err != nil {
			writeError(w, http.StatusBadRequest, "salePrice must be a number >= 0")
			return
		}
	}

	f, err := h.store.CreateFurniture(r.Context(), database.CreateFurnitureParams{
		Sku:         req.Sku,
		Name:        req.Name,
		Description: optionalText(req.Description),
		Price:       price,
		SalePrice:   salePrice,
		Category:    req.Category,
		WoodType:    req.WoodType,
		Dimensions:  optionalText(req.Dimensions),
		Images:      req.Images,
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "sku already exists")
			return
		}
		log.Printf("ERROR: create furniture: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeData(w, http.StatusCreated, toFurnitureResponse(f))
}

// Update handles PUT /api/furniture/{sku}.
func (h *FurnitureHandler) Update(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")

	var req furnitureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !isValidCategory(req.Category) {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}
	if !isValidWoodType(req.WoodType) {
		writeError(w, http.StatusBadRequest, "invalid woodType")
		return
	}

	price, err := parsePrice(req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, "price must be a number >= 0")
		return
	}

	salePrice := price
	if req.SalePrice != "" {
		salePrice, err = parsePrice(req.SalePrice)
		if err != nil {
			writeError(w, http.StatusBadRequest, "salePrice must be a number >= 0")
			return
		}
	}

	f, err := h.store.UpdateFurniture(r.Context(), database.UpdateFurnitureParams{
		Sku:         sku,
		Name:        req.Name,
		Description: optionalText(req.Description),
		Price:       price,
		SalePrice:   salePrice,
		Category:    req.Category,
		WoodType:    req.WoodType,
		Dimensions:  optionalText(req.Dimensions),
		Images:      req.Images,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "furniture not found")
			return
		}
		log.Printf("ERROR: update furniture: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeData(w, http.StatusOK, toFurnitureResponse(f))
}

// Delete handles DELETE /api/furniture/{sku} (soft delete).
func (h *FurnitureHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")

	if _, err := h.store.SoftDeleteFurniture(r.Context(), sku); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "furniture not found")
			return
		}
		log.Printf("ERROR: delete furniture: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeData(w, http.StatusOK, map[string]string{"sku": sku})
}

// --- Helpers ---

func isValidCategory(c string) bool {
	switch c {
	case enum.CategoryLivingRoom, enum.CategoryBedroom, enum.CategoryDining,
		enum.CategoryOffice, enum.CategoryOutdoor:
		return true
	}
	return false
}

func isValidWoodType(w string) bool {
	switch w {
	case enum.WoodTypeTeak, enum.WoodTypeMahogany, enum.WoodTypeOak,
		enum.WoodTypeSheesham, enum.WoodTypeEngineered:
		return true
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var errNegativePrice = errors.New("negative price")

func parsePrice(s string) (pgtype.Numeric, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return pgtype.Numeric{}, err
	}
	if d.IsNegative() {
		return pgtype.Numeric{}, errNegativePrice
	}
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, err
	}
	return n, nil
}

func optionalText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
