package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/banyan-furniture/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SupplierStore defines the database methods needed by supplier handlers.
type SupplierStore interface {
	ListSuppliers(ctx context.Context) ([]database.Supplier, error)
	GetSupplier(ctx context.Context, id uuid.UUID) (database.Supplier, error)
	CreateSupplier(ctx context.Context, arg database.CreateSupplierParams) (database.Supplier, error)
	UpdateSupplier(ctx context.Context, arg database.UpdateSupplierParams) (database.Supplier, error)
	SoftDeleteSupplier(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// SupplierHandler handles supplier directory endpoints (admin only).
type SupplierHandler struct {
	store SupplierStore
}

// NewSupplierHandler creates a new SupplierHandler.
func NewSupplierHandler(store SupplierStore) *SupplierHandler {
	return &SupplierHandler{store: store}
}

// RegisterRoutes registers supplier endpoints.
func (h *SupplierHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type supplierRequest struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contactPerson"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	Notes         string `json:"notes"`
}

type supplierResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contactPerson"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toSupplierResponse(s database.Supplier) supplierResponse {
	return supplierResponse{
		ID:            s.ID,
		Name:          s.Name,
		ContactPerson: textValue(s.ContactPerson),
		Phone:         textValue(s.Phone),
		Email:         textValue(s.Email),
		Address:       textValue(s.Address),
		Notes:         textValue(s.Notes),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

// List handles GET /api/suppliers.
func (h *SupplierHandler) List(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.store.ListSuppliers(r.Context())
	if err != nil {
		log.Printf("ERROR: list suppliers: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]supplierResponse, len(suppliers))
	for i, s := range suppliers {
		resp[i] = toSupplierResponse(s)
	}
	writeData(w, http.StatusOK, resp)
}

// Get handles GET /api/suppliers/{id}.
func (h *SupplierHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid supplier id")
		return
	}

	s, err := h.store.GetSupplier(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "supplier not found")
			return
		}
		log.Printf("ERROR: get supplier: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeData(w, http.StatusOK, toSupplierResponse(s))
}

// Create handles POST /api/suppliers.
func (h *SupplierHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	s, err := h.store.CreateSupplier(r.Context(), database.CreateSupplierParams{
		Name:          req.Name,
		ContactPerson: optionalText(req.ContactPerson),
		Phone:         optionalText(req.Phone),
		Email:         optionalText(req.Email),
		Address:       optionalText(req.Address),
		Notes:         optionalText(req.Notes),
	})
	if err != nil {
		log.Printf("ERROR: create supplier: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeData(w, http.StatusCreated, toSupplierResponse(s))
}

// Update handles PUT /api/suppliers/{id}.
func (h *SupplierHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid supplier id")
		return
	}

	var req supplierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	s, err := h.store.UpdateSupplier(r.Context(), database.UpdateSupplierParams{
		ID:            id,
		Name:          req.Name,
		ContactPerson: optionalText(req.ContactPerson),
		Phone:         optionalText(req.Phone),
		Email:         optionalText(req.Email),
		Address:       optionalText(req.Address),
		Notes:         optionalText(req.Notes),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "supplier not found")
			return
		}
		log.Printf("ERROR: update supplier: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeData(w, http.StatusOK, toSupplierResponse(s))
}

// Delete handles DELETE /api/suppliers/{id} (soft delete).
func (h *SupplierHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid supplier id")
		return
	}

	if _, err := h.store.SoftDeleteSupplier(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "supplier not found")
			return
		}
		log.Printf("ERROR: delete supplier: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeData(w, http.StatusOK, map[string]string{"id": id.String()})
}
