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
	"github.com/banyan-furniture/api/internal/middleware"
	"github.com/banyan-furniture/api/internal/service"
	"github.com/banyan-furniture/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
	UpdateOrder(ctx context.Context, req service.UpdateOrderRequest) (*service.CreateOrderResult, error)
}

// OrderStore defines the database methods needed by order read/update
// handlers. Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	ListOrders(ctx context.Context) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
}

// Broadcaster pushes order events to connected back-office clients.
// Satisfied by *ws.Hub.
type Broadcaster interface {
	BroadcastToRole(role string, event ws.Event)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc         OrderServicer
	store       OrderStore
	transitions service.Transitions
	hub         Broadcaster
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderStore, transitions service.Transitions, hub Broadcaster) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, transitions: transitions, hub: hub}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted at /api/orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Put("/status", h.UpdateStatus)
	r.Get("/{orderNumber}", h.Get)
	r.With(middleware.RequireRole(enum.UserRoleStore, enum.UserRoleAdmin)).Post("/", h.Create)
	r.With(middleware.RequireRole(enum.UserRoleStore, enum.UserRoleAdmin)).Put("/{orderNumber}", h.Update)
}

// --- Request / Response types ---

type customerInfoJSON struct {
	Name          string `json:"name"`
	ContactNumber string `json:"contactNumber"`
	Email         string `json:"email"`
	Address       string `json:"address"`
}

type orderItemJSON struct {
	Sku       string `json:"sku"`
	Quantity  int32  `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	Note      string `json:"note"`
}

type createOrderRequest struct {
	CustomerInfo   customerInfoJSON `json:"customerInfo"`
	FurnitureItems []orderItemJSON  `json:"furnitureItems"`
	TotalAmount    string           `json:"totalAmount"`
	AdvanceAmount  string           `json:"advanceAmount"`
	OrderedBy      string           `json:"orderedBy"`
	Notes          string           `json:"notes"`
}

type updateOrderRequest struct {
	CustomerInfo   customerInfoJSON `json:"customerInfo"`
	FurnitureItems []orderItemJSON  `json:"furnitureItems"`
	AdvanceAmount  string           `json:"advanceAmount"`
	MillWorker     string           `json:"millWorker"`
	Notes          string           `json:"notes"`
}

type updateStatusRequest struct {
	OrderNumber string `json:"orderNumber"`
	NewStatus   string `json:"newStatus"`
}

type orderResponse struct {
	OrderNumber    string           `json:"orderNumber"`
	Status         string           `json:"status"`
	CustomerInfo   customerInfoJSON `json:"customerInfo"`
	FurnitureItems []orderItemJSON  `json:"furnitureItems"`
	TotalAmount    string           `json:"totalAmount"`
	AdvanceAmount  string           `json:"advanceAmount"`
	OrderedBy      string           `json:"orderedBy"`
	MillWorker     string           `json:"millWorker"`
	Notes          string           `json:"notes"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

func toOrderResponse(o database.Order, items []database.OrderItem) orderResponse {
	resp := orderResponse{
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
		CustomerInfo: customerInfoJSON{
			Name:          o.CustomerName,
			ContactNumber: o.CustomerContact,
			Email:         o.CustomerEmail,
			Address:       o.CustomerAddress,
		},
		FurnitureItems: make([]orderItemJSON, len(items)),
		TotalAmount:    numericToString(o.TotalAmount),
		AdvanceAmount:  numericToString(o.AdvanceAmount),
		OrderedBy:      o.OrderedBy,
		MillWorker:     o.MillWorker,
		Notes:          textValue(o.Notes),
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
	for i, it := range items {
		resp.FurnitureItems[i] = orderItemJSON{
			Sku:       it.Sku,
			Quantity:  it.Quantity,
			UnitPrice: numericToString(it.UnitPrice),
			Note:      textValue(it.Note),
		}
	}
	return resp
}

// --- Handlers ---

// Create handles POST /api/orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]service.OrderItemRequest, len(req.FurnitureItems))
	for i, it := range req.FurnitureItems {
		items[i] = service.OrderItemRequest{
			Sku:       it.Sku,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Note:      it.Note,
		}
	}

	orderedBy := req.OrderedBy
	if orderedBy == "" {
		orderedBy = claims.Role
	}

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		CustomerName:    req.CustomerInfo.Name,
		CustomerContact: req.CustomerInfo.ContactNumber,
		CustomerEmail:   req.CustomerInfo.Email,
		CustomerAddress: req.CustomerInfo.Address,
		AdvanceAmount:   req.AdvanceAmount,
		OrderedBy:       orderedBy,
		Notes:           req.Notes,
		Items:           items,
	})
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("ERROR: create order: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := toOrderResponse(result.Order, result.Items)
	h.broadcast("order.created", resp)
	writeData(w, http.StatusCreated, resp)
}

// List handles GET /api/orders/.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.ListOrders(r.Context())
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		items, err := h.store.ListOrderItemsByOrder(r.Context(), o.ID)
		if err != nil {
			log.Printf("ERROR: list order items: %v", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		resp[i] = toOrderResponse(o, items)
	}

	writeData(w, http.StatusOK, resp)
}

// Get handles GET /api/orders/{orderNumber}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")

	order, err := h.store.GetOrderByNumber(r.Context(), orderNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), order.ID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeData(w, http.StatusOK, toOrderResponse(order, items))
}

// UpdateStatus handles PUT /api/orders/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.OrderNumber == "" {
		writeError(w, http.StatusBadRequest, "orderNumber is required")
		return
	}
	if req.NewStatus == "" {
		writeError(w, http.StatusBadRequest, "newStatus is required")
		return
	}
	if !service.ValidStatus(req.NewStatus) {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	current, err := h.store.GetOrderByNumber(r.Context(), req.OrderNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		log.Printf("ERROR: get order for status update: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.transitions.Validate(current.Status, req.NewStatus); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	updated, err := h.store.UpdateOrderStatus(r.Context(), database.UpdateOrderStatusParams{
		OrderNumber: req.OrderNumber,
		Status:      req.NewStatus,
		PrevStatus:  current.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Status changed between our read and write.
			writeError(w, http.StatusConflict, "order status changed, please retry")
			return
		}
		log.Printf("ERROR: update order status: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), updated.ID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := toOrderResponse(updated, items)
	h.broadcast("order.status_changed", resp)
	writeData(w, http.StatusOK, resp)
}

// Update handles PUT /api/orders/{orderNumber} (whole-record replacement).
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")

	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]service.OrderItemRequest, len(req.FurnitureItems))
	for i, it := range req.FurnitureItems {
		items[i] = service.OrderItemRequest{
			Sku:       it.Sku,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Note:      it.Note,
		}
	}

	result, err := h.svc.UpdateOrder(r.Context(), service.UpdateOrderRequest{
		OrderNumber:     orderNumber,
		CustomerName:    req.CustomerInfo.Name,
		CustomerContact: req.CustomerInfo.ContactNumber,
		CustomerEmail:   req.CustomerInfo.Email,
		CustomerAddress: req.CustomerInfo.Address,
		AdvanceAmount:   req.AdvanceAmount,
		MillWorker:      req.MillWorker,
		Notes:           req.Notes,
		Items:           items,
	})
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("ERROR: update order: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := toOrderResponse(result.Order, result.Items)
	h.broadcast("order.updated", resp)
	writeData(w, http.StatusOK, resp)
}

// --- Helpers ---

// isValidationError checks if the error is a known validation error from the
// service layer that should result in 400 Bad Request.
func isValidationError(err error) bool {
	return errors.Is(err, service.ErrEmptyItems) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrInvalidUnitPrice) ||
		errors.Is(err, service.ErrMissingSku) ||
		errors.Is(err, service.ErrFurnitureNotFound) ||
		errors.Is(err, service.ErrMissingCustomerInfo) ||
		errors.Is(err, service.ErrInvalidAdvance) ||
		errors.Is(err, service.ErrAdvanceExceedsTotal)
}

func (h *OrderHandler) broadcast(eventType string, resp orderResponse) {
	if h.hub == nil {
		return
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		log.Printf("ERROR: marshal %s event: %v", eventType, err)
		return
	}
	h.hub.BroadcastToRole(enum.UserRoleMill, ws.Event{Type: eventType, Payload: payload})
}
