// Package client is a typed HTTP client for the Banyan Furniture API. It is
// used by the back-office workflow package and by external Go consumers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// APIError is returned when the server responds with a failure envelope.
// Message carries the server's human-readable reason.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

// Client talks to the Banyan Furniture API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client for the given base URL, e.g. "http://localhost:8082".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken updates the bearer token, e.g. after a login or refresh.
func (c *Client) SetToken(token string) {
	c.token = token
}

// --- Wire types ---

// CustomerInfo is the customer block on an order.
type CustomerInfo struct {
	Name          string `json:"name"`
	ContactNumber string `json:"contactNumber"`
	Email         string `json:"email"`
	Address       string `json:"address"`
}

// OrderItem is a single furniture line on an order.
type OrderItem struct {
	Sku       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	Note      string `json:"note"`
}

// Order is the API representation of an order.
type Order struct {
	OrderNumber    string       `json:"orderNumber"`
	Status         string       `json:"status"`
	CustomerInfo   CustomerInfo `json:"customerInfo"`
	FurnitureItems []OrderItem  `json:"furnitureItems"`
	TotalAmount    string       `json:"totalAmount"`
	AdvanceAmount  string       `json:"advanceAmount"`
	OrderedBy      string       `json:"orderedBy"`
	MillWorker     string       `json:"millWorker"`
	Notes          string       `json:"notes"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// CreateOrderRequest is the payload for creating an order.
type CreateOrderRequest struct {
	CustomerInfo   CustomerInfo `json:"customerInfo"`
	FurnitureItems []OrderItem  `json:"furnitureItems"`
	TotalAmount    string       `json:"totalAmount"`
	AdvanceAmount  string       `json:"advanceAmount"`
	OrderedBy      string       `json:"orderedBy"`
	Notes          string       `json:"notes"`
}

// Furniture is the API representation of a catalog piece.
type Furniture struct {
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

// Session is the login/refresh response payload.
type Session struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
}

// User is a staff account.
type User struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// --- Operations ---

// Login authenticates with email and password and stores the returned
// access token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	var session Session
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &session); err != nil {
		return nil, err
	}
	c.token = session.AccessToken
	return &session, nil
}

// FetchOrders retrieves every order.
func (c *Client) FetchOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// FetchOrder retrieves one order by its order number.
func (c *Client) FetchOrder(ctx context.Context, orderNumber string) (*Order, error) {
	var order Order
	path := "/api/orders/" + url.PathEscape(orderNumber)
	if err := c.do(ctx, http.MethodGet, path, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrder submits a new order.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus moves an order to a new status. Returns the updated
// order as confirmed by the server.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderNumber, newStatus string) (*Order, error) {
	body := map[string]string{"orderNumber": orderNumber, "newStatus": newStatus}
	var order Order
	if err := c.do(ctx, http.MethodPut, "/api/orders/status", body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// FetchFurniture retrieves the active catalog.
func (c *Client) FetchFurniture(ctx context.Context) ([]Furniture, error) {
	var pieces []Furniture
	if err := c.do(ctx, http.MethodGet, "/api/furniture", nil, &pieces); err != nil {
		return nil, err
	}
	return pieces, nil
}

// FetchFurnitureBySku retrieves one catalog piece.
func (c *Client) FetchFurnitureBySku(ctx context.Context, sku string) (*Furniture, error) {
	var piece Furniture
	path := "/api/furniture/" + url.PathEscape(sku)
	if err := c.do(ctx, http.MethodGet, path, nil, &piece); err != nil {
		return nil, err
	}
	return &piece, nil
}

// do performs a request and decodes the response envelope into out.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "malformed response body"}
	}

	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}
