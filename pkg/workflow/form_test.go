package workflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/banyan-furniture/api/pkg/client"
	"github.com/banyan-furniture/api/pkg/workflow"
)

// mockOrderAPI implements both the form's and the board's API slices.
type mockOrderAPI struct {
	createOrderFn       func(ctx context.Context, req client.CreateOrderRequest) (*client.Order, error)
	fetchOrdersFn       func(ctx context.Context) ([]client.Order, error)
	updateOrderStatusFn func(ctx context.Context, orderNumber, newStatus string) (*client.Order, error)
}

func (m *mockOrderAPI) CreateOrder(ctx context.Context, req client.CreateOrderRequest) (*client.Order, error) {
	if m.createOrderFn != nil {
		return m.createOrderFn(ctx, req)
	}
	return nil, errors.New("unexpected CreateOrder call")
}

func (m *mockOrderAPI) FetchOrders(ctx context.Context) ([]client.Order, error) {
	if m.fetchOrdersFn != nil {
		return m.fetchOrdersFn(ctx)
	}
	return []client.Order{}, nil
}

func (m *mockOrderAPI) UpdateOrderStatus(ctx context.Context, orderNumber, newStatus string) (*client.Order, error) {
	if m.updateOrderStatusFn != nil {
		return m.updateOrderStatusFn(ctx, orderNumber, newStatus)
	}
	return nil, errors.New("unexpected UpdateOrderStatus call")
}

// testCatalog serves DIN-002 (chairs, 5000) and OFF-001 (desk, 12000).
func testCatalog() *workflow.FurnitureCache {
	fetcher := newMockFetcher(func(ctx context.Context, sku string) (*client.Furniture, error) {
		switch sku {
		case "DIN-002":
			return catalogPiece("DIN-002", "5000.00"), nil
		case "OFF-001":
			return catalogPiece("OFF-001", "12000.00"), nil
		}
		return nil, errors.New("furniture not found")
	})
	return workflow.NewFurnitureCache(fetcher)
}

func fillCustomer(f *workflow.OrderForm) {
	f.Customer = client.CustomerInfo{
		Name:          "Asha Verma",
		ContactNumber: "9876543210",
		Email:         "asha@example.com",
		Address:       "12 Teak Lane, Pune",
	}
}

// buildDraft creates the standard two-line draft: 2 dining chairs at 5000
// each plus one writing desk at 12000, total 22000.
func buildDraft(t *testing.T, api *mockOrderAPI) *workflow.OrderForm {
	t.Helper()
	form := workflow.NewOrderForm(api, testCatalog())

	if err := form.AddItem(context.Background(), "DIN-002"); err != nil {
		t.Fatalf("add chair: %v", err)
	}
	if err := form.AddItem(context.Background(), "OFF-001"); err != nil {
		t.Fatalf("add desk: %v", err)
	}
	if err := form.UpdateItem(0, 2, "5000.00", ""); err != nil {
		t.Fatalf("update chair quantity: %v", err)
	}
	fillCustomer(form)
	return form
}

func TestFormSubmit(t *testing.T) {
	var captured client.CreateOrderRequest
	api := &mockOrderAPI{
		createOrderFn: func(ctx context.Context, req client.CreateOrderRequest) (*client.Order, error) {
			captured = req
			return &client.Order{OrderNumber: "ORD-001", Status: "Pending"}, nil
		},
	}
	form := buildDraft(t, api)
	form.Advance = "5000"

	total, err := form.Total()
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total.StringFixed(2) != "22000.00" {
		t.Errorf("total: got %v, want 22000.00", total.StringFixed(2))
	}

	order, err := form.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if order.OrderNumber != "ORD-001" {
		t.Errorf("order number: got %v, want ORD-001", order.OrderNumber)
	}

	if captured.TotalAmount != "22000.00" {
		t.Errorf("sent total: got %v, want 22000.00", captured.TotalAmount)
	}
	if captured.AdvanceAmount != "5000" {
		t.Errorf("sent advance: got %v, want 5000", captured.AdvanceAmount)
	}
	if len(captured.FurnitureItems) != 2 {
		t.Fatalf("sent items: got %d, want 2", len(captured.FurnitureItems))
	}
	if captured.FurnitureItems[0].Quantity != 2 {
		t.Errorf("chair quantity: got %d, want 2", captured.FurnitureItems[0].Quantity)
	}

	// the form is ready for the next customer
	if len(form.Items) != 0 || form.Customer.Name != "" || form.Advance != "0" {
		t.Error("form should reset after a successful submit")
	}
}

func TestFormRejectsAdvanceOverTotal(t *testing.T) {
	created := false
	api := &mockOrderAPI{
		createOrderFn: func(ctx context.Context, req client.CreateOrderRequest) (*client.Order, error) {
			created = true
			return &client.Order{}, nil
		},
	}
	form := buildDraft(t, api) // total 22000
	form.Advance = "30000"

	_, err := form.Submit(context.Background())
	if !errors.Is(err, workflow.ErrAdvanceOverTotal) {
		t.Fatalf("error: got %v, want ErrAdvanceOverTotal", err)
	}
	if created {
		t.Error("a draft that fails validation must never reach the server")
	}

	// the draft is kept so staff can fix the advance
	if len(form.Items) != 2 {
		t.Errorf("items: got %d, want 2 (draft preserved)", len(form.Items))
	}
}

func TestFormKeepsLastItem(t *testing.T) {
	form := workflow.NewOrderForm(&mockOrderAPI{}, testCatalog())
	if err := form.AddItem(context.Background(), "DIN-002"); err != nil {
		t.Fatalf("add item: %v", err)
	}

	err := form.RemoveItem(0)
	if !errors.Is(err, workflow.ErrLastItem) {
		t.Fatalf("error: got %v, want ErrLastItem", err)
	}
	if len(form.Items) != 1 {
		t.Errorf("items: got %d, want 1", len(form.Items))
	}
}

func TestFormRemoveItem(t *testing.T) {
	form := buildDraft(t, &mockOrderAPI{})

	if err := form.RemoveItem(1); err != nil {
		t.Fatalf("remove item: %v", err)
	}
	if len(form.Items) != 1 {
		t.Fatalf("items: got %d, want 1", len(form.Items))
	}
	if form.Items[0].Sku != "DIN-002" {
		t.Errorf("remaining sku: got %v, want DIN-002", form.Items[0].Sku)
	}

	if err := form.RemoveItem(5); !errors.Is(err, workflow.ErrItemIndex) {
		t.Errorf("error: got %v, want ErrItemIndex", err)
	}
}

func TestFormAddItemFillsSalePrice(t *testing.T) {
	form := workflow.NewOrderForm(&mockOrderAPI{}, testCatalog())

	if err := form.AddItem(context.Background(), "OFF-001"); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if form.Items[0].UnitPrice != "12000.00" {
		t.Errorf("unit price: got %v, want catalog sale price 12000.00", form.Items[0].UnitPrice)
	}
	if form.Items[0].Quantity != 1 {
		t.Errorf("quantity: got %d, want 1", form.Items[0].Quantity)
	}
}

func TestFormAddItemUnknownSku(t *testing.T) {
	form := workflow.NewOrderForm(&mockOrderAPI{}, testCatalog())

	if err := form.AddItem(context.Background(), "NO-SUCH"); err == nil {
		t.Fatal("expected error adding unknown sku")
	}
	if len(form.Items) != 0 {
		t.Errorf("items: got %d, want 0", len(form.Items))
	}
}

func TestFormValidate(t *testing.T) {
	t.Run("empty draft", func(t *testing.T) {
		form := workflow.NewOrderForm(&mockOrderAPI{}, testCatalog())
		fillCustomer(form)
		if err := form.Validate(); !errors.Is(err, workflow.ErrNoItems) {
			t.Errorf("error: got %v, want ErrNoItems", err)
		}
	})

	t.Run("missing customer", func(t *testing.T) {
		form := workflow.NewOrderForm(&mockOrderAPI{}, testCatalog())
		form.AddItem(context.Background(), "DIN-002")
		form.Customer.Name = "Asha Verma" // contact, email and address still missing
		if err := form.Validate(); !errors.Is(err, workflow.ErrCustomerIncomplete) {
			t.Errorf("error: got %v, want ErrCustomerIncomplete", err)
		}
	})

	t.Run("missing email only", func(t *testing.T) {
		created := false
		api := &mockOrderAPI{
			createOrderFn: func(ctx context.Context, req client.CreateOrderRequest) (*client.Order, error) {
				created = true
				return &client.Order{}, nil
			},
		}
		form := workflow.NewOrderForm(api, testCatalog())
		form.AddItem(context.Background(), "DIN-002")
		fillCustomer(form)
		form.Customer.Email = ""
		if err := form.Validate(); !errors.Is(err, workflow.ErrCustomerIncomplete) {
			t.Errorf("error: got %v, want ErrCustomerIncomplete", err)
		}
		if _, err := form.Submit(context.Background()); !errors.Is(err, workflow.ErrCustomerIncomplete) {
			t.Errorf("submit error: got %v, want ErrCustomerIncomplete", err)
		}
		if created {
			t.Error("a draft missing the customer email must never reach the server")
		}
	})

	t.Run("bad advance", func(t *testing.T) {
		form := workflow.NewOrderForm(&mockOrderAPI{}, testCatalog())
		form.AddItem(context.Background(), "DIN-002")
		fillCustomer(form)
		form.Advance = "lots"
		if err := form.Validate(); !errors.Is(err, workflow.ErrBadAdvance) {
			t.Errorf("error: got %v, want ErrBadAdvance", err)
		}
	})
}

func TestFormUpdateItemValidation(t *testing.T) {
	form := buildDraft(t, &mockOrderAPI{})

	if err := form.UpdateItem(0, 0, "5000.00", ""); !errors.Is(err, workflow.ErrQuantityTooLow) {
		t.Errorf("error: got %v, want ErrQuantityTooLow", err)
	}
	if err := form.UpdateItem(0, 1, "-5", ""); !errors.Is(err, workflow.ErrBadUnitPrice) {
		t.Errorf("error: got %v, want ErrBadUnitPrice", err)
	}
	if err := form.UpdateItem(9, 1, "5000.00", ""); !errors.Is(err, workflow.ErrItemIndex) {
		t.Errorf("error: got %v, want ErrItemIndex", err)
	}
}
