package workflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/banyan-furniture/api/pkg/client"
	"github.com/banyan-furniture/api/pkg/workflow"
)

func boardOrder(orderNumber, status string) client.Order {
	return client.Order{
		OrderNumber: orderNumber,
		Status:      status,
		CustomerInfo: client.CustomerInfo{
			Name:          "Asha Verma",
			ContactNumber: "9876543210",
			Address:       "12 Teak Lane, Pune",
		},
		FurnitureItems: []client.OrderItem{
			{Sku: "DIN-002", Quantity: 2, UnitPrice: "5000.00"},
		},
		TotalAmount: "10000.00",
		MillWorker:  "Not Assigned",
	}
}

func loadedBoard(t *testing.T, api *mockOrderAPI, orders ...client.Order) *workflow.OrderBoard {
	t.Helper()
	api.fetchOrdersFn = func(ctx context.Context) ([]client.Order, error) {
		return orders, nil
	}
	board := workflow.NewOrderBoard(api, testCatalog())
	if err := board.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	return board
}

func TestBoardSetStatus(t *testing.T) {
	api := &mockOrderAPI{
		updateOrderStatusFn: func(ctx context.Context, orderNumber, newStatus string) (*client.Order, error) {
			updated := boardOrder(orderNumber, newStatus)
			return &updated, nil
		},
	}
	board := loadedBoard(t, api, boardOrder("ORD-001", "Pending"), boardOrder("ORD-002", "Pending"))

	updated, err := board.SetStatus(context.Background(), "ORD-001", "In Production")
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if updated.Status != "In Production" {
		t.Errorf("status: got %v, want In Production", updated.Status)
	}

	// the board's copy reflects the confirmed change, others untouched
	orders := board.Orders()
	if orders[0].Status != "In Production" {
		t.Errorf("board copy: got %v, want In Production", orders[0].Status)
	}
	if orders[1].Status != "Pending" {
		t.Errorf("other order: got %v, want Pending", orders[1].Status)
	}
}

func TestBoardSetStatusFailureLeavesBoardUntouched(t *testing.T) {
	calls := 0
	api := &mockOrderAPI{
		updateOrderStatusFn: func(ctx context.Context, orderNumber, newStatus string) (*client.Order, error) {
			calls++
			if calls == 1 {
				return nil, &client.APIError{StatusCode: 409, Message: "order status has changed"}
			}
			updated := boardOrder(orderNumber, newStatus)
			return &updated, nil
		},
	}
	board := loadedBoard(t, api, boardOrder("ORD-001", "Pending"))

	_, err := board.SetStatus(context.Background(), "ORD-001", "In Production")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 409 {
		t.Fatalf("error: got %v, want 409 APIError", err)
	}
	if board.Orders()[0].Status != "Pending" {
		t.Error("a failed update must not change the board's copy")
	}

	// the guard is released, so a retry goes through
	if board.UpdateInFlight("ORD-001") {
		t.Fatal("guard should be cleared after a failed update")
	}
	if _, err := board.SetStatus(context.Background(), "ORD-001", "In Production"); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if board.Orders()[0].Status != "In Production" {
		t.Error("retry should patch the board's copy")
	}
}

func TestBoardSecondUpdateWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	api := &mockOrderAPI{
		updateOrderStatusFn: func(ctx context.Context, orderNumber, newStatus string) (*client.Order, error) {
			close(started)
			<-release
			updated := boardOrder(orderNumber, newStatus)
			return &updated, nil
		},
	}
	board := loadedBoard(t, api, boardOrder("ORD-001", "Pending"))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		board.SetStatus(context.Background(), "ORD-001", "In Production")
	}()

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("first update never started")
	}

	if !board.UpdateInFlight("ORD-001") {
		t.Error("expected in-flight guard while the first update is pending")
	}
	if _, err := board.SetStatus(context.Background(), "ORD-001", "Completed"); !errors.Is(err, workflow.ErrUpdateInFlight) {
		t.Errorf("error: got %v, want ErrUpdateInFlight", err)
	}

	close(release)
	wg.Wait()

	if board.UpdateInFlight("ORD-001") {
		t.Error("guard should be cleared after the update completes")
	}
}

func TestBoardFilter(t *testing.T) {
	verma := boardOrder("ORD-001", "Pending")
	rao := boardOrder("ORD-002", "In Production")
	rao.CustomerInfo.Name = "Kiran Rao"
	rao.MillWorker = "Ravi"
	board := loadedBoard(t, &mockOrderAPI{}, verma, rao)

	// case-insensitive substring over customer name
	got := board.Filter("VERMA", "")
	if len(got) != 1 || got[0].OrderNumber != "ORD-001" {
		t.Errorf("filter by name: got %v", got)
	}

	// mill worker matches too
	got = board.Filter("ravi", "")
	if len(got) != 1 || got[0].OrderNumber != "ORD-002" {
		t.Errorf("filter by mill worker: got %v", got)
	}

	// status is exact, empty query matches everything
	got = board.Filter("", "In Production")
	if len(got) != 1 || got[0].OrderNumber != "ORD-002" {
		t.Errorf("filter by status: got %v", got)
	}

	// both constraints apply
	got = board.Filter("verma", "In Production")
	if len(got) != 0 {
		t.Errorf("combined filter: got %v, want none", got)
	}

	// no constraints returns all
	got = board.Filter("", "")
	if len(got) != 2 {
		t.Errorf("empty filter: got %d, want 2", len(got))
	}
}

func TestBoardStats(t *testing.T) {
	board := loadedBoard(t, &mockOrderAPI{},
		boardOrder("ORD-001", "Pending"),
		boardOrder("ORD-002", "Pending"),
		boardOrder("ORD-003", "In Production"),
		boardOrder("ORD-004", "Ready for Delivery"),
		boardOrder("ORD-005", "Completed"),
		boardOrder("ORD-006", "Cancelled"),
	)

	s := board.Stats()
	if s.Total != 6 {
		t.Errorf("total: got %d, want 6", s.Total)
	}
	if s.Pending != 2 || s.InProduction != 1 || s.Ready != 1 || s.Completed != 1 || s.Cancelled != 1 {
		t.Errorf("stats: got %+v", s)
	}
	// every order carries one line of quantity 2
	if s.TotalItems != 12 {
		t.Errorf("total items: got %d, want 12", s.TotalItems)
	}
}

func TestBoardOpenDetail(t *testing.T) {
	order := boardOrder("ORD-001", "Pending")
	order.FurnitureItems = []client.OrderItem{
		{Sku: "DIN-002", Quantity: 2, UnitPrice: "5000.00"},
		{Sku: "DIN-002", Quantity: 1, UnitPrice: "5000.00"},
		{Sku: "NO-SUCH", Quantity: 1, UnitPrice: "100.00"},
	}
	board := loadedBoard(t, &mockOrderAPI{}, order)

	detail, err := board.OpenDetail(context.Background(), "ORD-001")
	if err != nil {
		t.Fatalf("open detail: %v", err)
	}

	// resolved once per distinct SKU; unresolvable SKUs are simply left out
	if len(detail.Furniture) != 1 {
		t.Fatalf("resolved pieces: got %d, want 1", len(detail.Furniture))
	}
	if detail.Furniture["DIN-002"] == nil {
		t.Fatal("expected DIN-002 in detail")
	}

	if _, err := board.OpenDetail(context.Background(), "ORD-999"); err == nil {
		t.Error("expected error for an order that is not loaded")
	}
}

func TestBoardRefreshError(t *testing.T) {
	api := &mockOrderAPI{
		fetchOrdersFn: func(ctx context.Context) ([]client.Order, error) {
			return nil, errors.New("network down")
		},
	}
	board := workflow.NewOrderBoard(api, testCatalog())

	if err := board.Refresh(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if len(board.Orders()) != 0 {
		t.Error("failed refresh should leave the board empty")
	}
}
