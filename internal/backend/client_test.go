package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts Options) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts.BaseURL = srv.URL + "/api"
	return NewClient(opts)
}

func TestListProductsReadsAllPages(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Path != "/api/products" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("size") != "2" {
			t.Errorf("unexpected size: %s", r.URL.Query().Get("size"))
		}
		switch r.URL.Query().Get("page") {
		case "0":
			_, _ = io.WriteString(w, `{"content":[{"id":1,"name":"A","price":10.5,"stockQuantity":3,"productAvailable":true},{"id":2,"name":"B","price":"2","stockQuantity":0,"productAvailable":false}],"totalPages":2,"totalElements":3,"number":0,"size":2}`)
		case "1":
			_, _ = io.WriteString(w, `{"content":[{"id":3,"name":"C","price":1,"stockQuantity":9,"productAvailable":true}],"totalPages":2,"totalElements":3,"number":1,"size":2,"last":true}`)
		default:
			t.Errorf("unexpected page: %s", r.URL.Query().Get("page"))
		}
	}, Options{PageSize: 2})

	products, err := client.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list products failed: %v", err)
	}
	if len(products) != 3 || atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected 3 products over 2 calls, got %d over %d", len(products), calls)
	}
	if products[0].Price.String() != "10.50" || !products[0].Available || products[0].StockQuantity != 3 {
		t.Fatalf("unexpected product mapping: %+v", products[0])
	}
	if products[1].Available {
		t.Fatalf("product B should be unavailable")
	}
}

func TestGetProductNotFoundReturnsNil(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"Product not found with id: 4","status":404}`)
	}, Options{})

	product, err := client.GetProduct(context.Background(), 4)
	if err != nil || product != nil {
		t.Fatalf("expected nil product and nil error, got %+v %v", product, err)
	}
}

func TestCreateOrderSendsLinesCSRFAndRequestID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/orders" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("X-XSRF-TOKEN"); got != "tok en" {
			t.Errorf("unexpected csrf header: %q", got)
		}
		if got := r.Header.Get("X-Request-ID"); got != "req-42" {
			t.Errorf("unexpected request id: %q", got)
		}
		if ck, err := r.Cookie("JSESSIONID"); err != nil || ck.Value != "abc" {
			t.Errorf("session cookie missing: %v", err)
		}
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body failed: %v", err)
		}
		items := body["items"].([]interface{})
		line := items[0].(map[string]interface{})
		if line["productId"].(float64) != 7 || line["quantity"].(float64) != 2 {
			t.Errorf("unexpected line: %v", line)
		}
		if _, hasPrice := line["price"]; hasPrice {
			t.Errorf("order line must not carry price")
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":11,"status":"PENDING","paymentStatus":"PENDING","totalAmount":39.8,"orderDate":"2024-05-01T10:11:12.123456","items":[{"id":1,"productId":7,"productName":"Lamp","quantity":2,"priceAtOrder":19.9,"subtotal":39.8}]}`)
	}, Options{SessionCookie: "JSESSIONID=abc; XSRF-TOKEN=tok%20en"})

	ctx := logger.WithRequestID(context.Background(), "req-42")
	order, err := client.CreateOrder(ctx, CreateOrderRequest{
		Items:           []OrderLine{{ProductID: 7, Quantity: 2}},
		ShippingAddress: "1 Main St",
		PhoneNumber:     "5551234567",
		PaymentMethod:   models.PaymentMethodCashOnDelivery,
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.ID != 11 || order.Status != models.OrderStatusPending || order.TotalAmount.String() != "39.80" {
		t.Fatalf("unexpected order: %+v", order)
	}
	if order.OrderDate.Year() != 2024 || order.DeliveryDate != nil {
		t.Fatalf("unexpected dates: %v %v", order.OrderDate, order.DeliveryDate)
	}
	if len(order.Items) != 1 || order.Items[0].Subtotal.String() != "39.80" {
		t.Fatalf("unexpected items: %+v", order.Items)
	}
}

func TestRejectionKeepsServerMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"message":"Cannot transition from SHIPPED to CANCELLED","status":400}`)
	}, Options{})

	_, err := client.SetOrderStatus(context.Background(), 3, models.OrderStatusCancelled)
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	apiErr, ok := AsAPIError(err)
	if !ok || apiErr.UserMessage() != "Cannot transition from SHIPPED to CANCELLED" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
	if IsUnavailable(err) {
		t.Fatalf("4xx must not count as unavailable")
	}
}

func TestValidationErrorsAreListed(t *testing.T) {
	apiErr := &APIError{Status: 400, Message: "Validation failed", ValidationErrors: map[string]string{
		"shippingAddress": "Shipping address is required",
		"items":           "Order must have at least one item",
	}}
	want := "Validation failed (items: Order must have at least one item; shippingAddress: Shipping address is required)"
	if got := apiErr.UserMessage(); got != want {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestServerErrorAndTransportAreUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, Options{})
	_, err := client.GetOrder(context.Background(), 1)
	if !errors.Is(err, ErrServer) || !IsUnavailable(err) {
		t.Fatalf("expected ErrServer, got %v", err)
	}

	dead := NewClient(Options{BaseURL: "http://127.0.0.1:1/api", Timeout: time.Second})
	_, err = dead.GetOrder(context.Background(), 1)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestListAllOrdersPassesStatusFilter(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/orders/admin/all" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("status") != "SHIPPED" || q.Get("page") != "1" || q.Get("size") != "20" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		_, _ = io.WriteString(w, `{"content":[{"id":5,"status":"SHIPPED"}],"totalPages":3,"totalElements":41,"number":1,"size":20}`)
	}, Options{})

	page, err := client.ListAllOrders(context.Background(), OrderListFilter{Page: 1, Size: 20, Status: models.OrderStatusShipped})
	if err != nil {
		t.Fatalf("list all orders failed: %v", err)
	}
	if page.TotalElements != 41 || len(page.Items) != 1 || page.Items[0].Status != models.OrderStatusShipped {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestCurrentUserIsCachedAndResetOnNewSession(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		ck, err := r.Cookie("JSESSIONID")
		if err != nil || ck.Value != "admin" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `{"username":"root","roles":["ROLE_ADMIN"]}`)
	}, Options{SessionCookie: "JSESSIONID=guest", SessionCacheTTL: time.Minute})

	if client.IsAuthenticated(context.Background()) {
		t.Fatalf("guest session should not be authenticated")
	}
	if client.IsAuthenticated(context.Background()) {
		t.Fatalf("negative result should be cached")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}

	if err := client.SetSession("JSESSIONID=admin"); err != nil {
		t.Fatalf("set session failed: %v", err)
	}
	user := client.CurrentUser(context.Background())
	if user == nil || user.Username != "root" || !user.HasRole("ROLE_ADMIN") {
		t.Fatalf("unexpected user: %+v", user)
	}
	_ = client.CurrentUser(context.Background())
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected cached user, got %d calls", calls)
	}
}

func TestSetSessionRejectsGarbage(t *testing.T) {
	client := NewClient(Options{BaseURL: "http://example.invalid"})
	if err := client.SetSession(" ; "); !errors.Is(err, ErrSessionCookieInvalid) {
		t.Fatalf("expected ErrSessionCookieInvalid, got %v", err)
	}
	if err := client.SetSession("novalue"); !errors.Is(err, ErrSessionCookieInvalid) {
		t.Fatalf("expected ErrSessionCookieInvalid, got %v", err)
	}
	if client.IsAuthenticated(context.Background()) {
		t.Fatalf("client without cookie must not be authenticated")
	}
	if !strings.HasPrefix(client.BaseURL(), "http://") {
		t.Fatalf("unexpected base url: %s", client.BaseURL())
	}
}
