package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
)

type fakeProduct struct {
	ID               uint    `json:"id"`
	Name             string  `json:"name"`
	Brand            string  `json:"brand"`
	Price            float64 `json:"price"`
	StockQuantity    int     `json:"stockQuantity"`
	ProductAvailable bool    `json:"productAvailable"`
}

type fakeOrderItem struct {
	ID           uint    `json:"id"`
	ProductID    uint    `json:"productId"`
	ProductName  string  `json:"productName"`
	Quantity     int     `json:"quantity"`
	PriceAtOrder float64 `json:"priceAtOrder"`
	Subtotal     float64 `json:"subtotal"`
}

type fakeOrder struct {
	ID              uint            `json:"id"`
	OrderDate       string          `json:"orderDate"`
	Status          string          `json:"status"`
	TotalAmount     float64         `json:"totalAmount"`
	ShippingAddress string          `json:"shippingAddress"`
	BillingAddress  string          `json:"billingAddress"`
	PhoneNumber     string          `json:"phoneNumber"`
	PaymentStatus   string          `json:"paymentStatus"`
	PaymentMethod   string          `json:"paymentMethod"`
	Items           []fakeOrderItem `json:"items"`
	Username        string          `json:"username"`
}

type fakeUser struct {
	ID       uint     `json:"id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// fakeStorefront 模拟远端商城后端（目录、订单、会话）
type fakeStorefront struct {
	mu       sync.Mutex
	products map[uint]*fakeProduct
	orders   map[uint]*fakeOrder
	users    map[string]fakeUser
	nextID   uint
	creates  int
}

func newFakeStorefront() *fakeStorefront {
	return &fakeStorefront{
		products: map[uint]*fakeProduct{
			1: {ID: 1, Name: "Lamp", Brand: "Lumo", Price: 19.9, StockQuantity: 3, ProductAvailable: true},
			2: {ID: 2, Name: "Chair", Brand: "Sitwell", Price: 45, StockQuantity: 10, ProductAvailable: true},
			3: {ID: 3, Name: "Retired Desk", Brand: "Oldco", Price: 120, StockQuantity: 0, ProductAvailable: false},
		},
		orders: map[uint]*fakeOrder{},
		users: map[string]fakeUser{
			"customer": {ID: 1, Username: "alice", Roles: []string{"ROLE_USER"}},
			"seller":   {ID: 2, Username: "sam", Roles: []string{"ROLE_SELLER"}},
			"admin":    {ID: 3, Username: "root", Roles: []string{"ROLE_ADMIN"}},
		},
		nextID: 100,
	}
}

func (s *fakeStorefront) start(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products", s.listProducts)
	mux.HandleFunc("GET /api/product/{id}", s.getProduct)
	mux.HandleFunc("GET /api/auth/me", s.me)
	mux.HandleFunc("POST /api/orders", s.createOrder)
	mux.HandleFunc("GET /api/orders", s.listOrders)
	mux.HandleFunc("GET /api/orders/admin/all", s.listOrders)
	mux.HandleFunc("GET /api/orders/{id}", s.getOrder)
	mux.HandleFunc("PUT /api/orders/{id}/cancel", s.cancelOrder)
	mux.HandleFunc("PUT /api/orders/admin/{id}/status", s.setStatus)
	mux.HandleFunc("DELETE /api/orders/admin/{id}", s.deleteOrder)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (s *fakeStorefront) setStock(id uint, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[id].StockQuantity = stock
}

func (s *fakeStorefront) orderStatus(id uint) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return "", false
	}
	return order.Status, true
}

func (s *fakeStorefront) createCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creates
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{"message": msg, "status": status})
}

func (s *fakeStorefront) currentUser(r *http.Request) (fakeUser, bool) {
	ck, err := r.Cookie("JSESSIONID")
	if err != nil {
		return fakeUser{}, false
	}
	user, ok := s.users[ck.Value]
	return user, ok
}

func pathID(r *http.Request) uint {
	id, _ := strconv.ParseUint(r.PathValue("id"), 10, 64)
	return uint(id)
}

func (s *fakeStorefront) listProducts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content := make([]fakeProduct, 0, len(s.products))
	for _, p := range s.products {
		content = append(content, *p)
	}
	sort.Slice(content, func(i, j int) bool { return content[i].ID < content[j].ID })
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"content":       content,
		"totalPages":    1,
		"totalElements": len(content),
		"number":        0,
		"size":          len(content),
		"last":          true,
	})
}

func (s *fakeStorefront) getProduct(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := pathID(r)
	p, ok := s.products[id]
	if !ok {
		writeMessage(w, http.StatusNotFound, fmt.Sprintf("Product not found with id: %d", id))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *fakeStorefront) me(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *fakeStorefront) createOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req struct {
		Items []struct {
			ProductID uint `json:"productId"`
			Quantity  int  `json:"quantity"`
		} `json:"items"`
		ShippingAddress string `json:"shippingAddress"`
		BillingAddress  string `json:"billingAddress"`
		PhoneNumber     string `json:"phoneNumber"`
		PaymentMethod   string `json:"paymentMethod"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed request")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	for _, line := range req.Items {
		p, ok := s.products[line.ProductID]
		if !ok {
			writeMessage(w, http.StatusNotFound, fmt.Sprintf("Product not found with id: %d", line.ProductID))
			return
		}
		if p.StockQuantity < line.Quantity {
			writeMessage(w, http.StatusBadRequest, "Insufficient stock for product: "+p.Name)
			return
		}
	}

	s.nextID++
	order := &fakeOrder{
		ID:              s.nextID,
		OrderDate:       "2024-05-01T10:11:12",
		Status:          "PENDING",
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		PhoneNumber:     req.PhoneNumber,
		PaymentStatus:   "PENDING",
		PaymentMethod:   req.PaymentMethod,
		Username:        user.Username,
	}
	for i, line := range req.Items {
		p := s.products[line.ProductID]
		p.StockQuantity -= line.Quantity
		subtotal := p.Price * float64(line.Quantity)
		order.Items = append(order.Items, fakeOrderItem{
			ID:           uint(i + 1),
			ProductID:    p.ID,
			ProductName:  p.Name,
			Quantity:     line.Quantity,
			PriceAtOrder: p.Price,
			Subtotal:     subtotal,
		})
		order.TotalAmount += subtotal
	}
	s.orders[order.ID] = order
	writeJSON(w, http.StatusCreated, order)
}

func (s *fakeStorefront) listOrders(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := r.URL.Query().Get("status")
	content := make([]fakeOrder, 0, len(s.orders))
	for _, o := range s.orders {
		if status != "" && o.Status != status {
			continue
		}
		content = append(content, *o)
	}
	sort.Slice(content, func(i, j int) bool { return content[i].ID > content[j].ID })
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"content":       content,
		"totalPages":    1,
		"totalElements": len(content),
		"number":        0,
		"size":          20,
	})
}

func (s *fakeStorefront) getOrder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := pathID(r)
	order, ok := s.orders[id]
	if !ok {
		writeMessage(w, http.StatusNotFound, fmt.Sprintf("Order not found with id: %d", id))
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *fakeStorefront) cancelOrder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[pathID(r)]
	if !ok {
		writeMessage(w, http.StatusNotFound, "Order not found")
		return
	}
	if order.Status != "PENDING" && order.Status != "CONFIRMED" {
		writeMessage(w, http.StatusBadRequest, "Cannot cancel order in status "+order.Status)
		return
	}
	order.Status = "CANCELLED"
	writeJSON(w, http.StatusOK, order)
}

func (s *fakeStorefront) setStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed request")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[pathID(r)]
	if !ok {
		writeMessage(w, http.StatusNotFound, "Order not found")
		return
	}
	if order.Status == "DELIVERED" || order.Status == "CANCELLED" {
		writeMessage(w, http.StatusBadRequest, fmt.Sprintf("Cannot transition from %s to %s", order.Status, req.Status))
		return
	}
	order.Status = req.Status
	writeJSON(w, http.StatusOK, order)
}

func (s *fakeStorefront) deleteOrder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := pathID(r)
	if _, ok := s.orders[id]; !ok {
		writeMessage(w, http.StatusNotFound, "Order not found")
		return
	}
	delete(s.orders, id)
	w.WriteHeader(http.StatusNoContent)
}
