package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/storefront-next/internal/backend"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

func validForm() CheckoutForm {
	return CheckoutForm{ShippingAddress: "1 Main St", PhoneNumber: "5551234567"}
}

func TestSubmitClearsCartOnSuccess(t *testing.T) {
	ctx := context.Background()
	mirror := repository.NewMemoryCartMirror()
	store := NewCartStore(ctx, mirror)
	store.AddItem(ctx, product(1, 5, true))
	store.AddItem(ctx, product(1, 5, true))
	orders := newFakeOrders()

	order, err := NewOrderSubmissionPipeline(orders, store, time.Second).Submit(ctx, store.Snapshot(), validForm())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if order.ID == 0 || len(order.Items) != 1 || order.Items[0].Quantity != 2 {
		t.Fatalf("unexpected order: %+v", order)
	}
	if !store.Snapshot().IsEmpty() {
		t.Fatalf("cart should be empty after success")
	}
	if items, _ := mirror.Load(ctx); len(items) != 0 {
		t.Fatalf("mirror should be cleared after success")
	}
	req := orders.created[0]
	if req.BillingAddress != "1 Main St" || req.PaymentMethod != models.PaymentMethodCashOnDelivery {
		t.Fatalf("unexpected defaults: %+v", req)
	}
}

func TestSubmitRejectionKeepsCartAndServerMessage(t *testing.T) {
	ctx := context.Background()
	store := NewCartStore(ctx, repository.NewMemoryCartMirror())
	store.AddItem(ctx, product(1, 5, true))
	before := store.Snapshot()
	orders := newFakeOrders()
	orders.createErr = &backend.APIError{Status: 400, Message: "Insufficient stock for product: product-1"}

	_, err := NewOrderSubmissionPipeline(orders, store, time.Second).Submit(ctx, before, validForm())
	flowErr, ok := AsFlowError(err)
	if !ok || flowErr.Kind != FlowSubmission {
		t.Fatalf("expected submission error, got %v", err)
	}
	if flowErr.Message != "Insufficient stock for product: product-1" {
		t.Fatalf("server message should pass through verbatim, got %q", flowErr.Message)
	}
	after := store.Snapshot()
	if len(after.Items) != 1 || after.Items[0].Quantity != before.Items[0].Quantity {
		t.Fatalf("cart changed after failed submit: %+v", after)
	}
	if len(orders.created) != 1 {
		t.Fatalf("submission must not be retried, got %d attempts", len(orders.created))
	}
}

func TestSubmitTransportFailure(t *testing.T) {
	ctx := context.Background()
	store := NewCartStore(ctx, repository.NewMemoryCartMirror())
	store.AddItem(ctx, product(1, 5, true))
	orders := newFakeOrders()
	orders.createErr = errUnreachable

	_, err := NewOrderSubmissionPipeline(orders, store, time.Second).Submit(ctx, store.Snapshot(), validForm())
	flowErr, ok := AsFlowError(err)
	if !ok || flowErr.Kind != FlowTransport || !errors.Is(err, backend.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if store.Snapshot().IsEmpty() {
		t.Fatalf("cart must survive transport failure")
	}
}

func TestSubmitSurvivesCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := NewCartStore(ctx, repository.NewMemoryCartMirror())
	store.AddItem(ctx, product(1, 5, true))
	snapshot := store.Snapshot()
	cancel()

	orders := newFakeOrders()
	if _, err := NewOrderSubmissionPipeline(orders, store, time.Second).Submit(ctx, snapshot, validForm()); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if orders.createCtxErr != nil {
		t.Fatalf("submission context should not inherit cancellation: %v", orders.createCtxErr)
	}
	if !store.Snapshot().IsEmpty() {
		t.Fatalf("cart should be cleared")
	}
}

func TestSubmitEmptySnapshot(t *testing.T) {
	orders := newFakeOrders()
	store := NewCartStore(context.Background(), nil)
	_, err := NewOrderSubmissionPipeline(orders, store, 0).Submit(context.Background(), models.Cart{}, validForm())
	if !errors.Is(err, ErrCartEmpty) || len(orders.created) != 0 {
		t.Fatalf("expected ErrCartEmpty without request, got %v", err)
	}
}

func TestSubmitSendsSnapshotNotLiveCart(t *testing.T) {
	ctx := context.Background()
	store := NewCartStore(ctx, repository.NewMemoryCartMirror())
	store.AddItem(ctx, product(1, 5, true))
	snapshot := store.Snapshot()
	store.SetQuantity(ctx, 1, 4)

	orders := newFakeOrders()
	if _, err := NewOrderSubmissionPipeline(orders, store, time.Second).Submit(ctx, snapshot, validForm()); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if orders.created[0].Items[0].Quantity != 1 {
		t.Fatalf("request should reflect the snapshot, got %+v", orders.created[0].Items)
	}
}

func TestCheckoutFormValidate(t *testing.T) {
	cases := []struct {
		form   CheckoutForm
		fields []string
	}{
		{validForm(), nil},
		{CheckoutForm{PhoneNumber: "5551234567"}, []string{"shipping_address"}},
		{CheckoutForm{ShippingAddress: "x"}, []string{"phone_number"}},
		{CheckoutForm{ShippingAddress: "x", PhoneNumber: "555-123-45"}, []string{"phone_number"}},
		{CheckoutForm{ShippingAddress: "x", PhoneNumber: "55512345678"}, []string{"phone_number"}},
		{CheckoutForm{ShippingAddress: "x", PhoneNumber: "5551234567", PaymentMethod: "BITCOIN"}, []string{"payment_method"}},
		{CheckoutForm{ShippingAddress: "x", PhoneNumber: "5551234567", PaymentMethod: "upi"}, nil},
	}
	for i, tc := range cases {
		err := tc.form.Validate()
		if len(tc.fields) == 0 {
			if err != nil {
				t.Fatalf("case %d: unexpected error %v", i, err)
			}
			continue
		}
		var formErr *FormError
		if !errors.As(err, &formErr) {
			t.Fatalf("case %d: expected FormError, got %v", i, err)
		}
		for _, field := range tc.fields {
			if formErr.Fields[field] == "" {
				t.Fatalf("case %d: expected field %s in %v", i, field, formErr.Fields)
			}
		}
	}
}

func TestSubmitTwoLineCartClearsOnceAfterAck(t *testing.T) {
	ctx := context.Background()
	orders := newFakeOrders()
	mirror := &countingMirror{}
	ackedAtClear := -1
	mirror.onClear = func() { ackedAtClear = orders.acknowledged() }

	store := NewCartStore(ctx, mirror)
	a := pricedProduct(1, "A", "10", 10)
	b := pricedProduct(2, "B", "5", 10)
	store.AddItem(ctx, a)
	store.AddItem(ctx, a)
	store.AddItem(ctx, b)
	snapshot := store.Snapshot()
	if snapshot.TotalAmount().String() != "25.00" {
		t.Fatalf("expected total 25.00, got %s", snapshot.TotalAmount().String())
	}

	order, err := NewOrderSubmissionPipeline(orders, store, time.Second).Submit(ctx, snapshot, validForm())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if len(orders.created) != 1 {
		t.Fatalf("expected one create call, got %d", len(orders.created))
	}
	lines := orders.created[0].Items
	if len(lines) != 2 || lines[0].ProductID != 1 || lines[0].Quantity != 2 || lines[1].ProductID != 2 || lines[1].Quantity != 1 {
		t.Fatalf("unexpected order lines: %+v", lines)
	}
	if len(order.Items) != 2 {
		t.Fatalf("server order should carry both lines: %+v", order.Items)
	}
	if mirror.clears != 1 {
		t.Fatalf("clear must run exactly once, got %d", mirror.clears)
	}
	if ackedAtClear != 1 {
		t.Fatalf("clear must follow the acknowledgement, saw %d stored orders", ackedAtClear)
	}
	if !store.Snapshot().IsEmpty() {
		t.Fatalf("cart should be empty")
	}
}

func TestSubmitTwoLineCartFailureKeepsBothLines(t *testing.T) {
	ctx := context.Background()
	orders := newFakeOrders()
	orders.createErr = &backend.APIError{Status: 400, Message: "Insufficient stock for product: A"}
	mirror := &countingMirror{}

	store := NewCartStore(ctx, mirror)
	a := pricedProduct(1, "A", "10", 10)
	store.AddItem(ctx, a)
	store.AddItem(ctx, a)
	store.AddItem(ctx, pricedProduct(2, "B", "5", 10))

	if _, err := NewOrderSubmissionPipeline(orders, store, time.Second).Submit(ctx, store.Snapshot(), validForm()); err == nil {
		t.Fatalf("expected rejection")
	}
	if mirror.clears != 0 {
		t.Fatalf("clear must not run on failure, got %d", mirror.clears)
	}
	cart := store.Snapshot()
	first, okA := cart.Find(1)
	second, okB := cart.Find(2)
	if !okA || !okB || first.Quantity != 2 || second.Quantity != 1 || len(cart.Items) != 2 {
		t.Fatalf("both lines must survive: %+v", cart.Items)
	}
	if persisted, _ := mirror.Load(ctx); len(persisted) != 2 {
		t.Fatalf("mirror must keep both lines, got %+v", persisted)
	}
}
