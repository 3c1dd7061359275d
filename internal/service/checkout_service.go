package service

import (
	"context"
	"sync"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
)

// CheckoutService 结算流程：会话校验、库存校验、提交
type CheckoutService struct {
	cart       *CartStore
	validator  *StockValidator
	pipeline   *OrderSubmissionPipeline
	session    SessionGate
	revalidate bool

	mu   sync.Mutex
	last *ValidationResult
	// validated 产生 last 时的购物车快照
	validated models.Cart
}

// NewCheckoutService 创建结算服务
// revalidate 为 true 时提交前再次校验库存
func NewCheckoutService(cart *CartStore, validator *StockValidator, pipeline *OrderSubmissionPipeline, session SessionGate, revalidate bool) *CheckoutService {
	return &CheckoutService{
		cart:       cart,
		validator:  validator,
		pipeline:   pipeline,
		session:    session,
		revalidate: revalidate,
	}
}

// Validate 校验当前购物车库存
func (s *CheckoutService) Validate(ctx context.Context) (ValidationResult, error) {
	if !s.authenticated(ctx) {
		return ValidationResult{}, ErrUnauthenticated
	}
	snapshot := s.cart.Snapshot()
	if snapshot.IsEmpty() {
		return ValidationResult{}, ErrCartEmpty
	}
	result := s.validator.Validate(ctx, snapshot)
	s.remember(snapshot, result)
	return result, nil
}

// LastValidation 最近一次校验结果
func (s *CheckoutService) LastValidation() (ValidationResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return ValidationResult{}, false
	}
	return *s.last, true
}

// Submit 提交订单
// 需要当前购物车（商品与数量）已有一次通过的库存校验，revalidate 时当场校验
func (s *CheckoutService) Submit(ctx context.Context, form CheckoutForm) (*models.Order, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	if !s.authenticated(ctx) {
		return nil, ErrUnauthenticated
	}
	snapshot := s.cart.Snapshot()
	if snapshot.IsEmpty() {
		return nil, ErrCartEmpty
	}
	if s.revalidate {
		result := s.validator.Validate(ctx, snapshot)
		s.remember(snapshot, result)
		if !result.OK() {
			return nil, &FlowError{
				Kind:          FlowValidation,
				Message:       result.Discrepancies[0].Message,
				Discrepancies: result.Discrepancies,
				Err:           ErrStockNotValidated,
			}
		}
	} else if !s.validatedFor(snapshot) {
		logger.C(ctx).Infow("checkout_submit_not_validated", "items", len(snapshot.Items))
		return nil, ErrCartNotValidated
	}
	order, err := s.pipeline.Submit(ctx, snapshot, form)
	if err != nil {
		return nil, err
	}
	s.forget()
	return order, nil
}

// Remediate 对指定商品执行最近一次校验给出的修正动作
func (s *CheckoutService) Remediate(ctx context.Context, productID uint) (models.Cart, error) {
	s.mu.Lock()
	var (
		discrepancy models.StockDiscrepancy
		found       bool
	)
	if s.last != nil {
		discrepancy, found = s.last.Find(productID)
	}
	s.mu.Unlock()
	if !found {
		return models.Cart{}, ErrNoRemediation
	}
	cart, err := s.ApplyRemediation(ctx, discrepancy)
	if err != nil {
		return cart, err
	}
	s.resolve(productID)
	return cart, nil
}

// ApplyRemediation 执行差异的修正动作：降到可用库存或移除商品
func (s *CheckoutService) ApplyRemediation(ctx context.Context, d models.StockDiscrepancy) (models.Cart, error) {
	if d.ProductID == 0 || d.Remediation == nil {
		return models.Cart{}, ErrNoRemediation
	}
	switch d.Remediation.Action {
	case constants.RemediationReduceQuantity:
		if d.Remediation.Quantity < 1 {
			return s.cart.RemoveItem(ctx, d.ProductID), nil
		}
		logger.C(ctx).Infow("cart_remediation_reduce", "product_id", d.ProductID, "quantity", d.Remediation.Quantity)
		return s.cart.SetQuantity(ctx, d.ProductID, d.Remediation.Quantity), nil
	case constants.RemediationRemoveItem:
		logger.C(ctx).Infow("cart_remediation_remove", "product_id", d.ProductID)
		return s.cart.RemoveItem(ctx, d.ProductID), nil
	}
	return models.Cart{}, ErrNoRemediation
}

func (s *CheckoutService) authenticated(ctx context.Context) bool {
	return s.session != nil && s.session.IsAuthenticated(ctx)
}

func (s *CheckoutService) remember(snapshot models.Cart, result ValidationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &result
	s.validated = snapshot
}

func (s *CheckoutService) forget() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = nil
	s.validated = models.Cart{}
}

// validatedFor 最近一次校验通过且针对的正是该快照
func (s *CheckoutService) validatedFor(snapshot models.Cart) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil || !s.last.OK() {
		return false
	}
	return sameCartLines(s.validated, snapshot)
}

// sameCartLines 两个快照的商品与数量一致（忽略行顺序）
func sameCartLines(a, b models.Cart) bool {
	if len(a.Items) != len(b.Items) {
		return false
	}
	for _, item := range a.Items {
		other, ok := b.Find(item.ProductID)
		if !ok || other.Quantity != item.Quantity {
			return false
		}
	}
	return true
}

func (s *CheckoutService) resolve(productID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return
	}
	kept := make([]models.StockDiscrepancy, 0, len(s.last.Discrepancies))
	for _, d := range s.last.Discrepancies {
		if d.ProductID != productID {
			kept = append(kept, d)
		}
	}
	s.last.Discrepancies = kept
}
