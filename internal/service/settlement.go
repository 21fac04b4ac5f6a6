package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/behancebrothers-ops/jjfg-sub000/internal/domain"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/gateway"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/metrics"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/notification"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/ratelimit"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/repository"
	apperrors "github.com/behancebrothers-ops/jjfg-sub000/pkg/errors"
	"github.com/behancebrothers-ops/jjfg-sub000/pkg/tracing"
	"github.com/behancebrothers-ops/jjfg-sub000/pkg/validator"
)

const tracerName = "github.com/behancebrothers-ops/jjfg-sub000/internal/service"

// DirectSettlementRequest settles a cart for payment on delivery. The
// shipping address is checked by the pricing validator, not here.
type DirectSettlementRequest struct {
	Lines            []domain.CartLine `json:"lines" validate:"required,min=1,max=100,dive"`
	ShippingAddress  domain.Address    `json:"shipping_address" validate:"-"`
	DiscountCode     string            `json:"discount_code,omitempty" validate:"omitempty,max=64"`
	ShippingMethodID string            `json:"shipping_method_id,omitempty" validate:"omitempty,uuid"`
	Email            string            `json:"email,omitempty" validate:"omitempty,email"`
}

// GatewaySessionRequest starts a card payment for a cart.
type GatewaySessionRequest struct {
	Lines            []domain.CartLine `json:"lines" validate:"required,min=1,max=100,dive"`
	ShippingAddress  domain.Address    `json:"shipping_address" validate:"-"`
	DiscountCode     string            `json:"discount_code,omitempty" validate:"omitempty,max=64"`
	ShippingMethodID string            `json:"shipping_method_id,omitempty" validate:"omitempty,uuid"`
	Email            string            `json:"email,omitempty" validate:"omitempty,email"`
	SuccessURL       string            `json:"success_url,omitempty" validate:"omitempty,url"`
	CancelURL        string            `json:"cancel_url,omitempty" validate:"omitempty,url"`
}

// ConfirmSettlementRequest confirms a paid gateway session.
type ConfirmSettlementRequest struct {
	SessionID string `json:"session_id" validate:"required,max=255"`
}

// Config holds settlement tunables.
type Config struct {
	GatewayTimeout time.Duration
	NotifyTimeout  time.Duration
	SuccessURL     string
	CancelURL      string
}

// Dependencies are the collaborators of a SettlementService.
type Dependencies struct {
	Pricing   *PricingValidator
	Discounts *DiscountLedger
	Shipping  *ShippingTable
	Factory   *OrderFactory
	Inventory *InventoryUpdater
	Orders    repository.OrderRepository
	Carts     repository.CartRepository
	Gateway   gateway.PaymentGateway
	Limiter   ratelimit.Limiter
	Notifier  notification.Notifier
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// SettlementService turns carts into orders along the direct and the
// gateway-deferred path.
type SettlementService struct {
	Dependencies
	cfg Config

	// notifications tracks in-flight notification sends.
	notifications sync.WaitGroup
}

// NewSettlementService creates the settlement orchestrator.
func NewSettlementService(deps Dependencies, cfg Config) *SettlementService {
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.Allow{}
	}
	return &SettlementService{Dependencies: deps, cfg: cfg}
}

// run tracks the state a settlement reaches and records it once.
type run struct {
	path  string
	state domain.SettlementState
	start time.Time
	log   *slog.Logger
}

func (s *SettlementService) begin(path string, caller domain.Caller) *run {
	return &run{
		path:  path,
		state: domain.StateValidating,
		start: time.Now(),
		log: s.Logger.With(
			slog.String("correlation_id", caller.CorrelationID),
			slog.String("identity", caller.Identity),
			slog.String("settlement_path", path),
		),
	}
}

func (r *run) to(state domain.SettlementState) {
	r.state = state
	r.log.Debug("settlement state", slog.String("state", string(state)))
}

func (s *SettlementService) finish(ctx context.Context, r *run) {
	s.Metrics.Settlement(r.path, string(r.state), time.Since(r.start))
	r.log.InfoContext(ctx, "settlement finished",
		slog.String("state", string(r.state)),
		slog.Duration("elapsed", time.Since(r.start)),
	)
}

// admit runs the checks every entry point shares: an identified caller, a
// valid request and a rate-limit allowance, in that order.
func (s *SettlementService) admit(ctx context.Context, r *run, caller domain.Caller, bucket string, req any) error {
	if strings.TrimSpace(caller.Identity) == "" {
		return apperrors.Unauthorized("a user or guest identity is required")
	}
	if err := validator.Validate(req); err != nil {
		return err
	}

	decision, err := s.Limiter.Check(ctx, caller.Identity, bucket)
	if err != nil {
		// The limiter is an external pre-check; its outage must not stop sales.
		r.log.WarnContext(ctx, "rate limiter unavailable, admitting request", slog.String("error", err.Error()))
		return nil
	}
	if !decision.Allowed {
		return rateLimited(decision.RetryAfter)
	}
	return nil
}

// fail passes client errors through and turns everything else into a
// generic error with a logged diagnostic id.
func (s *SettlementService) fail(ctx context.Context, r *run, err error) error {
	if errors.Is(err, ErrGatewayDeclined) {
		r.state = domain.StateGatewayDeclined
	} else {
		r.state = domain.StateRejected
	}

	var appErr *apperrors.AppError
	var valErr *validator.ValidationError
	if errors.As(err, &appErr) || errors.As(err, &valErr) {
		r.log.InfoContext(ctx, "settlement rejected", slog.String("reason", err.Error()))
		return err
	}

	kind := ErrPersistence
	switch {
	case errors.Is(err, ErrCatalogUnavailable):
		kind = ErrCatalogUnavailable
	case errors.Is(err, ErrGatewayUnavailable):
		kind = ErrGatewayUnavailable
	}
	diagnosticID := uuid.New().String()
	r.log.ErrorContext(ctx, "settlement failed",
		slog.String("diagnostic_id", diagnosticID),
		slog.String("error", err.Error()),
	)
	return systemError(kind, err, diagnosticID)
}

// SettleDirect settles a cart for payment on delivery in one request.
func (s *SettlementService) SettleDirect(ctx context.Context, caller domain.Caller, req *DirectSettlementRequest) (result *domain.SettlementResult, err error) {
	ctx, end := tracing.StartSpan(ctx, tracerName, "settlement.direct", attribute.String("identity", caller.Identity))
	defer func() { end(err) }()

	r := s.begin(metrics.PathDirect, caller)
	defer s.finish(ctx, r)

	if err := s.admit(ctx, r, caller, ratelimit.BucketDirect, req); err != nil {
		return nil, s.fail(ctx, r, err)
	}

	email := req.Email
	if email == "" {
		email = caller.Email
	}

	o, err := s.createOrder(ctx, r, caller, orderInput{
		lines:            req.Lines,
		address:          req.ShippingAddress,
		discountCode:     req.DiscountCode,
		shippingMethodID: req.ShippingMethodID,
		meta: OrderMeta{
			Caller:        caller,
			Email:         email,
			Status:        domain.OrderStatusPending,
			PaymentMethod: domain.PaymentMethodCashOnDelivery,
			PaymentStatus: domain.PaymentStatusPending,
		},
	})
	if err != nil {
		return nil, s.fail(ctx, r, err)
	}

	return s.complete(ctx, r, caller, o), nil
}

// BeginGatewaySettlement prices the cart and opens a payment session. No
// order exists until the session is confirmed.
func (s *SettlementService) BeginGatewaySettlement(ctx context.Context, caller domain.Caller, req *GatewaySessionRequest) (session *domain.GatewaySession, err error) {
	ctx, end := tracing.StartSpan(ctx, tracerName, "settlement.gateway_begin", attribute.String("identity", caller.Identity))
	defer func() { end(err) }()

	r := s.begin(metrics.PathGatewayBegin, caller)
	defer s.finish(ctx, r)

	if err := s.admit(ctx, r, caller, ratelimit.BucketGatewayBegin, req); err != nil {
		return nil, s.fail(ctx, r, err)
	}

	priced, err := s.Pricing.Validate(ctx, req.Lines, req.ShippingAddress)
	if err != nil {
		return nil, s.fail(ctx, r, err)
	}
	r.to(domain.StatePricingOK)

	red, err := s.Discounts.Quote(ctx, req.DiscountCode, priced.Subtotal)
	if err != nil {
		return nil, s.fail(ctx, r, err)
	}
	r.to(domain.StateDiscountResolved)

	quote := s.Shipping.Quote(ctx, req.ShippingMethodID)
	totals := s.Factory.Totals(priced, red, quote)

	email := req.Email
	if email == "" {
		email = caller.Email
	}
	params, err := s.sessionParams(caller, req, email, priced, red, quote, totals)
	if err != nil {
		return nil, s.fail(ctx, r, err)
	}

	gwCtx, cancel := s.gatewayContext(ctx)
	defer cancel()
	created, err := s.Gateway.CreateSession(gwCtx, params)
	if err != nil {
		return nil, s.fail(ctx, r, fmt.Errorf("%w: create session: %w", ErrGatewayUnavailable, err))
	}

	r.log.InfoContext(ctx, "payment session created",
		slog.String("session_id", created.ID),
		slog.Int64("total_amount", totals.TotalAmount),
	)
	return &domain.GatewaySession{SessionID: created.ID, RedirectURL: created.RedirectURL, Totals: totals}, nil
}

// ConfirmGatewaySettlement materializes the order for a paid session. It is
// idempotent on the session id: repeated or concurrent confirmations return
// the order created by the first one.
func (s *SettlementService) ConfirmGatewaySettlement(ctx context.Context, caller domain.Caller, req *ConfirmSettlementRequest) (result *domain.SettlementResult, err error) {
	ctx, end := tracing.StartSpan(ctx, tracerName, "settlement.gateway_confirm",
		attribute.String("identity", caller.Identity),
		attribute.String("session_id", req.SessionID),
	)
	defer func() { end(err) }()

	r := s.begin(metrics.PathConfirm, caller)
	r.log = r.log.With(slog.String("session_id", req.SessionID))
	defer s.finish(ctx, r)

	if err := s.admit(ctx, r, caller, ratelimit.BucketConfirm, req); err != nil {
		return nil, s.fail(ctx, r, err)
	}

	if res, ok, err := s.alreadySettled(ctx, r, caller, req.SessionID); err != nil || ok {
		if err != nil {
			return nil, s.fail(ctx, r, err)
		}
		return res, nil
	}

	gwCtx, cancel := s.gatewayContext(ctx)
	defer cancel()
	status, err := s.Gateway.GetSession(gwCtx, req.SessionID)
	if err != nil {
		if errors.Is(err, gateway.ErrSessionNotFound) {
			return nil, s.fail(ctx, r, apperrors.NotFound("payment session", req.SessionID))
		}
		return nil, s.fail(ctx, r, fmt.Errorf("%w: get session: %w", ErrGatewayUnavailable, err))
	}
	if status.Metadata[gateway.MetaIdentity] != caller.Identity {
		return nil, s.fail(ctx, r, apperrors.Forbidden("payment session belongs to another shopper"))
	}
	if !status.Paid() {
		return nil, s.fail(ctx, r, gatewayDeclined(status.PaymentStatus))
	}

	o, err := s.confirmPaid(ctx, r, caller, status)
	if err != nil {
		// A concurrent confirmation may have won the race and cleared the
		// cart or used the discount; its order is the answer.
		if res, ok, lookupErr := s.alreadySettled(ctx, r, caller, req.SessionID); lookupErr == nil && ok {
			return res, nil
		}
		return nil, s.fail(ctx, r, err)
	}

	if status.AmountTotal > o.TotalAmount {
		r.log.WarnContext(ctx, "paid amount exceeds recomputed total",
			slog.Int64("paid_amount", status.AmountTotal),
			slog.Int64("total_amount", o.TotalAmount),
			slog.String("order_id", o.ID),
		)
	}

	return s.complete(ctx, r, caller, o), nil
}

func (s *SettlementService) confirmPaid(ctx context.Context, r *run, caller domain.Caller, status *gateway.SessionStatus) (*domain.Order, error) {
	cart, err := s.Carts.Get(ctx, caller.Identity)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, cartEmpty()
		}
		return nil, fmt.Errorf("%w: get cart: %w", ErrPersistence, err)
	}

	addr, err := sessionAddress(status)
	if err != nil {
		return nil, invalidAddress(err)
	}

	email := status.CustomerEmail
	if email == "" {
		email = status.Metadata[gateway.MetaEmail]
	}
	if email == "" {
		email = caller.Email
	}

	lines := cart.Lines()
	for _, l := range lines {
		if err := validator.Validate(l); err != nil {
			return nil, invalidProduct(l.ProductID, l.VariantID, "the cart holds an item that is not a valid product")
		}
	}

	return s.createOrder(ctx, r, caller, orderInput{
		lines:            lines,
		paid:             status,
		address:          addr,
		discountCode:     status.Metadata[gateway.MetaDiscountCode],
		shippingMethodID: status.Metadata[gateway.MetaShippingMethodID],
		meta: OrderMeta{
			Caller:         caller,
			Email:          email,
			Status:         domain.OrderStatusConfirmed,
			PaymentMethod:  domain.PaymentMethodCard,
			PaymentStatus:  domain.PaymentStatusPaid,
			CorrelationKey: status.ID,
		},
	})
}

// alreadySettled looks up the order carrying the session id. An order owned
// by someone else is reported as not found.
func (s *SettlementService) alreadySettled(ctx context.Context, r *run, caller domain.Caller, sessionID string) (*domain.SettlementResult, bool, error) {
	o, err := s.Orders.GetByCorrelationKey(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: lookup correlation key: %w", ErrPersistence, err)
	}
	if o.Owner() != caller.Identity {
		return nil, false, apperrors.NotFound("payment session", sessionID)
	}

	r.to(domain.StateAlreadySettled)
	return &domain.SettlementResult{
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		State:          domain.StateAlreadySettled,
		AlreadySettled: true,
		Totals:         orderTotals(o),
	}, true, nil
}

type orderInput struct {
	lines []domain.CartLine
	// paid is the gateway session the order is charged to, nil on the
	// direct path.
	paid             *gateway.SessionStatus
	address          domain.Address
	discountCode     string
	shippingMethodID string
	meta             OrderMeta
}

// createOrder prices, quotes the discount, builds and persists the order.
// The discount use is consumed inside the order transaction.
func (s *SettlementService) createOrder(ctx context.Context, r *run, caller domain.Caller, in orderInput) (*domain.Order, error) {
	priced, err := s.Pricing.Validate(ctx, in.lines, in.address)
	if err != nil {
		return nil, err
	}
	r.to(domain.StatePricingOK)

	red, err := s.Discounts.Quote(ctx, in.discountCode, priced.Subtotal)
	if err != nil {
		return nil, err
	}
	r.to(domain.StateDiscountResolved)

	o, err := s.Factory.Build(ctx, priced, red, in.shippingMethodID, in.address, in.meta)
	if err != nil {
		return nil, err
	}
	if in.paid != nil {
		if err := coversOrder(in.paid, o); err != nil {
			r.log.WarnContext(ctx, "paid session does not cover the order",
				slog.String("session_id", in.paid.ID),
				slog.Int64("paid_amount", in.paid.AmountTotal),
				slog.String("paid_currency", in.paid.Currency),
				slog.Int64("total_amount", o.TotalAmount),
			)
			return nil, err
		}
	}

	if err := s.Orders.CreateSettled(ctx, o, red, o.CreatedAt); err != nil {
		switch {
		case errors.Is(err, repository.ErrDiscountExhausted):
			return nil, discountRejected(red.Code, "discount code usage limit reached")
		case errors.Is(err, repository.ErrDuplicateCorrelationKey):
			return nil, err
		}
		return nil, fmt.Errorf("%w: create order: %w", ErrPersistence, err)
	}
	r.to(domain.StateOrderCreated)

	r.log.InfoContext(ctx, "order created",
		slog.String("order_id", o.ID),
		slog.String("order_number", o.OrderNumber),
		slog.Int64("total_amount", o.TotalAmount),
		slog.Bool("guest", caller.Guest),
	)
	return o, nil
}

// complete runs the follow-ups of a persisted order. None of them can fail
// the settlement.
func (s *SettlementService) complete(ctx context.Context, r *run, caller domain.Caller, o *domain.Order) *domain.SettlementResult {
	results := s.Inventory.Decrement(ctx, o)
	if Adjusted(results) {
		r.to(domain.StateInventoryAdjusted)
	}

	if err := s.Carts.Clear(ctx, caller.Identity); err != nil {
		r.log.WarnContext(ctx, "failed to clear cart", slog.String("error", err.Error()))
	}

	s.notify(ctx, r, caller, o)
	r.to(domain.StateSettled)

	return &domain.SettlementResult{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		State:       domain.StateSettled,
		Totals:      orderTotals(o),
		Inventory:   results,
	}
}

// notify sends the order notification in the background, detached from the
// request's cancellation. Failures are logged only.
func (s *SettlementService) notify(ctx context.Context, r *run, caller domain.Caller, o *domain.Order) {
	if s.Notifier == nil {
		return
	}

	n := notification.Notification{
		Kind:          notification.KindOrderSettled,
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		Recipient:     o.Email,
		Identity:      caller.Identity,
		TotalAmount:   o.TotalAmount,
		Currency:      o.Currency,
		PaymentMethod: o.PaymentMethod,
		CorrelationID: caller.CorrelationID,
	}
	if n.Recipient == "" {
		n.Recipient = o.ID
	}

	detached := context.WithoutCancel(ctx)
	s.notifications.Add(1)
	go func() {
		defer s.notifications.Done()

		nctx, cancel := context.WithTimeout(detached, s.notifyTimeout())
		defer cancel()

		err := s.Notifier.Send(nctx, n)
		s.Metrics.Notification(err == nil)
		if err != nil {
			r.log.WarnContext(nctx, "order notification failed",
				slog.String("order_id", o.ID),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// WaitForNotifications blocks until in-flight notifications finish or ctx
// is done.
func (s *SettlementService) WaitForNotifications(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.notifications.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetOrder returns an order owned by the caller.
func (s *SettlementService) GetOrder(ctx context.Context, caller domain.Caller, orderID string) (*domain.Order, error) {
	o, err := s.Orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("order", orderID)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if caller.Identity == "" || o.Owner() != caller.Identity {
		return nil, apperrors.NotFound("order", orderID)
	}
	return o, nil
}

// GetOrderBySession returns the order settled for a payment session, for
// the page the gateway redirects back to.
func (s *SettlementService) GetOrderBySession(ctx context.Context, caller domain.Caller, sessionID string) (*domain.Order, error) {
	o, err := s.Orders.GetByCorrelationKey(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("order for payment session", sessionID)
		}
		return nil, fmt.Errorf("get order by session: %w", err)
	}
	if caller.Identity == "" || o.Owner() != caller.Identity {
		return nil, apperrors.NotFound("order for payment session", sessionID)
	}
	return o, nil
}

func (s *SettlementService) gatewayContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.GatewayTimeout > 0 {
		return context.WithTimeout(ctx, s.cfg.GatewayTimeout)
	}
	return context.WithCancel(ctx)
}

func (s *SettlementService) notifyTimeout() time.Duration {
	if s.cfg.NotifyTimeout > 0 {
		return s.cfg.NotifyTimeout
	}
	return 5 * time.Second
}

// sessionParams builds the hosted payment page. Line items show catalog
// prices; when a discount applies, the order is charged as one line because
// gateways reject negative amounts.
func (s *SettlementService) sessionParams(
	caller domain.Caller,
	req *GatewaySessionRequest,
	email string,
	priced *PricedCart,
	red *domain.Redemption,
	quote domain.ShippingQuote,
	totals domain.Totals,
) (gateway.SessionParams, error) {
	kind := "user"
	if caller.Guest {
		kind = "guest"
	}
	meta := gateway.AddressMetadata(req.ShippingAddress)
	meta[gateway.MetaIdentity] = caller.Identity
	meta[gateway.MetaIdentityKind] = kind
	if email != "" {
		meta[gateway.MetaEmail] = email
	}
	if red != nil {
		meta[gateway.MetaDiscountCode] = red.Code
	}
	if quote.MethodID != "" {
		meta[gateway.MetaShippingMethodID] = quote.MethodID
	}
	if err := gateway.CheckMetadata(meta); err != nil {
		return gateway.SessionParams{}, apperrors.InvalidInput(err.Error())
	}

	var items []gateway.LineItem
	if red != nil && red.Amount > 0 {
		items = []gateway.LineItem{{Name: fmt.Sprintf("Order (%d items)", len(priced.Lines)), UnitAmount: totals.TotalAmount, Quantity: 1}}
	} else {
		for _, l := range priced.Lines {
			items = append(items, gateway.LineItem{Name: l.ProductName, UnitAmount: l.UnitPrice, Quantity: int64(l.Quantity)})
		}
		if totals.ShippingCost > 0 {
			items = append(items, gateway.LineItem{Name: "Shipping: " + quote.Name, UnitAmount: totals.ShippingCost, Quantity: 1})
		}
		if totals.TaxAmount > 0 {
			items = append(items, gateway.LineItem{Name: "Tax", UnitAmount: totals.TaxAmount, Quantity: 1})
		}
	}

	successURL, cancelURL := req.SuccessURL, req.CancelURL
	if successURL == "" {
		successURL = s.cfg.SuccessURL
	}
	if cancelURL == "" {
		cancelURL = s.cfg.CancelURL
	}

	return gateway.SessionParams{
		LineItems:      items,
		Currency:       totals.Currency,
		SuccessURL:     successURL,
		CancelURL:      cancelURL,
		CustomerEmail:  email,
		ReferenceID:    caller.Identity,
		IdempotencyKey: caller.CorrelationID,
		Metadata:       meta,
	}, nil
}

// sessionAddress prefers the address the shopper entered on the payment
// page over the one recorded when the session was created.
func sessionAddress(status *gateway.SessionStatus) (domain.Address, error) {
	if status.ShippingAddress != nil {
		return *status.ShippingAddress, nil
	}
	addr, ok := gateway.AddressFromMetadata(status.Metadata)
	if !ok {
		return addr, errors.New("payment session carries no shipping address")
	}
	return addr, nil
}

// coversOrder rejects an order the paid session does not pay for in full.
// The cart can change between session creation and confirmation, so the
// recomputed order is checked against what the gateway collected.
func coversOrder(paid *gateway.SessionStatus, o *domain.Order) error {
	if paid.Currency != "" && !strings.EqualFold(paid.Currency, o.Currency) {
		return amountMismatch(paid.AmountTotal, paid.Currency, o.TotalAmount, o.Currency)
	}
	if paid.AmountTotal < o.TotalAmount {
		return amountMismatch(paid.AmountTotal, paid.Currency, o.TotalAmount, o.Currency)
	}
	return nil
}

func orderTotals(o *domain.Order) domain.Totals {
	return domain.Totals{
		Subtotal:       o.Subtotal,
		DiscountAmount: o.DiscountAmount,
		ShippingCost:   o.ShippingCost,
		TaxAmount:      o.TaxAmount,
		TotalAmount:    o.TotalAmount,
		Currency:       o.Currency,
	}
}
