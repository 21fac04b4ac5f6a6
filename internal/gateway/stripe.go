package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"

	"github.com/behancebrothers-ops/jjfg-sub000/internal/domain"
)

type stripeSessionAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// StripeConfig configures the Stripe Checkout gateway.
type StripeConfig struct {
	APIKey    string
	AccountID string
	Backends  *stripe.Backends

	// Sessions replaces the Stripe client, for tests.
	Sessions stripeSessionAPI
}

// Stripe implements PaymentGateway with Stripe Checkout sessions.
type Stripe struct {
	sessions stripeSessionAPI
	account  string
	logger   *slog.Logger
	clock    func() time.Time
}

// NewStripe creates a Stripe gateway.
func NewStripe(cfg StripeConfig, logger *slog.Logger) (*Stripe, error) {
	sessions := cfg.Sessions
	if sessions == nil {
		apiKey := strings.TrimSpace(cfg.APIKey)
		if apiKey == "" {
			return nil, errors.New("stripe: api key is required")
		}
		sessions = client.New(apiKey, cfg.Backends).CheckoutSessions
	}

	return &Stripe{
		sessions: sessions,
		account:  strings.TrimSpace(cfg.AccountID),
		logger:   logger,
		clock:    time.Now,
	}, nil
}

// Name returns the provider name.
func (s *Stripe) Name() string {
	return "stripe"
}

// CreateSession creates a Checkout session in payment mode.
func (s *Stripe) CreateSession(ctx context.Context, p SessionParams) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
	}
	params.Context = ctx
	if p.IdempotencyKey != "" {
		params.SetIdempotencyKey(p.IdempotencyKey)
	}
	if s.account != "" {
		params.SetStripeAccount(s.account)
	}
	if p.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(p.CustomerEmail)
	}
	if p.ReferenceID != "" {
		params.ClientReferenceID = stripe.String(p.ReferenceID)
	}
	if len(p.Metadata) > 0 {
		params.Metadata = make(map[string]string, len(p.Metadata))
		for k, v := range p.Metadata {
			params.Metadata[k] = v
		}
	}

	currency := strings.ToLower(p.Currency)
	for _, item := range p.LineItems {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(item.Quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(item.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
		})
	}

	session, err := s.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create checkout session: %w", classifyStripeError(err))
	}

	s.logger.InfoContext(ctx, "stripe checkout session created",
		slog.String("session_id", session.ID),
		slog.Int64("amount_total", session.AmountTotal),
	)

	expiresAt := s.clock().UTC().Add(24 * time.Hour)
	if session.ExpiresAt != 0 {
		expiresAt = time.Unix(session.ExpiresAt, 0).UTC()
	}

	return &Session{ID: session.ID, RedirectURL: session.URL, ExpiresAt: expiresAt}, nil
}

// GetSession retrieves a Checkout session.
func (s *Stripe) GetSession(ctx context.Context, id string) (*SessionStatus, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	if s.account != "" {
		params.SetStripeAccount(s.account)
	}

	session, err := s.sessions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: get checkout session: %w", classifyStripeError(err))
	}

	status := &SessionStatus{
		ID:            session.ID,
		PaymentStatus: string(session.PaymentStatus),
		AmountTotal:   session.AmountTotal,
		Currency:      strings.ToUpper(string(session.Currency)),
		Metadata:      session.Metadata,
	}
	if session.CustomerDetails != nil {
		status.CustomerEmail = session.CustomerDetails.Email
	}
	if sd := session.ShippingDetails; sd != nil && sd.Address != nil {
		status.ShippingAddress = &domain.Address{
			FullName:   sd.Name,
			Line1:      sd.Address.Line1,
			Line2:      sd.Address.Line2,
			City:       sd.Address.City,
			State:      sd.Address.State,
			PostalCode: sd.Address.PostalCode,
			Country:    sd.Address.Country,
			Phone:      sd.Phone,
		}
	}
	return status, nil
}

// classifyStripeError maps missing sessions to ErrSessionNotFound and
// transport or server-side failures to ErrUnavailable.
func classifyStripeError(err error) error {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	switch {
	case se.Code == stripe.ErrorCodeResourceMissing || se.HTTPStatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	case se.HTTPStatusCode == http.StatusTooManyRequests || se.HTTPStatusCode >= 500 || se.HTTPStatusCode == 0:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
