package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/behancebrothers-ops/jjfg-sub000/internal/domain"
)

// Mock is an in-process gateway for development and tests. With autoPay set
// every session is reported paid as soon as it is created.
type Mock struct {
	mu       sync.Mutex
	autoPay  bool
	baseURL  string
	sessions map[string]*SessionStatus
	failWith error
}

// NewMock creates a mock gateway whose redirect URLs point at baseURL.
func NewMock(baseURL string, autoPay bool) *Mock {
	return &Mock{
		autoPay:  autoPay,
		baseURL:  baseURL,
		sessions: make(map[string]*SessionStatus),
	}
}

// Name returns the provider name.
func (m *Mock) Name() string {
	return "mock"
}

// CreateSession records a session and returns its redirect URL.
func (m *Mock) CreateSession(_ context.Context, p SessionParams) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWith != nil {
		return nil, m.failWith
	}
	if err := CheckMetadata(p.Metadata); err != nil {
		return nil, fmt.Errorf("invalid session: %w", err)
	}

	var total int64
	for _, item := range p.LineItems {
		total += item.UnitAmount * item.Quantity
	}
	status := StatusUnpaid
	if m.autoPay {
		status = StatusPaid
	}

	id := "cs_mock_" + uuid.New().String()
	meta := make(map[string]string, len(p.Metadata))
	for k, v := range p.Metadata {
		meta[k] = v
	}
	m.sessions[id] = &SessionStatus{
		ID:            id,
		PaymentStatus: status,
		AmountTotal:   total,
		Currency:      p.Currency,
		CustomerEmail: p.CustomerEmail,
		Metadata:      meta,
	}

	return &Session{
		ID:          id,
		RedirectURL: m.baseURL + "/pay/" + id,
		ExpiresAt:   time.Now().UTC().Add(24 * time.Hour),
	}, nil
}

// GetSession returns a copy of the recorded session.
func (m *Mock) GetSession(_ context.Context, id string) (*SessionStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWith != nil {
		return nil, m.failWith
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

// MarkPaid flips a session to paid, optionally attaching the shipping
// address the shopper entered on the payment page.
func (m *Mock) MarkPaid(id string, addr *domain.Address) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return false
	}
	s.PaymentStatus = StatusPaid
	if addr != nil {
		a := *addr
		s.ShippingAddress = &a
	}
	return true
}

// FailWith makes every following call return err. A nil err restores normal
// behaviour.
func (m *Mock) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}
