package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/behancebrothers-ops/jjfg-sub000/internal/domain"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/service"
	"github.com/behancebrothers-ops/jjfg-sub000/pkg/httputil"
	"github.com/behancebrothers-ops/jjfg-sub000/pkg/logger"
)

// EmailHeader optionally carries the authenticated shopper's email.
const EmailHeader = "X-User-Email"

// maxBodyBytes limits request bodies to 1MB.
const maxBodyBytes = 1 << 20

// Settler is the settlement API the handlers call.
type Settler interface {
	SettleDirect(ctx context.Context, caller domain.Caller, req *service.DirectSettlementRequest) (*domain.SettlementResult, error)
	BeginGatewaySettlement(ctx context.Context, caller domain.Caller, req *service.GatewaySessionRequest) (*domain.GatewaySession, error)
	ConfirmGatewaySettlement(ctx context.Context, caller domain.Caller, req *service.ConfirmSettlementRequest) (*domain.SettlementResult, error)
	GetOrder(ctx context.Context, caller domain.Caller, orderID string) (*domain.Order, error)
	GetOrderBySession(ctx context.Context, caller domain.Caller, sessionID string) (*domain.Order, error)
}

// SettlementHandler handles HTTP requests for settlement and order endpoints.
type SettlementHandler struct {
	settler Settler
	logger  *slog.Logger
}

// NewSettlementHandler creates a new settlement HTTP handler.
func NewSettlementHandler(settler Settler, logger *slog.Logger) *SettlementHandler {
	return &SettlementHandler{settler: settler, logger: logger}
}

// callerFrom builds the caller from the identity and correlation id the
// middleware stored on the request context.
func callerFrom(r *http.Request) domain.Caller {
	id, kind := logger.IdentityFromContext(r.Context())
	return domain.Caller{
		Identity:      id,
		Guest:         kind == logger.IdentityGuest,
		Email:         strings.TrimSpace(r.Header.Get(EmailHeader)),
		CorrelationID: logger.CorrelationIDFromContext(r.Context()),
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httputil.WriteBadRequest(w, r, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// SettleDirect handles POST /api/v1/settlements/direct
func (h *SettlementHandler) SettleDirect(w http.ResponseWriter, r *http.Request) {
	var req service.DirectSettlementRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.settler.SettleDirect(r.Context(), callerFrom(r), &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: res})
}

// BeginGatewaySettlement handles POST /api/v1/settlements/gateway/sessions
func (h *SettlementHandler) BeginGatewaySettlement(w http.ResponseWriter, r *http.Request) {
	var req service.GatewaySessionRequest
	if !decode(w, r, &req) {
		return
	}

	session, err := h.settler.BeginGatewaySettlement(r.Context(), callerFrom(r), &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: session})
}

// ConfirmGatewaySettlement handles POST /api/v1/settlements/gateway/confirm
func (h *SettlementHandler) ConfirmGatewaySettlement(w http.ResponseWriter, r *http.Request) {
	var req service.ConfirmSettlementRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.settler.ConfirmGatewaySettlement(r.Context(), callerFrom(r), &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	status := http.StatusCreated
	if res.AlreadySettled {
		status = http.StatusOK
	}
	httputil.WriteJSON(w, status, httputil.Response{Data: res})
}

// GetOrderBySession handles GET /api/v1/settlements/gateway/sessions/{sessionId}/order
func (h *SettlementHandler) GetOrderBySession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")

	order, err := h.settler.GetOrderBySession(r.Context(), callerFrom(r), sessionID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// GetOrder handles GET /api/v1/orders/{id}
func (h *SettlementHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	order, err := h.settler.GetOrder(r.Context(), callerFrom(r), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}
