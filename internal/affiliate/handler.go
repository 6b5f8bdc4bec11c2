package affiliate

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/boostify/storefront/internal/auth"
	"github.com/boostify/storefront/internal/transport"
	"github.com/boostify/storefront/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	GetOrCreateForUser(userID int64) (*Affiliate, error)
	ListPayoutRequests(limit, offset int) ([]*PayoutRequest, error)
	PayAffiliate(ctx context.Context, affiliateID int64) (*Affiliate, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// GetMyAffiliate handles GET /affiliates/my and creates the profile on first
// access.
func (h *Handler) GetMyAffiliate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	aff, err := h.Service.GetOrCreateForUser(user.ID)
	if err != nil {
		h.Logger.Error("GetMyAffiliate: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, aff)
}

// ListPayoutRequests handles GET /admin/payout-requests.
func (h *Handler) ListPayoutRequests(w http.ResponseWriter, r *http.Request) {
	limit := 20
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	requests, err := h.Service.ListPayoutRequests(limit, offset)
	if err != nil {
		h.Logger.Error("ListPayoutRequests: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"payout_requests": requests,
	})
}

// PayAffiliate handles POST /admin/payout-requests/{id}/pay.
func (h *Handler) PayAffiliate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid affiliate ID")
		return
	}

	aff, svcErr := h.Service.PayAffiliate(r.Context(), id)
	if svcErr != nil {
		h.HandleServiceError(w, svcErr)
		return
	}

	h.WriteJSON(w, http.StatusOK, aff)
}
