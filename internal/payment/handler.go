package payment

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/boostify/storefront/internal/auth"
	"github.com/boostify/storefront/internal/transport"
	"github.com/boostify/storefront/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service   *Service
	ResultURL string
}

func NewHandler(service *Service, resultURL string) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		ResultURL:   resultURL,
	}
}

// CreatePayment handles POST /payments/payoneer/create.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto CreatePaymentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.CreateIntent(r.Context(), user.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// Callback handles GET /payments/payoneer/callback. The gateway calls it with
// txId, refId and status query parameters; the customer's browser may follow
// the same URL, so a handled callback redirects to the result page.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	transactionID := q.Get("txId")
	gatewayRef := q.Get("refId")
	status := q.Get("status")

	if transactionID == "" {
		h.WriteError(w, http.StatusBadRequest, "txId is required")
		return
	}

	if err := h.Service.HandleCallback(r.Context(), transactionID, gatewayRef, status); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if h.ResultURL != "" {
		http.Redirect(w, r, h.ResultURL, http.StatusFound)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "received"})
}
