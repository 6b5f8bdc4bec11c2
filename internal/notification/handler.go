package notification

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/boostify/storefront/internal/auth"
	"github.com/boostify/storefront/internal/transport"
	"github.com/boostify/storefront/pkg/logger"
)

type ServiceAPI interface {
	GetUserNotifications(userID int64, limit, offset int) ([]*Notification, error)
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

// GetMyNotifications handles GET /notifications/my.
func (h *Handler) GetMyNotifications(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

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

	notifications, err := h.Service.GetUserNotifications(user.ID, limit, offset)
	if err != nil {
		h.Logger.Error("GetMyNotifications: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
	})
}
