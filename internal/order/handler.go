package order

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/boostify/storefront/internal/auth"
	"github.com/boostify/storefront/internal/transport"
	"github.com/boostify/storefront/internal/upload"
	"github.com/boostify/storefront/pkg/logger"
	"github.com/go-chi/chi"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type ServiceAPI interface {
	Checkout(userID int64, dto CheckoutDTO) ([]*Order, error)
	GetOrderByID(id, userID int64, isAdmin bool) (*Order, error)
	GetUserOrders(userID int64, limit, offset int) ([]*Order, error)
	GetAllOrders(limit, offset int) ([]*Order, error)
	UpdateStatus(orderID int64, newStatus string) (*Order, error)
	GetDownload(orderID, userID int64) (string, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Uploads *upload.Store
}

func NewHandler(service ServiceAPI, uploads *upload.Store) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		Uploads:     uploads,
	}
}

// Checkout handles POST /orders/checkout.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto CheckoutDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	orders, err := h.Service.Checkout(user.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp := CheckoutResponse{Orders: make([]OrderResponse, 0, len(orders))}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, o.ToResponse())
	}

	h.WriteJSON(w, http.StatusCreated, resp)
}

// GetMyOrders handles GET /orders/my.
func (h *Handler) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	limit, offset := h.parsePagination(r)

	orders, err := h.Service.GetUserOrders(user.ID, limit, offset)
	if err != nil {
		h.Logger.Error("GetMyOrders: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, h.toResponseList(orders))
}

// GetOrder handles GET /orders/{id}. Admins with the manage-orders
// permission can read any order.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := h.parseID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	o, svcErr := h.Service.GetOrderByID(id, user.ID, user.HasPermission(auth.PermManageOrders))
	if svcErr != nil {
		h.HandleServiceError(w, svcErr)
		return
	}

	h.WriteJSON(w, http.StatusOK, o.ToResponse())
}

// ListAllOrders handles GET /admin/orders.
func (h *Handler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.parsePagination(r)

	orders, err := h.Service.GetAllOrders(limit, offset)
	if err != nil {
		h.Logger.Error("ListAllOrders: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, h.toResponseList(orders))
}

// UpdateStatus handles PATCH /admin/orders/{id}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := h.parseID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var dto UpdateStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if appErr := dto.Validate(); appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	o, svcErr := h.Service.UpdateStatus(id, dto.Status)
	if svcErr != nil {
		h.HandleServiceError(w, svcErr)
		return
	}

	h.WriteJSON(w, http.StatusOK, o.ToResponse())
}

// Download handles GET /orders/{id}/download and streams the purchased
// digital asset.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := h.parseID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	assetPath, svcErr := h.Service.GetDownload(id, user.ID)
	if svcErr != nil {
		h.HandleServiceError(w, svcErr)
		return
	}

	file, info, openErr := h.Uploads.Open(assetPath)
	if openErr != nil {
		h.Logger.Error("Download: asset missing on disk", "error", openErr, "order_id", id, "path", assetPath)
		h.WriteError(w, http.StatusInternalServerError, "asset unavailable")
		return
	}
	defer file.Close()

	w.Header().Set("Content-Disposition", "attachment; filename=\""+filepath.Base(assetPath)+"\"")
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeContent(w, r, info.Name(), info.ModTime(), file)
}

func (h *Handler) parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) parsePagination(r *http.Request) (limit, offset int) {
	limit = defaultPageLimit
	offset = 0

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= maxPageLimit {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return limit, offset
}

func (h *Handler) toResponseList(orders []*Order) map[string]interface{} {
	items := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		items = append(items, o.ToResponse())
	}
	return map[string]interface{}{"orders": items}
}
