package rates

import (
	"net/http"

	"github.com/boostify/storefront/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	cache *Cache
}

func NewHandler(base *transport.BaseHandler, cache *Cache) *Handler {
	return &Handler{BaseHandler: base, cache: cache}
}

// GetRates handles GET /rates.
func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	snapshot, fetchedAt := h.cache.Snapshot()

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"base":       "USD",
		"rates":      snapshot,
		"fetched_at": fetchedAt,
	})
}
