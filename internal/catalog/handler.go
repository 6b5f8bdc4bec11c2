package catalog

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	errors "github.com/boostify/storefront/internal"
	"github.com/boostify/storefront/internal/transport"
	"github.com/boostify/storefront/internal/upload"
	"github.com/boostify/storefront/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListActive(displayCurrency string) ([]ServiceResponse, error)
	GetByID(id int64) (*Service, error)
	ListAll() ([]*Service, error)
	CreateService(dto CreateServiceDTO) (*Service, error)
	UpdateService(id int64, dto UpdateServiceDTO) (*Service, error)
	DeleteService(id int64) error
	SetImage(id int64, imageURL string) (*Service, error)
	SetAsset(id int64, assetPath string) (*Service, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Uploads *upload.Store
	BaseURL string
}

func NewHandler(service ServiceAPI, uploads *upload.Store, baseURL string) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		Uploads:     uploads,
		BaseURL:     baseURL,
	}
}

// ListServices handles GET /services; ?currency= converts display prices.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	currency := r.URL.Query().Get("currency")

	services, err := h.Service.ListActive(currency)
	if err != nil {
		h.Logger.Error("ListServices: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"services": services,
	})
}

func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	id, err := h.parseID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid service ID")
		return
	}

	svc, err := h.Service.GetByID(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if !svc.IsPurchasable() {
		h.HandleError(w, errors.ErrServiceNotFound)
		return
	}

	h.WriteJSON(w, http.StatusOK, svc.ToResponse())
}

// ListAllServices handles GET /admin/services including inactive entries.
func (h *Handler) ListAllServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.Service.ListAll()
	if err != nil {
		h.Logger.Error("ListAllServices: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"services": services,
	})
}

func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var dto CreateServiceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	svc, err := h.Service.CreateService(dto)
	if err != nil {
		h.Logger.Error("CreateService: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, svc)
}

func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, err := h.parseID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid service ID")
		return
	}

	var dto UpdateServiceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	svc, err := h.Service.UpdateService(id, dto)
	if err != nil {
		h.Logger.Error("UpdateService: service error", "error", err, "service_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, svc)
}

func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, err := h.parseID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid service ID")
		return
	}

	if err := h.Service.DeleteService(id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadImage handles POST /admin/services/{id}/image (multipart, field "file").
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, upload.KindImage)
}

// UploadAsset handles POST /admin/services/{id}/asset (multipart, field "file").
func (h *Handler) UploadAsset(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, upload.KindAsset)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request, kind upload.Kind) {
	id, err := h.parseID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid service ID")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	stored, err := h.Uploads.Save(kind, header.Size, file)
	if err != nil {
		h.Logger.Warn("upload rejected", "error", err, "service_id", id, "kind", kind)
		h.HandleServiceError(w, err)
		return
	}

	var svc *Service
	switch kind {
	case upload.KindImage:
		svc, err = h.Service.SetImage(id, h.BaseURL+"/uploads/image/"+stored.Name)
	case upload.KindAsset:
		svc, err = h.Service.SetAsset(id, stored.Path)
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, svc)
}

func (h *Handler) parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
