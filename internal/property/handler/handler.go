package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/natovichat/rent-management-app-sub001/internal/property/models"
	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
	dErrors "github.com/natovichat/rent-management-app-sub001/pkg/domain-errors"
	"github.com/natovichat/rent-management-app-sub001/pkg/platform/httputil"
	"github.com/natovichat/rent-management-app-sub001/pkg/requestcontext"
)

// Service is the property operations surface the handler needs.
type Service interface {
	Create(ctx context.Context, accountID id.AccountID, req *models.CreatePropertyRequest) (*models.Property, error)
	Get(ctx context.Context, accountID id.AccountID, propertyID id.PropertyID) (*models.Property, error)
	List(ctx context.Context, accountID id.AccountID) ([]*models.Property, error)
	Update(ctx context.Context, accountID id.AccountID, propertyID id.PropertyID, req *models.UpdatePropertyRequest) (*models.Property, error)
	Delete(ctx context.Context, accountID id.AccountID, propertyID id.PropertyID) error
}

type Handler struct {
	properties Service
	logger     *slog.Logger
}

func New(properties Service, logger *slog.Logger) *Handler {
	return &Handler{properties: properties, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/properties", h.handleCreate)
	r.Get("/properties", h.handleList)
	r.Get("/properties/{propertyID}", h.handleGet)
	r.Patch("/properties/{propertyID}", h.handleUpdate)
	r.Delete("/properties/{propertyID}", h.handleDelete)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.CreatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	property, err := h.properties.Create(ctx, requestcontext.AccountID(ctx), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, property)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	properties, err := h.properties.List(ctx, requestcontext.AccountID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if properties == nil {
		properties = []*models.Property{}
	}
	httputil.WriteJSON(w, http.StatusOK, properties)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	propertyID, err := id.ParsePropertyID(chi.URLParam(r, "propertyID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid property id"))
		return
	}

	property, err := h.properties.Get(ctx, requestcontext.AccountID(ctx), propertyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, property)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	propertyID, err := id.ParsePropertyID(chi.URLParam(r, "propertyID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid property id"))
		return
	}

	var req models.UpdatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	property, err := h.properties.Update(ctx, requestcontext.AccountID(ctx), propertyID, &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, property)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	propertyID, err := id.ParsePropertyID(chi.URLParam(r, "propertyID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid property id"))
		return
	}

	if err := h.properties.Delete(ctx, requestcontext.AccountID(ctx), propertyID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
