package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/natovichat/rent-management-app-sub001/internal/owner/models"
	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
	dErrors "github.com/natovichat/rent-management-app-sub001/pkg/domain-errors"
	"github.com/natovichat/rent-management-app-sub001/pkg/platform/httputil"
	"github.com/natovichat/rent-management-app-sub001/pkg/requestcontext"
)

// Service is the owner operations surface the handler needs.
type Service interface {
	Create(ctx context.Context, accountID id.AccountID, req *models.CreateOwnerRequest) (*models.Owner, error)
	Get(ctx context.Context, accountID id.AccountID, ownerID id.OwnerID) (*models.Owner, error)
	List(ctx context.Context, accountID id.AccountID) ([]*models.Owner, error)
	Update(ctx context.Context, accountID id.AccountID, ownerID id.OwnerID, req *models.UpdateOwnerRequest) (*models.Owner, error)
	Delete(ctx context.Context, accountID id.AccountID, ownerID id.OwnerID) error
}

type Handler struct {
	owners Service
	logger *slog.Logger
}

func New(owners Service, logger *slog.Logger) *Handler {
	return &Handler{owners: owners, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/owners", h.handleCreate)
	r.Get("/owners", h.handleList)
	r.Get("/owners/{ownerID}", h.handleGet)
	r.Patch("/owners/{ownerID}", h.handleUpdate)
	r.Delete("/owners/{ownerID}", h.handleDelete)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.CreateOwnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	owner, err := h.owners.Create(ctx, requestcontext.AccountID(ctx), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, owner)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owners, err := h.owners.List(ctx, requestcontext.AccountID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if owners == nil {
		owners = []*models.Owner{}
	}
	httputil.WriteJSON(w, http.StatusOK, owners)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID, err := id.ParseOwnerID(chi.URLParam(r, "ownerID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid owner id"))
		return
	}

	owner, err := h.owners.Get(ctx, requestcontext.AccountID(ctx), ownerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, owner)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID, err := id.ParseOwnerID(chi.URLParam(r, "ownerID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid owner id"))
		return
	}

	var req models.UpdateOwnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	owner, err := h.owners.Update(ctx, requestcontext.AccountID(ctx), ownerID, &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, owner)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID, err := id.ParseOwnerID(chi.URLParam(r, "ownerID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid owner id"))
		return
	}

	if err := h.owners.Delete(ctx, requestcontext.AccountID(ctx), ownerID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
