// Package handler exposes the admin account endpoints. These sit behind
// the admin token middleware, not behind account resolution; they are how
// accounts come to exist in the first place.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/natovichat/rent-management-app-sub001/internal/account/models"
	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
	dErrors "github.com/natovichat/rent-management-app-sub001/pkg/domain-errors"
	"github.com/natovichat/rent-management-app-sub001/pkg/platform/httputil"
)

// Service is the account management surface the handler needs.
type Service interface {
	Create(ctx context.Context, name string) (*models.Account, error)
	Get(ctx context.Context, accountID id.AccountID) (*models.Account, error)
	Deactivate(ctx context.Context, accountID id.AccountID) (*models.Account, error)
}

type Handler struct {
	accounts Service
	logger   *slog.Logger
}

func New(accounts Service, logger *slog.Logger) *Handler {
	return &Handler{accounts: accounts, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/accounts", h.handleCreate)
	r.Get("/admin/accounts/{accountID}", h.handleGet)
	r.Post("/admin/accounts/{accountID}/deactivate", h.handleDeactivate)
}

type createAccountRequest struct {
	Name string `json:"name"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	account, err := h.accounts.Create(ctx, req.Name)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, account)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, err := id.ParseAccountID(chi.URLParam(r, "accountID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid account id"))
		return
	}

	account, err := h.accounts.Get(ctx, accountID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, account)
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, err := id.ParseAccountID(chi.URLParam(r, "accountID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid account id"))
		return
	}

	account, err := h.accounts.Deactivate(ctx, accountID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, account)
}
