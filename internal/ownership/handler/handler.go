// Package handler exposes the ownership REST surface. Invariant rejections
// render as 422 with the current and would-be totals in the body so a
// client can show the caller exactly what the change would do.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/natovichat/rent-management-app-sub001/internal/ownership/ledger"
	"github.com/natovichat/rent-management-app-sub001/internal/ownership/models"
	"github.com/natovichat/rent-management-app-sub001/internal/ownership/service"
	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
	dErrors "github.com/natovichat/rent-management-app-sub001/pkg/domain-errors"
	"github.com/natovichat/rent-management-app-sub001/pkg/platform/httputil"
	"github.com/natovichat/rent-management-app-sub001/pkg/requestcontext"
)

// Service is the ownership operations surface the handler needs.
type Service interface {
	Create(ctx context.Context, accountID id.AccountID, propertyID id.PropertyID, req *models.CreateOwnershipRequest) (*models.Ownership, error)
	Update(ctx context.Context, accountID id.AccountID, recordID id.OwnershipID, req *models.UpdateOwnershipRequest) (*models.Ownership, error)
	Close(ctx context.Context, accountID id.AccountID, recordID id.OwnershipID, req *models.CloseOwnershipRequest) (*models.Ownership, error)
	Delete(ctx context.Context, accountID id.AccountID, recordID id.OwnershipID) error
	Get(ctx context.Context, accountID id.AccountID, recordID id.OwnershipID) (*models.Ownership, error)
	ListByProperty(ctx context.Context, accountID id.AccountID, propertyID id.PropertyID) ([]*models.Ownership, error)
	ActiveOwnerships(ctx context.Context, accountID id.AccountID, propertyID id.PropertyID, asOf time.Time) (*service.ActiveSummary, error)
}

type Handler struct {
	ownerships Service
	logger     *slog.Logger
}

func New(ownerships Service, logger *slog.Logger) *Handler {
	return &Handler{ownerships: ownerships, logger: logger}
}

// Register attaches the ownership routes. The caller wraps the router with
// the account resolution middleware; by the time a handler runs the account
// id is already verified and in context.
func (h *Handler) Register(r chi.Router) {
	r.Post("/properties/{propertyID}/ownerships", h.handleCreate)
	r.Get("/properties/{propertyID}/ownerships", h.handleList)
	r.Get("/ownerships/{ownershipID}", h.handleGet)
	r.Patch("/ownerships/{ownershipID}", h.handleUpdate)
	r.Post("/ownerships/{ownershipID}/close", h.handleClose)
	r.Delete("/ownerships/{ownershipID}", h.handleDelete)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := requestcontext.AccountID(ctx)

	propertyID, err := id.ParsePropertyID(chi.URLParam(r, "propertyID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid property id"))
		return
	}

	var req models.CreateOwnershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	record, err := h.ownerships.Create(ctx, accountID, propertyID, &req)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, record)
}

// handleList serves both the full history and, with ?active=true, the
// point-in-time view at ?as_of (default: the request time).
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := requestcontext.AccountID(ctx)

	propertyID, err := id.ParsePropertyID(chi.URLParam(r, "propertyID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid property id"))
		return
	}

	q := r.URL.Query()
	if q.Get("active") == "true" || q.Get("as_of") != "" {
		asOf := requestcontext.Now(ctx)
		if raw := q.Get("as_of"); raw != "" {
			asOf, err = models.ParseDate(raw)
			if err != nil {
				httputil.WriteError(w, err)
				return
			}
		}
		summary, err := h.ownerships.ActiveOwnerships(ctx, accountID, propertyID, asOf)
		if err != nil {
			h.writeError(ctx, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, summary)
		return
	}

	records, err := h.ownerships.ListByProperty(ctx, accountID, propertyID)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	if records == nil {
		records = []*models.Ownership{}
	}
	httputil.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recordID, err := id.ParseOwnershipID(chi.URLParam(r, "ownershipID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid ownership id"))
		return
	}

	record, err := h.ownerships.Get(ctx, requestcontext.AccountID(ctx), recordID)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recordID, err := id.ParseOwnershipID(chi.URLParam(r, "ownershipID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid ownership id"))
		return
	}

	var req models.UpdateOwnershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	record, err := h.ownerships.Update(ctx, requestcontext.AccountID(ctx), recordID, &req)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recordID, err := id.ParseOwnershipID(chi.URLParam(r, "ownershipID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid ownership id"))
		return
	}

	var req models.CloseOwnershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	record, err := h.ownerships.Close(ctx, requestcontext.AccountID(ctx), recordID, &req)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recordID, err := id.ParseOwnershipID(chi.URLParam(r, "ownershipID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid ownership id"))
		return
	}

	if err := h.ownerships.Delete(ctx, requestcontext.AccountID(ctx), recordID); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeError renders domain errors, attaching ledger totals to invariant
// rejections.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var rejection *ledger.Rejection
	if errors.As(err, &rejection) {
		extra := map[string]any{
			"as_of": rejection.AsOf.Format("2006-01-02"),
		}
		if rejection.NoActiveOwners {
			extra["no_active_owners"] = true
		} else {
			extra["current_total"] = rejection.CurrentTotal.StringFixed(2)
			extra["resulting_total"] = rejection.ResultingTotal.StringFixed(2)
		}
		httputil.WriteErrorExtra(w, err, extra)
		return
	}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "ownership request failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}
