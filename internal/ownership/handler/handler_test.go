package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natovichat/rent-management-app-sub001/internal/ownership/service"
	"github.com/natovichat/rent-management-app-sub001/internal/ownership/store"
	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
	"github.com/natovichat/rent-management-app-sub001/pkg/requestcontext"
)

type allowAll struct{}

func (allowAll) Exists(context.Context, id.AccountID, id.PropertyID) error { return nil }

type allowAllOwners struct{}

func (allowAllOwners) Exists(context.Context, id.AccountID, id.OwnerID) error { return nil }

func newTestRouter(accountID id.AccountID, now time.Time) http.Handler {
	svc := service.New(store.NewInMemory(), allowAll{}, allowAllOwners{})
	h := New(svc, slog.New(slog.DiscardHandler))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := requestcontext.WithAccountID(req.Context(), accountID)
			ctx = requestcontext.WithTime(ctx, now)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	h.Register(r)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateOwnership(t *testing.T) {
	accountID := id.AccountID(uuid.New())
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	propertyID := uuid.NewString()
	ownerID := uuid.NewString()

	t.Run("full stake accepted", func(t *testing.T) {
		router := newTestRouter(accountID, now)
		body := fmt.Sprintf(`{"owner_id":%q,"percentage":"100","type":"full","start_date":"2020-01-01"}`, ownerID)
		rec := doJSON(t, router, http.MethodPost, "/properties/"+propertyID+"/ownerships", body)

		require.Equal(t, http.StatusCreated, rec.Code)
		var created map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, ownerID, created["owner_id"])
		assert.NotEmpty(t, created["id"])
	})

	t.Run("incomplete total renders 422 with totals", func(t *testing.T) {
		router := newTestRouter(accountID, now)
		body := fmt.Sprintf(`{"owner_id":%q,"percentage":"60","type":"partial","start_date":"2020-01-01"}`, ownerID)
		rec := doJSON(t, router, http.MethodPost, "/properties/"+propertyID+"/ownerships", body)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "invariant_violation", resp["error"])
		assert.Equal(t, "0.00", resp["current_total"])
		assert.Equal(t, "60.00", resp["resulting_total"])
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		router := newTestRouter(accountID, now)
		rec := doJSON(t, router, http.MethodPost, "/properties/"+propertyID+"/ownerships", "{not json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid property id rejected", func(t *testing.T) {
		router := newTestRouter(accountID, now)
		rec := doJSON(t, router, http.MethodPost, "/properties/not-a-uuid/ownerships", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("out of range percentage rejected", func(t *testing.T) {
		router := newTestRouter(accountID, now)
		body := fmt.Sprintf(`{"owner_id":%q,"percentage":"0","type":"partial","start_date":"2020-01-01"}`, ownerID)
		rec := doJSON(t, router, http.MethodPost, "/properties/"+propertyID+"/ownerships", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListOwnerships(t *testing.T) {
	accountID := id.AccountID(uuid.New())
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	propertyID := uuid.NewString()

	seed := func(t *testing.T, router http.Handler) map[string]any {
		t.Helper()
		body := fmt.Sprintf(`{"owner_id":%q,"percentage":"100","type":"full","start_date":"2020-01-01"}`, uuid.NewString())
		rec := doJSON(t, router, http.MethodPost, "/properties/"+propertyID+"/ownerships", body)
		require.Equal(t, http.StatusCreated, rec.Code)
		var created map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		return created
	}

	t.Run("history listing", func(t *testing.T) {
		router := newTestRouter(accountID, now)
		seed(t, router)

		rec := doJSON(t, router, http.MethodGet, "/properties/"+propertyID+"/ownerships", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var records []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
		assert.Len(t, records, 1)
	})

	t.Run("empty history is an empty array", func(t *testing.T) {
		router := newTestRouter(accountID, now)
		rec := doJSON(t, router, http.MethodGet, "/properties/"+propertyID+"/ownerships", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("active view with as_of", func(t *testing.T) {
		router := newTestRouter(accountID, now)
		seed(t, router)

		rec := doJSON(t, router, http.MethodGet, "/properties/"+propertyID+"/ownerships?as_of=2026-01-01", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var summary map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
		assert.Equal(t, "100.00", summary["total"])

		// Before the stake started there is nothing active.
		rec = doJSON(t, router, http.MethodGet, "/properties/"+propertyID+"/ownerships?as_of=2019-01-01", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
		assert.Equal(t, "0.00", summary["total"])
	})

	t.Run("bad as_of rejected", func(t *testing.T) {
		router := newTestRouter(accountID, now)
		rec := doJSON(t, router, http.MethodGet, "/properties/"+propertyID+"/ownerships?as_of=junk", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCloseAndDeleteOwnership(t *testing.T) {
	accountID := id.AccountID(uuid.New())
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	propertyID := uuid.NewString()

	t.Run("closing the sole stake renders 422", func(t *testing.T) {
		router := newTestRouter(accountID, now)
		body := fmt.Sprintf(`{"owner_id":%q,"percentage":"100","type":"full","start_date":"2020-01-01"}`, uuid.NewString())
		rec := doJSON(t, router, http.MethodPost, "/properties/"+propertyID+"/ownerships", body)
		require.Equal(t, http.StatusCreated, rec.Code)
		var created map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

		rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/ownerships/%s/close", created["id"]), `{"end_date":"2026-01-01"}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["no_active_owners"])
	})

	t.Run("deleting unknown record renders 404", func(t *testing.T) {
		router := newTestRouter(accountID, now)
		rec := doJSON(t, router, http.MethodDelete, "/ownerships/"+uuid.NewString(), "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
