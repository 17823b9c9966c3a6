// Package admin exposes operational endpoints for the rate limiter:
// allowlist management and counter inspection. It is mounted behind a
// shared-token check, not the full user auth stack.
package admin

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"limitgate/internal/platform/httputil"
	"limitgate/internal/ratelimit/models"
	"limitgate/internal/ratelimit/ports"
	"limitgate/internal/ratelimit/service/requestlimit"
)

type Handler struct {
	allowlist ports.AllowlistStore
	limiter   *requestlimit.Service
	logger    *slog.Logger
	token     string
}

func NewHandler(allowlist ports.AllowlistStore, limiter *requestlimit.Service, logger *slog.Logger, token string) *Handler {
	return &Handler{
		allowlist: allowlist,
		limiter:   limiter,
		logger:    logger,
		token:     token,
	}
}

// Routes mounts the admin API on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.requireToken)

	r.Get("/allowlist", h.listAllowlist)
	r.Post("/allowlist", h.addAllowlistEntry)
	r.Delete("/allowlist/{type}/{identifier}", h.removeAllowlistEntry)

	r.Get("/counters/{category}/{kind}/{value}", h.peekCounter)
	r.Delete("/counters/{category}/{kind}/{value}", h.resetCounter)

	return r
}

func (h *Handler) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.token == "" {
			httputil.WriteError(w, http.StatusForbidden, "admin API disabled")
			return
		}
		got := r.Header.Get("X-Admin-Token")
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) != 1 {
			httputil.WriteError(w, http.StatusUnauthorized, "invalid admin token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) listAllowlist(w http.ResponseWriter, r *http.Request) {
	entries, err := h.allowlist.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list allowlist", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) addAllowlistEntry(w http.ResponseWriter, r *http.Request) {
	var req models.AddAllowlistEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry := &models.AllowlistEntry{
		ID:         uuid.NewString(),
		Type:       models.AllowlistEntryType(req.Type),
		Identifier: req.Identifier,
		Reason:     req.Reason,
		ExpiresAt:  req.ExpiresAt,
		CreatedAt:  time.Now(),
	}
	if err := h.allowlist.Add(r.Context(), entry); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to add allowlist entry", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.logger.InfoContext(r.Context(), "allowlist entry added",
		"identifier", entry.Identifier, "type", entry.Type.String(), "reason", entry.Reason)
	httputil.WriteJSON(w, http.StatusCreated, entry)
}

func (h *Handler) removeAllowlistEntry(w http.ResponseWriter, r *http.Request) {
	entryType := models.AllowlistEntryType(chi.URLParam(r, "type"))
	identifier := chi.URLParam(r, "identifier")
	if !entryType.IsValid() || identifier == "" {
		httputil.WriteError(w, http.StatusBadRequest, "invalid entry type or identifier")
		return
	}

	if err := h.allowlist.Remove(r.Context(), entryType, identifier); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to remove allowlist entry", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) peekCounter(w http.ResponseWriter, r *http.Request) {
	category, identity, ok := counterParams(r)
	if !ok {
		httputil.WriteError(w, http.StatusBadRequest, "invalid category or identity")
		return
	}

	count, ttl, err := h.limiter.Peek(r.Context(), identity, category)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to peek counter", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &models.CounterResponse{
		Key:       models.CounterKey(category, identity),
		Count:     count,
		TTLSecond: int64(ttl.Seconds()),
	})
}

func (h *Handler) resetCounter(w http.ResponseWriter, r *http.Request) {
	category, identity, ok := counterParams(r)
	if !ok {
		httputil.WriteError(w, http.StatusBadRequest, "invalid category or identity")
		return
	}

	if err := h.limiter.Reset(r.Context(), identity, category); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to reset counter", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func counterParams(r *http.Request) (models.Category, models.Identity, bool) {
	category := models.Category(chi.URLParam(r, "category"))
	kind := models.IdentityKind(chi.URLParam(r, "kind"))
	value := chi.URLParam(r, "value")

	if !category.IsValid() || value == "" {
		return "", models.Identity{}, false
	}
	if kind != models.IdentityUser && kind != models.IdentityIP {
		return "", models.Identity{}, false
	}
	return category, models.Identity{Kind: kind, Value: value}, true
}
