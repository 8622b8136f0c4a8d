package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/threadline/storefront/internal/notify"
)

// SettingsHandlers expose the per-session backend URL override used when
// pointing the storefront at a staging commerce backend.
type SettingsHandlers struct {
	defaultBackendURL string
}

// NewSettingsHandlers constructs the settings handlers.
func NewSettingsHandlers(defaultBackendURL string) *SettingsHandlers {
	return &SettingsHandlers{defaultBackendURL: defaultBackendURL}
}

// Register mounts the settings routes.
func (h *SettingsHandlers) Register(r chi.Router) {
	r.Get("/backend", h.GetBackend)
	r.Put("/backend", h.SetBackend)
}

// GetBackend reports the backend URL the session is talking to.
func (h *SettingsHandlers) GetBackend(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	var override string
	sess.Do(func() { override = sess.BackendURL })

	effective := h.defaultBackendURL
	if override != "" {
		effective = override
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"backendUrl": effective,
		"overridden": override != "",
	})
}

type backendRequest struct {
	URL string `json:"url"`
}

// SetBackend stores or clears the session's backend override. An empty URL
// returns the session to the configured default.
func (h *SettingsHandlers) SetBackend(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	var req backendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(r.Context(), w)
		return
	}

	raw := strings.TrimSpace(req.URL)
	if raw != "" {
		parsed, err := url.Parse(raw)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			writeToastError(r.Context(), w, "invalid_backend_url", "the backend URL must be absolute http or https")
			return
		}
		raw = strings.TrimRight(parsed.String(), "/")
	}

	sess.Do(func() { sess.BackendURL = raw })

	if raw == "" {
		writeJSONResponse(w, http.StatusOK, map[string]any{
			"backendUrl": h.defaultBackendURL,
			"overridden": false,
			"toast":      notify.OK("backend reset to default"),
		})
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"backendUrl": raw,
		"overridden": true,
		"toast":      notify.OK("backend override saved"),
	})
}
