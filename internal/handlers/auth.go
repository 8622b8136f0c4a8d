package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"

	"github.com/threadline/storefront/internal/backend"
	"github.com/threadline/storefront/internal/notify"
	"github.com/threadline/storefront/internal/platform/httpx"
)

// AuthHandlers proxies authentication to the backend and keeps the session's
// auth snapshot in step.
type AuthHandlers struct {
	client *backend.Client
}

// NewAuthHandlers constructs the auth handlers.
func NewAuthHandlers(client *backend.Client) (*AuthHandlers, error) {
	if client == nil {
		return nil, errors.New("auth handlers: backend client is required")
	}
	return &AuthHandlers{client: client}, nil
}

// Register mounts the auth routes.
func (h *AuthHandlers) Register(r chi.Router) {
	r.Get("/session", h.Session)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Post("/signup", h.Signup)
	r.Post("/signup/verify", h.Verify)
}

// Session reports the session's auth snapshot, revalidating against the
// backend when the session believes it is logged in.
func (h *AuthHandlers) Session(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	authenticated := false
	sess.Do(func() { authenticated = sess.State.IsAuthenticated() })
	if !authenticated {
		httpx.WriteError(r.Context(), w,
			httpx.NewError("unauthorized", "not logged in", http.StatusUnauthorized).
				WithRedirect("/login"))
		return
	}

	user, err := clientFor(h.client, sess).CheckAuth(r.Context())
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			sess.Do(func() { sess.State.ClearAuth() })
		}
		writeBackendError(r.Context(), w, err, r.URL.Path)
		return
	}

	// Refresh the stored user with the backend's copy.
	sess.Do(func() { sess.State.SetAuthenticated(user, sess.State.Token()) })
	writeJSONResponse(w, http.StatusOK, map[string]any{"isAuthenticated": true, "user": user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials with the backend and stores the session token.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(r.Context(), w)
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeToastError(r.Context(), w, "missing_credentials", "email and password are required")
		return
	}

	result, err := clientFor(h.client, sess).Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeBackendError(r.Context(), w, err, "")
		return
	}
	sess.Do(func() { sess.State.SetAuthenticated(result.User, result.Token) })

	payload := map[string]any{
		"isAuthenticated": true,
		"user":            result.User,
		"toast":           notify.OK("welcome back"),
	}
	if expiry, ok := tokenExpiry(result.Token); ok {
		payload["sessionExpiresAt"] = expiry.UTC().Format(time.RFC3339)
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

// tokenExpiry reads the expiry claim off the backend token. The token is not
// verified here; the backend is the verifier, the storefront only surfaces
// the expiry to the UI.
func tokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Logout invalidates the backend session and clears the local auth state.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	client := clientFor(h.client, sess)
	sess.Do(func() {
		sess.State.ClearAuth()
		sess.State.Cart().Replace(nil)
		sess.ClearCustomization()
	})
	// A failed backend logout still clears the local session.
	_ = client.Logout(r.Context())

	writeJSONResponse(w, http.StatusOK, map[string]any{
		"isAuthenticated": false,
		"toast":           notify.OK("logged out"),
	})
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup registers a new customer account.
func (h *AuthHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(r.Context(), w)
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeToastError(r.Context(), w, "missing_fields", "name, email, and password are required")
		return
	}

	if err := clientFor(h.client, sess).Signup(r.Context(), req.Name, req.Email, req.Password); err != nil {
		writeBackendError(r.Context(), w, err, "")
		return
	}
	writeJSONResponse(w, http.StatusAccepted, map[string]any{
		"toast": notify.OK("check your email for a verification code"),
	})
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// Verify confirms the emailed signup code.
func (h *AuthHandlers) Verify(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidBody(r.Context(), w)
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Code) == "" {
		writeToastError(r.Context(), w, "missing_fields", "email and code are required")
		return
	}

	if err := clientFor(h.client, sess).VerifySignup(r.Context(), req.Email, req.Code); err != nil {
		writeBackendError(r.Context(), w, err, "")
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"toast": notify.OK("account verified, you can log in now"),
	})
}
