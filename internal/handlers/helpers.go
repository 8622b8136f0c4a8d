package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/threadline/storefront/internal/backend"
	"github.com/threadline/storefront/internal/notify"
	"github.com/threadline/storefront/internal/platform/httpx"
	"github.com/threadline/storefront/internal/platform/requestctx"
	"github.com/threadline/storefront/internal/session"
)

const maxJSONBodySize = 1 << 20

var errBodyTooLarge = errors.New("handlers: request body too large")

func writeJSONResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func readLimitedBody(r *http.Request, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = maxJSONBodySize
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, errBodyTooLarge
	}
	return body, nil
}

func decodeJSON(r *http.Request, out any) error {
	body, err := readLimitedBody(r, maxJSONBodySize)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeInvalidBody(ctx context.Context, w http.ResponseWriter) {
	httpx.WriteError(ctx, w, httpx.NewError("invalid_body", "request body could not be parsed", http.StatusBadRequest))
}

// writeToastError writes a refused-input envelope. These never reach the
// backend; the toast is what the UI renders.
func writeToastError(ctx context.Context, w http.ResponseWriter, code, message string) {
	httpx.WriteError(ctx, w,
		httpx.NewError(code, message, http.StatusUnprocessableEntity).
			WithDetails(map[string]any{"toast": notify.Warning(message)}))
}

// writeBackendError maps a backend client error to the response envelope. A
// 401 carries the login redirect with a resume pointer so the interrupted
// flow can continue after authentication.
func writeBackendError(ctx context.Context, w http.ResponseWriter, err error, resume string) {
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		e := httpx.NewError("unauthorized", "please log in to continue", http.StatusUnauthorized).
			WithRedirect("/login")
		if resume != "" {
			e = e.WithDetails(map[string]any{"resume": resume})
		}
		httpx.WriteError(ctx, w, e)
	case errors.Is(err, backend.ErrNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("not_found", "the requested record does not exist", http.StatusNotFound))
	default:
		var statusErr *backend.StatusError
		message := "the backend request failed"
		if errors.As(err, &statusErr) && statusErr.Message != "" {
			message = statusErr.Message
		}
		httpx.WriteError(ctx, w,
			httpx.NewError("backend_error", message, http.StatusBadGateway).
				WithDetails(map[string]any{"toast": notify.Error(message)}))
	}
}

// sessionFrom pulls the middleware-installed session, failing the request
// when the middleware is not mounted.
func sessionFrom(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		httpx.WriteError(r.Context(), w, httpx.NewError("no_session", "session middleware not configured", http.StatusInternalServerError))
		return nil, false
	}
	return sess, true
}

// SessionMiddleware resolves the visitor's session from the cookie, creating
// one when absent or expired, and installs it on the request context.
func SessionMiddleware(store *session.Store, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess *session.Session
			if cookie, err := r.Cookie(cookieName); err == nil {
				sess, _ = store.Get(cookie.Value)
			}
			if sess == nil {
				sess = store.Create()
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    sess.ID(),
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := session.NewContext(r.Context(), sess)
			ctx = requestctx.WithSessionID(ctx, sess.ID())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sectionLabel(number int) string {
	return fmt.Sprintf("section %d", number)
}
