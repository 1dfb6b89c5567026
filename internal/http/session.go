package http

import (
	"errors"
	"net/http"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/session"
)

// sessionHandler receives the caller's session explicitly.
type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session.Session)

// identityHandler runs only for a signed-in session on the expected screen.
type identityHandler func(w http.ResponseWriter, r *http.Request, sess *session.Session, id core.Identity)

// withSession resolves the session cookie, starting a new session when the
// cookie is missing or refers to a session the store no longer holds.
func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sess *session.Session
		if c, err := r.Cookie(s.opts.CookieName); err == nil {
			sess, _ = s.deps.Sessions.Get(c.Value)
		}
		if sess == nil {
			sess = s.deps.Sessions.Create()
			s.setSessionCookie(w, sess)
			applog.FromContext(r.Context()).DebugContext(r.Context(), "Session started",
				applog.FieldSessionID, sess.ID)
		}
		next(w, r, sess)
	}
}

func (s *Server) setSessionCookie(w http.ResponseWriter, sess *session.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// rotateSession reissues the session under a new id after sign-in, so an id
// planted before authentication never carries the signed-in state.
func (s *Server) rotateSession(w http.ResponseWriter, sess *session.Session) {
	s.setSessionCookie(w, s.deps.Sessions.Rotate(sess))
}

// onScreen guards handlers that need an authenticated session on screen.
func (s *Server) onScreen(screen session.Screen, next identityHandler) http.HandlerFunc {
	return s.withSession(func(w http.ResponseWriter, r *http.Request, sess *session.Session) {
		id, err := sess.Require(screen)
		if err != nil {
			s.writeErr(w, r, err)
			return
		}
		next(w, r, sess, id)
	})
}

// statusFor maps domain and session errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case core.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrInvalidCredentials), errors.Is(err, session.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrInvalidTransition):
		return http.StatusForbidden
	case errors.Is(err, core.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func errorType(status int) string {
	switch status {
	case http.StatusUnprocessableEntity:
		return applog.ErrorTypeValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return applog.ErrorTypeAuth
	case http.StatusConflict:
		return applog.ErrorTypeConflict
	case http.StatusNotFound:
		return applog.ErrorTypeNotFound
	case http.StatusServiceUnavailable:
		return applog.ErrorTypeUnavailable
	}
	return applog.ErrorTypeInternal
}

// writeErr logs err and writes a JSON error. Server-side failures get a
// generic message so storage details never reach the client.
func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logger := applog.FromContext(r.Context())
	fields := applog.NewFields().WithError(err, errorType(status)).WithHTTPRequest(r.Method, r.URL.Path, "", "")

	msg := err.Error()
	switch {
	case status >= 500:
		logger.ErrorContext(r.Context(), "Request failed", fields.ToSlice()...)
		msg = http.StatusText(status)
	case status == http.StatusUnauthorized && errors.Is(err, core.ErrInvalidCredentials):
		logger.InfoContext(r.Context(), "Authentication rejected", fields.ToSlice()...)
		msg = "invalid username or password"
	default:
		logger.DebugContext(r.Context(), "Request rejected", fields.ToSlice()...)
	}
	writeError(w, status, msg)
}
