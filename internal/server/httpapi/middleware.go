package httpapi

import (
	"context"
	"net/http"

	"github.com/dkrylov/medvault/internal/server/auth"
)

type contextKey string

const phoneContextKey contextKey = "phone"

// SessionCookieName carries the session JWT issued after OTP verification.
const SessionCookieName = "mv_session"

// phoneFromContext returns the verified phone number placed by withSession.
func phoneFromContext(ctx context.Context) string {
	phone, _ := ctx.Value(phoneContextKey).(string)
	return phone
}

// withSession requires a valid session cookie and stores the caller's phone
// number in the request context.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(SessionCookieName)
		if err != nil || c.Value == "" {
			errorJSON(w, http.StatusUnauthorized, "User not verified! Please verify yourself through OTP")
			return
		}

		phone, err := auth.GetPhoneFromToken(c.Value, auth.ScopeSession, s.secretKey)
		if err != nil {
			errorJSON(w, http.StatusUnauthorized, "User not verified! Please verify yourself through OTP")
			return
		}

		ctx := context.WithValue(r.Context(), phoneContextKey, phone)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// withUploadToken checks the short-lived upload token passed as a query
// parameter. It runs in addition to the session gate; the two are
// independent on purpose.
func (s *Server) withUploadToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			errorJSON(w, http.StatusBadRequest, "Token is required.")
			return
		}

		tokenPhone, err := auth.GetPhoneFromToken(token, auth.ScopeUpload, s.secretKey)
		if err != nil {
			errorJSON(w, http.StatusUnauthorized, "Invalid or expired token.")
			return
		}

		// the upload token must belong to the session holder
		if tokenPhone != phoneFromContext(r.Context()) {
			errorJSON(w, http.StatusUnauthorized, "Invalid or expired token.")
			return
		}

		next.ServeHTTP(w, r)
	})
}
