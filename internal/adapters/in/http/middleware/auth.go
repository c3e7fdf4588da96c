package middleware

import (
	"context"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"go.uber.org/zap"

	usecase "firstpick/internal/application/usecase"
)

// TokenVerifier is satisfied by *auth.Client from the Firebase Admin SDK.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// AuthMiddleware verifies the Firebase ID token and places the uid, the
// email claim and the admin flag into the request context.
//
// A user is admin when the token carries the custom claim "admin": true or
// the uid is listed in AdminUIDs.
type AuthMiddleware struct {
	Verifier  TokenVerifier
	AdminUIDs map[string]struct{}
	Log       *zap.Logger
}

func NewAuthMiddleware(v TokenVerifier, adminUIDs []string, log *zap.Logger) *AuthMiddleware {
	if log == nil {
		log = zap.NewNop()
	}
	set := make(map[string]struct{}, len(adminUIDs))
	for _, uid := range adminUIDs {
		uid = strings.TrimSpace(uid)
		if uid != "" {
			set[uid] = struct{}{}
		}
	}
	return &AuthMiddleware{Verifier: v, AdminUIDs: set, Log: log}
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil || m.Verifier == nil {
			writeError(w, http.StatusServiceUnavailable, "auth middleware not initialized")
			return
		}

		idToken, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized: missing bearer token")
			return
		}

		token, err := m.Verifier.VerifyIDToken(r.Context(), idToken)
		if err != nil || token == nil || strings.TrimSpace(token.UID) == "" {
			m.Log.Debug("id token rejected", zap.Error(err))
			writeError(w, http.StatusUnauthorized, "unauthorized: invalid token")
			return
		}

		ctx := usecase.WithUser(r.Context(), token.UID, m.isAdmin(token))
		if email, _ := token.Claims["email"].(string); email != "" {
			ctx = usecase.WithEmail(ctx, email)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) isAdmin(token *fbauth.Token) bool {
	if _, ok := m.AdminUIDs[token.UID]; ok {
		return true
	}
	b, _ := token.Claims["admin"].(bool)
	return b
}

// RequireAdmin must run after AuthMiddleware.Handler.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if usecase.UserIDFromContext(r.Context()) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !usecase.IsAdminFromContext(r.Context()) {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	t := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	return t, t != ""
}
