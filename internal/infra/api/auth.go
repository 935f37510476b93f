package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ai-access-platform/internal/config"
	"ai-access-platform/internal/domain"
	"ai-access-platform/internal/domain/model"
	"ai-access-platform/internal/infra/logging"
)

type ctxKey int

const userCtxKey ctxKey = iota

// UserFromContext returns the authenticated user placed by Authenticate.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userCtxKey).(*model.User)
	return u, ok
}

// Claims is the verified JWT payload. Admin rights are never read from
// the token; they come from the configured admin email list.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// AuthManager verifies HS256 bearer tokens and resolves admin rights.
type AuthManager struct {
	secret      []byte
	tokenTTL    time.Duration
	adminEmails map[string]struct{}
}

func NewAuthManager(cfg *config.AuthConfig) *AuthManager {
	admins := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, e := range cfg.AdminEmails {
		admins[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return &AuthManager{
		secret:      []byte(cfg.HMACSecret),
		tokenTTL:    cfg.TokenTTL,
		adminEmails: admins,
	}
}

func (a *AuthManager) IsAdmin(email string) bool {
	_, ok := a.adminEmails[strings.ToLower(email)]
	return ok
}

// Issue mints a token. Only the dev login endpoint uses this; production
// tokens come from the external identity provider sharing the secret.
func (a *AuthManager) Issue(userID, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *AuthManager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrUnauthenticated
	}
	if claims.Subject == "" {
		return nil, domain.ErrUnauthenticated
	}
	return claims, nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return h[len(prefix):]
	}
	return ""
}

// Authenticate verifies the bearer token, upserts the local user record,
// and stores it on the request context.
func (s *Server) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, domain.ErrUnauthenticated)
			return
		}
		claims, err := s.auth.Verify(token)
		if err != nil {
			writeError(w, err)
			return
		}

		usr, err := s.userUC.RegisterOrFetch(r.Context(), claims.Subject, claims.Email, s.auth.IsAdmin(claims.Email))
		if err != nil {
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userCtxKey, usr)
		ctx = logging.WithUserID(ctx, usr.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin guards the admin subtree.
func (s *Server) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		usr, ok := UserFromContext(r.Context())
		if !ok {
			writeError(w, domain.ErrUnauthenticated)
			return
		}
		if !usr.IsAdmin {
			writeError(w, domain.ErrAdminRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAIAccess guards AI endpoints. Admins bypass the check.
func (s *Server) RequireAIAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		usr, ok := UserFromContext(r.Context())
		if !ok {
			writeError(w, domain.ErrUnauthenticated)
			return
		}
		st, err := s.accessUC.Check(r.Context(), usr.ID, usr.IsAdmin)
		if err != nil {
			writeError(w, err)
			return
		}
		if !st.Allowed() {
			writeAccessDenied(w, st)
			return
		}
		next.ServeHTTP(w, r)
	})
}
