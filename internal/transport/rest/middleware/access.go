package middleware

import (
	"context"
	"net/http"
	"strings"

	"codepractice/internal/model"
)

type contextKey string

const AccessClaimsKey contextKey = "accessClaims"

// PassValidator checks an access pass
type PassValidator interface {
	ValidateAccessPass(token string) (*model.AccessClaims, error)
}

// AccessMiddleware gates routes behind an access pass
type AccessMiddleware struct {
	passes PassValidator
}

// NewAccessMiddleware creates a new access middleware
func NewAccessMiddleware(passes PassValidator) *AccessMiddleware {
	return &AccessMiddleware{passes: passes}
}

// RequireAccessPass validates the pass from the Authorization header
func (m *AccessMiddleware) RequireAccessPass(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing access pass"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.passes.ValidateAccessPass(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired access pass"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), AccessClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAccessClaims extracts the access pass claims from context
func GetAccessClaims(ctx context.Context) *model.AccessClaims {
	if v, ok := ctx.Value(AccessClaimsKey).(*model.AccessClaims); ok {
		return v
	}
	return nil
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
