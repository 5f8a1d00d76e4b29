package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	contextKeyUserID contextKey = "user_id"
	contextKeyRole   contextKey = "role"
)

// Claims are the JWT claims the service recognizes. Role feeds the
// validator_role field of produced results.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	JWTSecret   []byte
	TokenExpiry time.Duration
}

// AuthMiddleware provides JWT bearer-token authentication.
type AuthMiddleware struct {
	config AuthConfig
}

// NewAuthMiddleware creates the auth middleware.
func NewAuthMiddleware(config AuthConfig) *AuthMiddleware {
	return &AuthMiddleware{config: config}
}

// Middleware validates the bearer token and stamps the caller identity
// into the request context.
func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authorization header", "")
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return a.config.JWTSecret, nil
		})
		if err != nil || !token.Valid {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token", "")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUserID, claims.UserID)
		ctx = context.WithValue(ctx, contextKeyRole, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IssueToken mints a token for the given identity, used by tests and
// service-to-service callers.
func (a *AuthMiddleware) IssueToken(userID, name, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.config.TokenExpiry)),
		},
		UserID: userID,
		Name:   name,
		Role:   role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.config.JWTSecret)
}

// callerIdentity extracts the authenticated user and role from context.
func callerIdentity(ctx context.Context) (userID, role string) {
	if v, ok := ctx.Value(contextKeyUserID).(string); ok {
		userID = v
	}
	if v, ok := ctx.Value(contextKeyRole).(string); ok {
		role = v
	}
	if userID == "" {
		userID = "system"
	}
	if role == "" {
		role = "clinician"
	}
	return userID, role
}
