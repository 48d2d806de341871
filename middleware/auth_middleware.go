package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crewhub/model-gateway/utils"
)

// GatewayClaims are the JWT claims the gateway understands. UserID is
// optional; when present and parseable it is attached to run records.
type GatewayClaims struct {
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates bearer tokens signed with a shared HS256
// secret. An empty secret disables authentication entirely, for local
// development and deployments that terminate auth upstream.
type AuthMiddleware struct {
	secret   []byte
	issuer   string
	audience string
	logger   *zap.Logger
}

// NewAuthMiddleware creates an AuthMiddleware
func NewAuthMiddleware(secret, issuer, audience string, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		logger:   logger,
	}
}

// Enabled reports whether token validation is active
func (m *AuthMiddleware) Enabled() bool {
	return len(m.secret) > 0
}

// RequireAuth rejects requests without a valid bearer token. With auth
// disabled it is a passthrough.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		token := extractBearerToken(r)
		if token == "" {
			m.logger.Warn("missing bearer token", zap.String("request_id", requestID))
			_ = utils.WriteUnauthorized(w, "Missing or invalid authorization")
			return
		}

		claims, err := m.validateToken(token)
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("request_id", requestID),
				zap.Error(err))
			_ = utils.WriteUnauthorized(w, "Invalid or expired token")
			return
		}

		ctx = WithClaims(ctx, claims)
		if userID, err := uuid.Parse(claims.UserID); err == nil {
			ctx = WithUserID(ctx, &userID)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validateToken parses and verifies an HS256 token
func (m *AuthMiddleware) validateToken(tokenString string) (*GatewayClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	if m.audience != "" {
		opts = append(opts, jwt.WithAudience(m.audience))
	}

	claims := &GatewayClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	return claims, nil
}

// extractBearerToken pulls the token from the Authorization header
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
