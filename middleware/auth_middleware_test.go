package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims *GatewayClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims() *GatewayClaims {
	return &GatewayClaims{
		UserID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "caller-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func runRequest(m *AuthMiddleware, authHeader string) (*httptest.ResponseRecorder, *http.Request) {
	var captured *http.Request
	handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/generate", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, captured
}

func TestRequireAuth_ValidToken(t *testing.T) {
	m := NewAuthMiddleware(testSecret, "", "", zap.NewNop())
	claims := validClaims()

	rec, captured := runRequest(m, "Bearer "+signToken(t, testSecret, claims))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)

	gotClaims := GetClaimsFromContext(captured.Context())
	require.NotNil(t, gotClaims)
	assert.Equal(t, "caller-1", gotClaims.Subject)

	userID := GetUserIDFromContext(captured.Context())
	require.NotNil(t, userID)
	assert.Equal(t, claims.UserID, userID.String())
}

func TestRequireAuth_MissingToken(t *testing.T) {
	m := NewAuthMiddleware(testSecret, "", "", zap.NewNop())

	rec, _ := runRequest(m, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_WrongSecret(t *testing.T) {
	m := NewAuthMiddleware(testSecret, "", "", zap.NewNop())

	rec, _ := runRequest(m, "Bearer "+signToken(t, "other-secret", validClaims()))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	m := NewAuthMiddleware(testSecret, "", "", zap.NewNop())
	claims := validClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	rec, _ := runRequest(m, "Bearer "+signToken(t, testSecret, claims))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_IssuerChecked(t *testing.T) {
	m := NewAuthMiddleware(testSecret, "model-gateway", "", zap.NewNop())

	claims := validClaims()
	claims.Issuer = "someone-else"
	rec, _ := runRequest(m, "Bearer "+signToken(t, testSecret, claims))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	claims.Issuer = "model-gateway"
	rec, _ = runRequest(m, "Bearer "+signToken(t, testSecret, claims))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth_DisabledPassesThrough(t *testing.T) {
	m := NewAuthMiddleware("", "", "", zap.NewNop())

	rec, captured := runRequest(m, "")

	assert.False(t, m.Enabled())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, GetClaimsFromContext(captured.Context()))
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"bearer", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"lowercase scheme", "bearer abc", "abc"},
		{"no scheme", "abc", ""},
		{"wrong scheme", "Basic abc", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, extractBearerToken(req))
		})
	}
}
