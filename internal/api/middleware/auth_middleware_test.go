package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velora-labs/velora-backend/internal/api/middleware"
	"github.com/velora-labs/velora-backend/internal/models"
)

var testJWTKey = []byte("test-secret-key-123456789012345")

func createTestToken(t *testing.T, key []byte, method jwt.SigningMethod, tokenType string, expiresAt time.Time) string {
	t.Helper()

	claims := &models.Claims{
		UserID:    uuid.New(),
		Email:     "test@example.com",
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)

	return signed
}

func TestAuthMiddleware_Authenticate(t *testing.T) {

	authMiddleware := middleware.NewAuthMiddleware(testJWTKey)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectNext     bool
	}{
		{
			name:           "Success - Valid Access Token",
			authHeader:     "Bearer " + createTestToken(t, testJWTKey, jwt.SigningMethodHS256, models.TokenTypeAccess, time.Now().Add(time.Hour)),
			expectedStatus: http.StatusOK,
			expectNext:     true,
		},
		{
			name:           "Fail - Missing Authorization Header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Fail - Malformed Header",
			authHeader:     "NotBearer token",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Fail - Garbage Token",
			authHeader:     "Bearer not.a.jwt",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Fail - Wrong Signing Key",
			authHeader:     "Bearer " + createTestToken(t, []byte("some-other-key"), jwt.SigningMethodHS256, models.TokenTypeAccess, time.Now().Add(time.Hour)),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Fail - Expired Token",
			authHeader:     "Bearer " + createTestToken(t, testJWTKey, jwt.SigningMethodHS256, models.TokenTypeAccess, time.Now().Add(-time.Hour)),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Fail - Refresh Token Rejected For Access",
			authHeader:     "Bearer " + createTestToken(t, testJWTKey, jwt.SigningMethodHS256, models.TokenTypeRefresh, time.Now().Add(time.Hour)),
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			nextCalled := false

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true

				claims, ok := r.Context().Value(middleware.UserContextKey).(*models.Claims)
				assert.True(t, ok, "claims must be on the request context")
				assert.Equal(t, models.TokenTypeAccess, claims.TokenType)

				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/carts", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			rr := httptest.NewRecorder()

			// Act
			authMiddleware.Authenticate(next).ServeHTTP(rr, req)

			// Assert
			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectNext, nextCalled)
		})
	}
}
