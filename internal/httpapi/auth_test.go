package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "user-1",
		"email": "ops@example.com",
		"role":  "admin",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	}
}

func runSession(t *testing.T, secret, authHeader string) (*httptest.ResponseRecorder, *Session) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got *Session
	handler := SessionMiddleware(secret, zap.NewNop())(func(c echo.Context) error {
		got, _ = SessionFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec, got
}

func TestSessionMiddleware_ValidToken(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, validClaims())

	rec, s := runSession(t, testSecret, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, s)
	assert.Equal(t, &Session{Subject: "user-1", Email: "ops@example.com", Role: "admin"}, s)
}

func TestSessionMiddleware_Rejections(t *testing.T) {
	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	noExp := validClaims()
	delete(noExp, "exp")

	noSub := validClaims()
	delete(noSub, "sub")

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not bearer", header: "Basic dXNlcjpwYXNz"},
		{name: "garbage token", header: "Bearer not.a.jwt"},
		{name: "expired", header: "Bearer " + signToken(t, jwt.SigningMethodHS256, expired)},
		{name: "no expiry", header: "Bearer " + signToken(t, jwt.SigningMethodHS256, noExp)},
		{name: "no subject", header: "Bearer " + signToken(t, jwt.SigningMethodHS256, noSub)},
		{name: "other algorithm", header: "Bearer " + signToken(t, jwt.SigningMethodHS384, validClaims())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, s := runSession(t, testSecret, tt.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Nil(t, s)
			assert.Contains(t, rec.Body.String(), `"message"`)
		})
	}
}

func TestSessionMiddleware_WrongSecret(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, validClaims())
	rec, _ := runSession(t, "another-secret", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionMiddleware_DisabledWithoutSecret(t *testing.T) {
	rec, s := runSession(t, "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, s)
}
