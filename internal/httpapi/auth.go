package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Session is the caller identity carried by a validated bearer token
type Session struct {
	Subject string
	Email   string
	Role    string
}

type sessionClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type sessionKey struct{}

// WithSession returns a copy of ctx carrying s
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the session stored by SessionMiddleware
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}

// SessionMiddleware validates HS256 bearer tokens. An empty secret disables
// the check.
func SessionMiddleware(secret string, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if secret == "" {
			return next
		}

		parser := jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		)
		keyFunc := func(*jwt.Token) (interface{}, error) { return []byte(secret), nil }

		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(raw) == "" {
				return c.JSON(http.StatusUnauthorized, errorBody("Authorization header required"))
			}

			claims := &sessionClaims{}
			if _, err := parser.ParseWithClaims(strings.TrimSpace(raw), claims, keyFunc); err != nil {
				logger.Warn("session token rejected", zap.String("path", c.Path()), zap.Error(err))
				return c.JSON(http.StatusUnauthorized, errorBody("Invalid or expired token"))
			}
			if claims.Subject == "" {
				return c.JSON(http.StatusUnauthorized, errorBody("Invalid token claims"))
			}

			s := &Session{Subject: claims.Subject, Email: claims.Email, Role: claims.Role}
			c.SetRequest(c.Request().WithContext(WithSession(c.Request().Context(), s)))
			return next(c)
		}
	}
}
