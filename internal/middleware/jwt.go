package middleware

import (
	"errors"
	"log"
	"net/http"
	"time"

	"stockroom/internal/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTCustomClaims are the claims every API token carries
type JWTCustomClaims struct {
	UserID   uuid.UUID `json:"user_id"`
	TenantID uuid.UUID `json:"tenant_id"`
	jwt.RegisteredClaims
}

// Validate rejects tokens that do not name a tenant. jwt calls it after the
// registered claims pass.
func (c *JWTCustomClaims) Validate() error {
	if c.TenantID == uuid.Nil {
		return errors.New("missing tenant_id in token")
	}
	return nil
}

// JWTConfig verifies HMAC bearer tokens into JWTCustomClaims
func JWTConfig(secret string) echojwt.Config {
	return echojwt.Config{
		SigningKey:    []byte(secret),
		SigningMethod: jwt.SigningMethodHS256.Name,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(JWTCustomClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			log.Printf("WARN: Rejected token for %s %s: %v", c.Request().Method, c.Path(), err)
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	}
}

// JWTMiddleware verifies the bearer token and puts the caller's user and
// tenant into the request context
func JWTMiddleware(secret string) echo.MiddlewareFunc {
	verify := echojwt.WithConfig(JWTConfig(secret))
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(identityFromToken(next))
	}
}

func identityFromToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := c.Get("user").(*jwt.Token)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		}
		claims, ok := token.Claims.(*JWTCustomClaims)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid claims")
		}
		ctx := common.WithIdentity(c.Request().Context(), claims.UserID, claims.TenantID)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// NewToken signs a token for userID acting in tenantID
func NewToken(secret string, userID, tenantID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &JWTCustomClaims{
		UserID:   userID,
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
