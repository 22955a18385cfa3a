package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/anonto42/nano-midea/socialgraph/internal/permissions"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	principalKey = "principal"
	userKey      = "user"
)

// UserLookup resolves the account behind a verified token.
type UserLookup interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Authenticator turns a bearer token into an account. It returns an error when the
// token is not one it can verify.
type Authenticator func(ctx context.Context, token string) (*models.User, error)

// RequireAuth verifies the bearer token with each authenticator in turn and attaches
// the first resolved account as the request principal.
func RequireAuth(logger *zap.Logger, authenticators ...Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c.Request())
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			ctx := c.Request().Context()
			for _, authenticate := range authenticators {
				user, err := authenticate(ctx, token)
				if err != nil {
					logger.Debug("authenticator rejected token", zap.Error(err))
					continue
				}
				SetPrincipal(c, user)
				return next(c)
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", errors.New("Missing Authorization header")
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", errors.New("Authorization header must be in Bearer format")
	}
	return parts[1], nil
}

// SetPrincipal attaches user to the request context.
func SetPrincipal(c echo.Context, user *models.User) {
	c.Set(userKey, user)
	c.Set(principalKey, permissions.Principal{
		UserID:     user.ID,
		IsStaff:    user.IsStaff,
		IsVerified: user.IsVerified,
	})
}

// PrincipalFrom returns the request principal set by RequireAuth.
func PrincipalFrom(c echo.Context) (permissions.Principal, bool) {
	p, ok := c.Get(principalKey).(permissions.Principal)
	return p, ok
}

// UserFrom returns the authenticated account set by RequireAuth.
func UserFrom(c echo.Context) (*models.User, bool) {
	u, ok := c.Get(userKey).(*models.User)
	return u, ok
}
