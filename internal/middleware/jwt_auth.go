package middleware

import (
	"context"

	"github.com/anonto42/nano-midea/socialgraph/internal/auth"
	"github.com/anonto42/nano-midea/socialgraph/internal/models"
)

// JWTAuthenticator accepts tokens signed by issuer and loads the account they name.
func JWTAuthenticator(issuer *auth.TokenIssuer, users UserLookup) Authenticator {
	return func(ctx context.Context, token string) (*models.User, error) {
		claims, err := issuer.Parse(token)
		if err != nil {
			return nil, err
		}
		return users.GetUserByID(ctx, claims.UserID)
	}
}
