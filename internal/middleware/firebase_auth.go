package middleware

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/nano-midea/socialgraph/internal/models"
)

// IDTokenVerifier is the part of the Firebase auth client used here.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseAuthenticator accepts Firebase ID tokens and maps their email claim to a
// registered account.
func FirebaseAuthenticator(verifier IDTokenVerifier, users UserLookup) Authenticator {
	return func(ctx context.Context, idToken string) (*models.User, error) {
		token, err := verifier.VerifyIDToken(ctx, idToken)
		if err != nil {
			return nil, fmt.Errorf("invalid or expired ID token: %w", err)
		}
		email, _ := token.Claims["email"].(string)
		if email == "" {
			return nil, errors.New("ID token has no email claim")
		}
		return users.GetUserByEmail(ctx, email)
	}
}
