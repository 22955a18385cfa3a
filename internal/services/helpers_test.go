package services

import (
	"testing"

	"github.com/anonto42/nano-midea/socialgraph/internal/auth"
	"github.com/anonto42/nano-midea/socialgraph/internal/cache"
	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/anonto42/nano-midea/socialgraph/internal/repositories"
	"github.com/anonto42/nano-midea/socialgraph/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

func newTestServices(t *testing.T) (*Services, *repositories.Store) {
	t.Helper()
	return newTestServicesWithCache(t, cache.NewNoopAuthorSetCache())
}

func newTestServicesWithCache(t *testing.T, authors cache.AuthorSetCache) (*Services, *repositories.Store) {
	t.Helper()
	store := testutil.NewStore(t)
	return New(store, auth.NewBcryptHasher(bcrypt.MinCost), authors, zaptest.NewLogger(t)), store
}

func notificationsFor(t *testing.T, store *repositories.Store, userID uint) []models.Notification {
	t.Helper()
	list, _, err := store.Notifications.GetByRecipientID(t.Context(), userID, 0, 0)
	require.NoError(t, err)
	return list
}
