package services

import (
	"testing"

	"github.com/anonto42/nano-midea/socialgraph/internal/auth"
	"github.com/anonto42/nano-midea/socialgraph/internal/cache"
	"github.com/anonto42/nano-midea/socialgraph/internal/repositories"
	"github.com/anonto42/nano-midea/socialgraph/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

// newFailingDispatchServices returns services whose database aborts every
// notification insert.
func newFailingDispatchServices(t *testing.T) (*Services, *repositories.Store) {
	t.Helper()
	db := testutil.NewDB(t)
	require.NoError(t, db.Exec(`CREATE TRIGGER fail_notifications BEFORE INSERT ON notifications
BEGIN SELECT RAISE(ABORT, 'notifications unavailable'); END`).Error)
	store := repositories.NewStore(db)
	return New(store, auth.NewBcryptHasher(bcrypt.MinCost), cache.NewNoopAuthorSetCache(), zaptest.NewLogger(t)), store
}

func TestFailedNotificationRollsBackWrite(t *testing.T) {
	svc, store := newFailingDispatchServices(t)
	ctx := t.Context()
	alice := testutil.CreateUser(t, store, "alice")
	bob := testutil.CreateUser(t, store, "bob")
	post := testutil.CreatePost(t, store, alice, "hello")

	t.Run("follow", func(t *testing.T) {
		_, err := svc.Follows.Follow(ctx, bob.ID, alice.ID)
		require.ErrorContains(t, err, "notifications unavailable")

		following, err := svc.Follows.IsFollowing(ctx, bob.ID, alice.ID)
		require.NoError(t, err)
		assert.False(t, following)
	})

	t.Run("like", func(t *testing.T) {
		_, err := svc.Posts.Like(ctx, post.ID, bob.ID)
		require.ErrorContains(t, err, "notifications unavailable")

		liked, err := svc.Posts.IsLikedBy(ctx, post.ID, bob.ID)
		require.NoError(t, err)
		assert.False(t, liked)
	})

	t.Run("comment", func(t *testing.T) {
		_, err := svc.Comments.CreateComment(ctx, post.ID, bob.ID, "hi")
		require.ErrorContains(t, err, "notifications unavailable")

		comments, err := svc.Comments.ListComments(ctx, post.ID)
		require.NoError(t, err)
		assert.Empty(t, comments)
	})

	t.Run("writes without a notification still commit", func(t *testing.T) {
		_, err := svc.Posts.Like(ctx, post.ID, alice.ID)
		require.NoError(t, err)
		_, err = svc.Comments.CreateComment(ctx, post.ID, alice.ID, "mine")
		require.NoError(t, err)
	})
}
