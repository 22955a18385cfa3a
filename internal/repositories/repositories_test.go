package repositories_test

import (
	"errors"
	"testing"
	"time"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/anonto42/nano-midea/socialgraph/internal/repositories"
	"github.com/anonto42/nano-midea/socialgraph/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUsers_UniqueKeysTranslate(t *testing.T) {
	store := testutil.NewStore(t)
	testutil.CreateUser(t, store, "alice")

	err := store.Users.CreateUser(t.Context(), &models.User{Email: "alice@example.com", Username: "other", Password: "x"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	exists, err := store.Users.UsernameExists(t.Context(), "alice")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFollows_CreateIfAbsent(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := t.Context()
	a := testutil.CreateUser(t, store, "a")
	b := testutil.CreateUser(t, store, "b")

	created, err := store.Follows.CreateFollowIfAbsent(ctx, &models.Follow{FollowerID: a.ID, FollowingID: b.ID})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.Follows.CreateFollowIfAbsent(ctx, &models.Follow{FollowerID: a.ID, FollowingID: b.ID})
	require.NoError(t, err)
	assert.False(t, created)

	ids, err := store.Follows.GetFollowingIDs(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{b.ID}, ids)

	removed, err := store.Follows.DeleteFollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = store.Follows.DeleteFollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestLikes_CountsAndLikedSet(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := t.Context()
	a := testutil.CreateUser(t, store, "a")
	b := testutil.CreateUser(t, store, "b")
	p1 := testutil.CreatePost(t, store, a, "one")
	p2 := testutil.CreatePost(t, store, a, "two")

	for _, like := range []models.Like{{PostID: p1.ID, UserID: a.ID}, {PostID: p1.ID, UserID: b.ID}, {PostID: p2.ID, UserID: b.ID}} {
		created, err := store.Likes.CreateLikeIfAbsent(ctx, &like)
		require.NoError(t, err)
		require.True(t, created)
	}

	counts, err := store.Likes.CountByPostIDs(ctx, []uint{p1.ID, p2.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint]int64{p1.ID: 2, p2.ID: 1}, counts)

	liked, err := store.Likes.LikedPostIDs(ctx, a.ID, []uint{p1.ID, p2.ID})
	require.NoError(t, err)
	assert.True(t, liked[p1.ID])
	assert.False(t, liked[p2.ID])
}

func TestPosts_AuthorFilterAndOrder(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := t.Context()
	a := testutil.CreateUser(t, store, "a")
	b := testutil.CreateUser(t, store, "b")
	first := testutil.CreatePost(t, store, a, "first")
	testutil.CreatePost(t, store, b, "other")
	second := testutil.CreatePost(t, store, a, "second")

	posts, err := store.Posts.GetPostsByAuthorIDs(ctx, []uint{a.ID}, 0, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, second.ID, posts[0].ID)
	assert.Equal(t, first.ID, posts[1].ID)
	assert.Equal(t, "a", posts[0].Author.Username)

	none, err := store.Posts.GetPostsByAuthorIDs(ctx, nil, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, none)

	assert.True(t, errors.Is(store.Posts.DeletePost(ctx, 999), gorm.ErrRecordNotFound))
}

func TestPosts_CursorPagesBreakTiesByID(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := t.Context()
	a := testutil.CreateUser(t, store, "a")

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	var ids []uint
	for i := range 3 {
		post := &models.Post{AuthorID: a.ID, Content: "same instant", CreatedAt: at}
		if i == 2 {
			post.CreatedAt = at.Add(-time.Hour)
		}
		require.NoError(t, store.Posts.CreatePost(ctx, post))
		ids = append(ids, post.ID)
	}

	page, err := store.Posts.GetPostsByAuthorIDsAfter(ctx, []uint{a.ID}, nil, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[1], page[0].ID)

	page, err = store.Posts.GetPostsByAuthorIDsAfter(ctx, []uint{a.ID}, repositories.CursorOf(page[0]), 5)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, []uint{ids[0], ids[2]}, []uint{page[0].ID, page[1].ID})

	none, err := store.Posts.GetPostsByAuthorIDsAfter(ctx, nil, nil, 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTransaction_RollsBack(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := t.Context()
	boom := errors.New("boom")

	err := store.Transaction(ctx, func(tx *repositories.Store) error {
		testutil.CreateUser(t, tx, "ghost")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	exists, err := store.Users.UsernameExists(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestNotifications_FollowRetractionIsTargeted(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := t.Context()
	a := testutil.CreateUser(t, store, "a")
	b := testutil.CreateUser(t, store, "b")
	post := testutil.CreatePost(t, store, b, "p")

	require.NoError(t, store.Notifications.CreateNotification(ctx, &models.Notification{RecipientID: b.ID, SenderID: a.ID, Type: models.NotificationFollow, Message: "f"}))
	require.NoError(t, store.Notifications.CreateNotification(ctx, &models.Notification{RecipientID: b.ID, SenderID: a.ID, Type: models.NotificationLike, Message: "l", RelatedPostID: &post.ID}))

	n, err := store.Notifications.DeleteFollowNotification(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	left, total, err := store.Notifications.GetByRecipientID(ctx, b.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, models.NotificationLike, left[0].Type)

	err = store.Notifications.CreateNotification(ctx, &models.Notification{RecipientID: b.ID, SenderID: a.ID, Type: "poke", Message: "x"})
	assert.Error(t, err, "type check constraint")
}
