package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/nano-midea/socialgraph/internal/auth"
	"github.com/anonto42/nano-midea/socialgraph/internal/repositories"
	"github.com/anonto42/nano-midea/socialgraph/internal/services"
	"github.com/anonto42/nano-midea/socialgraph/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    struct {
		CurrentPage int   `json:"currentPage"`
		TotalPages  int   `json:"totalPages"`
		TotalItems  int64 `json:"totalItems"`
		HasNextPage bool  `json:"hasNextPage"`
	} `json:"meta"`
	Message string `json:"message"`
}

type apiClient struct {
	t  *testing.T
	e  *echo.Echo
	db *gorm.DB
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	db := testutil.NewDB(t)
	logger := zaptest.NewLogger(t)
	e := New(Dependencies{
		DB:       db,
		Services: services.New(repositories.NewStore(db), auth.NewBcryptHasher(bcrypt.MinCost), nil, logger),
		Tokens:   auth.NewTokenIssuer("test-secret", time.Hour),
		Logger:   logger,
	})
	return &apiClient{t: t, e: e, db: db}
}

func (a *apiClient) do(method, path, token string, body interface{}) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func (a *apiClient) register(username string) string {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    username + "@example.com",
		"username": username,
		"password": "password123",
	})
	require.Equal(a.t, http.StatusCreated, code, env.Message)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &data))
	return data.Token
}

func (a *apiClient) createPost(token, content string) uint {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/v1/posts", token, map[string]string{"content": content})
	require.Equal(a.t, http.StatusCreated, code, env.Message)
	var post struct {
		ID uint `json:"id"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &post))
	return post.ID
}

func TestHealth(t *testing.T) {
	api := newAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	api.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestAuthFlow(t *testing.T) {
	api := newAPI(t)
	api.register("alice")

	code, _ := api.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "alice@example.com", "username": "alice2", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = api.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "bad", "username": "x", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))

	code, env = api.do(http.MethodGet, "/api/v1/profile", login.Token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"username":"alice"`)
	assert.NotContains(t, string(env.Data), "password")

	code, _ = api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = api.do(http.MethodGet, "/api/v1/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestFollowEndpoints(t *testing.T) {
	api := newAPI(t)
	alice := api.register("alice")
	api.register("bob")

	code, _ := api.do(http.MethodPost, "/api/v1/follow/bob", alice, nil)
	assert.Equal(t, http.StatusCreated, code)
	code, env := api.do(http.MethodPost, "/api/v1/follow/bob", alice, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"created":false`)

	code, _ = api.do(http.MethodPost, "/api/v1/follow/alice", alice, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = api.do(http.MethodPost, "/api/v1/follow/nobody", alice, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = api.do(http.MethodGet, "/api/v1/users/bob/followers", alice, nil)
	require.Equal(t, http.StatusOK, code)
	var followers []struct {
		Follower struct {
			Username string `json:"username"`
		} `json:"follower"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &followers))
	require.Len(t, followers, 1)
	assert.Equal(t, "alice", followers[0].Follower.Username)

	code, env = api.do(http.MethodGet, "/api/v1/users/bob", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"followers_count":1`)
	assert.Contains(t, string(env.Data), `"is_following":true`)

	code, _ = api.do(http.MethodPost, "/api/v1/unfollow/bob", alice, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = api.do(http.MethodPost, "/api/v1/unfollow/bob", alice, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestPostsFeedAndLikes(t *testing.T) {
	api := newAPI(t)
	alice := api.register("alice")
	bob := api.register("bob")
	carol := api.register("carol")

	code, _ := api.do(http.MethodPost, "/api/v1/follow/bob", alice, nil)
	require.Equal(t, http.StatusCreated, code)

	own := api.createPost(alice, "mine")
	followed := api.createPost(bob, "bob's")
	api.createPost(carol, "carol's")

	code, env := api.do(http.MethodGet, "/api/v1/posts?page=1&limit=1", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(2), env.Meta.TotalItems)
	assert.Equal(t, 2, env.Meta.TotalPages)
	assert.True(t, env.Meta.HasNextPage)
	var page []struct {
		ID     uint `json:"id"`
		Author struct {
			Username string `json:"username"`
		} `json:"author"`
		LikesCount int64 `json:"likes_count"`
		IsLiked    bool  `json:"is_liked"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page, 1)
	assert.Equal(t, followed, page[0].ID)
	assert.Equal(t, "bob", page[0].Author.Username)

	likePath := fmt.Sprintf("/api/v1/posts/%d/like", followed)
	code, _ = api.do(http.MethodPost, likePath, alice, nil)
	assert.Equal(t, http.StatusCreated, code)
	code, _ = api.do(http.MethodPost, likePath, alice, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = api.do(http.MethodGet, fmt.Sprintf("/api/v1/posts/%d", followed), alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"likes_count":1`)
	assert.Contains(t, string(env.Data), `"is_liked":true`)

	code, env = api.do(http.MethodGet, fmt.Sprintf("/api/v1/posts/%d/likes", followed), bob, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"username":"alice"`)

	unlikePath := fmt.Sprintf("/api/v1/posts/%d/unlike", followed)
	code, _ = api.do(http.MethodPost, unlikePath, alice, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = api.do(http.MethodPost, unlikePath, alice, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = api.do(http.MethodPut, fmt.Sprintf("/api/v1/posts/%d", own), bob, map[string]string{"content": "hacked"})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = api.do(http.MethodDelete, fmt.Sprintf("/api/v1/posts/%d", own), alice, nil)
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = api.do(http.MethodGet, fmt.Sprintf("/api/v1/posts/%d", own), alice, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = api.do(http.MethodGet, "/api/v1/posts/users/carol", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "carol's")
}

func TestMediaRequiresVerifiedAccount(t *testing.T) {
	api := newAPI(t)
	alice := api.register("alice")
	media := map[string]string{"content": "look", "media_url": "https://cdn.example.com/a.png"}

	code, _ := api.do(http.MethodPost, "/api/v1/posts", alice, media)
	assert.Equal(t, http.StatusForbidden, code)

	require.NoError(t, api.db.Exec("UPDATE users SET is_verified = ? WHERE username = ?", true, "alice").Error)
	code, env := api.do(http.MethodPost, "/api/v1/posts", alice, media)
	assert.Equal(t, http.StatusCreated, code)
	assert.Contains(t, string(env.Data), "cdn.example.com")
}

func TestCommentsAndNotifications(t *testing.T) {
	api := newAPI(t)
	alice := api.register("alice")
	bob := api.register("bob")
	post := api.createPost(alice, "hello")

	commentsPath := fmt.Sprintf("/api/v1/posts/%d/comments", post)
	code, env := api.do(http.MethodPost, commentsPath, bob, map[string]string{"content": "hi"})
	require.Equal(t, http.StatusCreated, code)
	var comment struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &comment))

	code, _ = api.do(http.MethodPost, commentsPath, alice, map[string]string{"content": "thanks"})
	require.Equal(t, http.StatusCreated, code)

	code, env = api.do(http.MethodGet, commentsPath, bob, nil)
	require.Equal(t, http.StatusOK, code)
	var comments []struct {
		Content string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &comments))
	require.Len(t, comments, 2)
	assert.Equal(t, "hi", comments[0].Content)

	commentPath := fmt.Sprintf("/api/v1/posts/comments/%d", comment.ID)
	code, _ = api.do(http.MethodPut, commentPath, alice, map[string]string{"content": "edited"})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = api.do(http.MethodPut, commentPath, bob, map[string]string{"content": "edited"})
	assert.Equal(t, http.StatusOK, code)
	code, env = api.do(http.MethodGet, commentPath, alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "edited")

	code, env = api.do(http.MethodGet, "/api/v1/notifications/unread-count", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"unread_count":1}`, string(env.Data))

	code, env = api.do(http.MethodGet, "/api/v1/notifications", alice, nil)
	require.Equal(t, http.StatusOK, code)
	var notes []struct {
		ID      uint   `json:"id"`
		Type    string `json:"notification_type"`
		Message string `json:"message"`
		Sender  struct {
			Username string `json:"username"`
		} `json:"sender"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, "comment", notes[0].Type)
	assert.Equal(t, "bob", notes[0].Sender.Username)

	readPath := fmt.Sprintf("/api/v1/notifications/%d/read", notes[0].ID)
	code, _ = api.do(http.MethodPost, readPath, bob, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = api.do(http.MethodPost, readPath, alice, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = api.do(http.MethodGet, "/api/v1/notifications/unread-count", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"unread_count":0}`, string(env.Data))

	code, _ = api.do(http.MethodPost, "/api/v1/notifications/read-all", alice, nil)
	assert.Equal(t, http.StatusOK, code)
	code, env = api.do(http.MethodGet, "/api/v1/notifications/recent", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"is_read":true`)
}

func TestProfileUpdateAndDelete(t *testing.T) {
	api := newAPI(t)
	alice := api.register("alice")
	bob := api.register("bob")

	code, env := api.do(http.MethodPut, "/api/v1/profile", alice, map[string]string{"bio": "gopher"})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"bio":"gopher"`)

	code, env = api.do(http.MethodGet, "/api/v1/users", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"username":"bob"`)
	assert.NotContains(t, string(env.Data), `"username":"alice"`)

	code, _ = api.do(http.MethodDelete, "/api/v1/profile", alice, nil)
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = api.do(http.MethodGet, "/api/v1/users/alice", bob, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = api.do(http.MethodGet, "/api/v1/profile", alice, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}
