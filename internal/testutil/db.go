// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/anonto42/nano-midea/socialgraph/internal/repositories"
	"github.com/anonto42/nano-midea/socialgraph/pkg/config"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a migrated SQLite database in t.TempDir() with foreign keys enforced.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := config.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// NewStore returns a Store over a fresh database.
func NewStore(t *testing.T) *repositories.Store {
	t.Helper()
	return repositories.NewStore(NewDB(t))
}

// CreateUser inserts a user named username with a placeholder password hash.
func CreateUser(t *testing.T, store *repositories.Store, username string) *models.User {
	t.Helper()
	user := &models.User{
		Email:    username + "@example.com",
		Username: username,
		Password: "x",
	}
	require.NoError(t, store.Users.CreateUser(t.Context(), user))
	return user
}

// CreatePost inserts a post by author.
func CreatePost(t *testing.T, store *repositories.Store, author *models.User, content string) *models.Post {
	t.Helper()
	post := &models.Post{AuthorID: author.ID, Content: content}
	require.NoError(t, store.Posts.CreatePost(t.Context(), post))
	return post
}
