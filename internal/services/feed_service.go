package services

import (
	"context"
	"errors"
	"iter"

	"github.com/anonto42/nano-midea/socialgraph/internal/cache"
	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/anonto42/nano-midea/socialgraph/internal/repositories"
	"go.uber.org/zap"
)

// DefaultFeedBatch is the page size Feed reads from the store when none is given.
const DefaultFeedBatch = 50

// FeedService resolves a viewer's feed at read time: posts by the accounts the
// viewer follows plus the viewer's own, newest first.
type FeedService struct {
	store   *repositories.Store
	authors cache.AuthorSetCache
	logger  *zap.Logger
}

func NewFeedService(store *repositories.Store, authors cache.AuthorSetCache, logger *zap.Logger) *FeedService {
	return &FeedService{store: store, authors: authors, logger: logger}
}

// AuthorSet returns the ids whose posts viewerID sees. The cache is consulted first;
// any cache failure falls back to the follow graph. The result is cached only if the
// viewer's follows did not change while it was being read.
func (s *FeedService) AuthorSet(ctx context.Context, viewerID uint) ([]uint, error) {
	ids, gen, ok, cacheErr := s.authors.Get(ctx, viewerID)
	if cacheErr != nil {
		s.logger.Warn("author set cache read failed", zap.Uint("viewer_id", viewerID), zap.Error(cacheErr))
	}
	if cacheErr == nil && ok {
		return ids, nil
	}

	following, err := s.store.Follows.GetFollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	ids = append(following, viewerID)

	// without a generation the write could not be checked for staleness
	if cacheErr != nil {
		return ids, nil
	}
	switch err := s.authors.Set(ctx, viewerID, gen, ids); {
	case errors.Is(err, cache.ErrStale):
		s.logger.Debug("author set changed during read, not cached", zap.Uint("viewer_id", viewerID))
	case err != nil:
		s.logger.Warn("author set cache write failed", zap.Uint("viewer_id", viewerID), zap.Error(err))
	}
	return ids, nil
}

// FeedPage returns limit posts starting at offset and the total size of the feed.
func (s *FeedService) FeedPage(ctx context.Context, viewerID uint, offset, limit int) ([]models.Post, int64, error) {
	ids, err := s.AuthorSet(ctx, viewerID)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.Posts.CountPostsByAuthorIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	posts, err := s.store.Posts.GetPostsByAuthorIDs(ctx, ids, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// Feed yields the whole feed lazily, reading batch posts per query. Each query resumes
// after the last post yielded, so posts published meanwhile neither repeat nor shift
// the sequence. Iteration stops at the first error, which is yielded with a zero post.
func (s *FeedService) Feed(ctx context.Context, viewerID uint, batch int) iter.Seq2[models.Post, error] {
	if batch <= 0 {
		batch = DefaultFeedBatch
	}
	return func(yield func(models.Post, error) bool) {
		ids, err := s.AuthorSet(ctx, viewerID)
		if err != nil {
			yield(models.Post{}, err)
			return
		}
		var cursor *repositories.PostCursor
		for {
			posts, err := s.store.Posts.GetPostsByAuthorIDsAfter(ctx, ids, cursor, batch)
			if err != nil {
				yield(models.Post{}, err)
				return
			}
			for _, p := range posts {
				if !yield(p, nil) {
					return
				}
			}
			if len(posts) < batch {
				return
			}
			cursor = repositories.CursorOf(posts[len(posts)-1])
		}
	}
}
