package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// AuthorSetCache stores the set of author ids visible in a viewer's feed.
// A miss is reported with ok=false; callers fall back to the follow graph.
//
// Get also returns the viewer's generation. Invalidate advances it, and Set only
// stores a set computed under the generation that is still current, so a set read
// from the follow graph before a concurrent change is never cached.
type AuthorSetCache interface {
	Get(ctx context.Context, viewerID uint) (ids []uint, gen int64, ok bool, err error)
	Set(ctx context.Context, viewerID uint, gen int64, ids []uint) error
	Invalidate(ctx context.Context, viewerID uint) error
}

// ErrStale is returned by Set when the viewer was invalidated after gen was read.
var ErrStale = errors.New("author set changed since it was read")

const (
	keyPrefix = "feed:authors:"
	genPrefix = "feed:authors:gen:"
)

// sentinel member so an empty set still produces a key
const emptyMarker = "-"

// generation keys outlive any read that could still hold their value
const genTTL = 24 * time.Hour

type redisAuthorSetCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisAuthorSetCache returns a cache that stores one SET per viewer with the given TTL.
func NewRedisAuthorSetCache(client *redis.Client, ttl time.Duration) AuthorSetCache {
	return &redisAuthorSetCache{client: client, ttl: ttl}
}

func authorSetKey(viewerID uint) string {
	return keyPrefix + strconv.FormatUint(uint64(viewerID), 10)
}

func generationKey(viewerID uint) string {
	return genPrefix + strconv.FormatUint(uint64(viewerID), 10)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readGeneration(ctx context.Context, c getter, key string) (int64, error) {
	gen, err := c.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *redisAuthorSetCache) Get(ctx context.Context, viewerID uint) ([]uint, int64, bool, error) {
	pipe := c.client.Pipeline()
	genCmd := pipe.Get(ctx, generationKey(viewerID))
	membersCmd := pipe.SMembers(ctx, authorSetKey(viewerID))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, false, fmt.Errorf("read author set: %w", err)
	}
	if err := membersCmd.Err(); err != nil {
		return nil, 0, false, fmt.Errorf("read author set: %w", err)
	}

	var gen int64
	if genCmd.Err() == nil {
		v, err := genCmd.Int64()
		if err != nil {
			return nil, 0, false, fmt.Errorf("corrupt author set generation: %w", err)
		}
		gen = v
	}

	members := membersCmd.Val()
	if len(members) == 0 {
		return nil, gen, false, nil
	}
	ids := make([]uint, 0, len(members))
	for _, m := range members {
		if m == emptyMarker {
			continue
		}
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			return nil, gen, false, fmt.Errorf("corrupt author set member %q: %w", m, err)
		}
		ids = append(ids, uint(id))
	}
	return ids, gen, true, nil
}

func (c *redisAuthorSetCache) Set(ctx context.Context, viewerID uint, gen int64, ids []uint) error {
	key, genKey := authorSetKey(viewerID), generationKey(viewerID)
	members := make([]interface{}, 0, len(ids)+1)
	members = append(members, emptyMarker)
	for _, id := range ids {
		members = append(members, strconv.FormatUint(uint64(id), 10))
	}

	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readGeneration(ctx, tx, genKey)
		if err != nil {
			return err
		}
		if current != gen {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.SAdd(ctx, key, members...)
			pipe.Expire(ctx, key, c.ttl)
			return nil
		})
		return err
	}, genKey)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStale), errors.Is(err, redis.TxFailedErr):
		return ErrStale
	default:
		return fmt.Errorf("write author set: %w", err)
	}
}

func (c *redisAuthorSetCache) Invalidate(ctx context.Context, viewerID uint) error {
	genKey := generationKey(viewerID)
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, genKey)
	pipe.Expire(ctx, genKey, genTTL)
	pipe.Del(ctx, authorSetKey(viewerID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("invalidate author set: %w", err)
	}
	return nil
}

type noopAuthorSetCache struct{}

// NewNoopAuthorSetCache returns a cache that never hits.
func NewNoopAuthorSetCache() AuthorSetCache {
	return noopAuthorSetCache{}
}

func (noopAuthorSetCache) Get(context.Context, uint) ([]uint, int64, bool, error) {
	return nil, 0, false, nil
}
func (noopAuthorSetCache) Set(context.Context, uint, int64, []uint) error { return nil }
func (noopAuthorSetCache) Invalidate(context.Context, uint) error         { return nil }
