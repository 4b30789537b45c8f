package activity

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Service builds cycle activity feeds, caching recent results and collapsing
// concurrent builds for the same cycle into one.
type Service struct {
	repo     Repository
	cache    *redis.Client
	cacheTTL time.Duration
	group    singleflight.Group
}

// NewService constructs a Service. The cache client may be nil, in which case
// every call rebuilds the feed.
func NewService(repo Repository, cache *redis.Client, cacheTTL time.Duration) *Service {
	return &Service{repo: repo, cache: cache, cacheTTL: cacheTTL}
}

// Feed returns the full activity timeline of a cycle, newest first.
func (s *Service) Feed(ctx context.Context, cycleID string) ([]Event, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, s.cacheKey(cycleID)).Bytes()
		switch {
		case err == nil:
			var events []Event
			if err := json.Unmarshal(cached, &events); err == nil {
				return events, nil
			}
			// Unreadable cache entries are rebuilt below.
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		default:
			// Cache misses and Redis failures both fall through to a rebuild.
		}
	}

	result, err, _ := s.group.Do(cycleID, func() (any, error) {
		tasks, err := s.repo.ListCycleActivity(ctx, cycleID)
		if err != nil {
			return nil, err
		}
		events := BuildFeed(tasks)
		if s.cache != nil {
			if data, err := json.Marshal(events); err == nil {
				_ = s.cache.Set(ctx, s.cacheKey(cycleID), data, s.cacheTTL).Err()
			}
		}
		return events, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]Event), nil
}

// Invalidate drops the cached feed for a cycle after a write.
func (s *Service) Invalidate(ctx context.Context, cycleID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, s.cacheKey(cycleID)).Err()
}

func (s *Service) cacheKey(cycleID string) string {
	return "activity:feed:" + cycleID
}
