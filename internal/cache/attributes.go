package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mroshb/anonchat_bot/internal/matchmaking"
	"go.uber.org/zap"
)

// AttributeCache is a matchmaking.UserStore that serves attribute snapshots
// from Redis and falls through to the wrapped store on a miss. Writes go to
// the store first and then drop the cached snapshot. Redis failures degrade
// to direct store reads.
type AttributeCache struct {
	store matchmaking.UserStore
	redis *RedisCache
	ttl   time.Duration
	log   *zap.SugaredLogger
}

type cachedAttributes struct {
	Category     string  `json:"category"`
	ReferralTier int     `json:"referral_tier"`
	BlockList    []int64 `json:"block_list"`
	Karma        int64   `json:"karma"`
}

func NewAttributeCache(store matchmaking.UserStore, redis *RedisCache, ttl time.Duration, log *zap.SugaredLogger) *AttributeCache {
	return &AttributeCache{
		store: store,
		redis: redis,
		ttl:   ttl,
		log:   log,
	}
}

// KeyForAttributes generates the Redis key for a user's attribute snapshot.
func KeyForAttributes(user matchmaking.UserID) string {
	return fmt.Sprintf("anonchat:attrs:%d", user)
}

func (c *AttributeCache) GetAttributes(ctx context.Context, user matchmaking.UserID) (matchmaking.Attributes, error) {
	key := KeyForAttributes(user)

	raw, ok, err := c.redis.Get(ctx, key)
	if err != nil {
		c.log.Warnw("Attribute cache read failed", "user_id", user, "error", err)
	}
	if ok {
		var cached cachedAttributes
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached.attributes(), nil
		}
		c.log.Warnw("Dropping corrupt attribute cache entry", "user_id", user)
	}

	attrs, err := c.store.GetAttributes(ctx, user)
	if err != nil {
		return matchmaking.Attributes{}, err
	}

	payload, err := json.Marshal(fromAttributes(attrs))
	if err == nil {
		if err := c.redis.Set(ctx, key, payload, c.ttl); err != nil {
			c.log.Warnw("Attribute cache write failed", "user_id", user, "error", err)
		}
	}
	return attrs, nil
}

func (c *AttributeCache) AddBlock(ctx context.Context, user, target matchmaking.UserID) error {
	if err := c.store.AddBlock(ctx, user, target); err != nil {
		return err
	}
	c.Invalidate(ctx, user)
	return nil
}

func (c *AttributeCache) IncrementKarma(ctx context.Context, user matchmaking.UserID, positive bool) error {
	if err := c.store.IncrementKarma(ctx, user, positive); err != nil {
		return err
	}
	c.Invalidate(ctx, user)
	return nil
}

// Invalidate drops user's snapshot after a profile change made outside the
// UserStore interface (gender, referrals).
func (c *AttributeCache) Invalidate(ctx context.Context, user matchmaking.UserID) {
	if err := c.redis.Del(ctx, KeyForAttributes(user)); err != nil {
		c.log.Warnw("Attribute cache invalidation failed", "user_id", user, "error", err)
	}
}

func fromAttributes(a matchmaking.Attributes) cachedAttributes {
	out := cachedAttributes{
		Category:     string(a.Category),
		ReferralTier: a.ReferralTier,
		Karma:        a.Karma,
		BlockList:    make([]int64, 0, len(a.BlockList)),
	}
	for _, id := range a.BlockList {
		out.BlockList = append(out.BlockList, int64(id))
	}
	return out
}

func (c cachedAttributes) attributes() matchmaking.Attributes {
	category, ok := matchmaking.ParseCategory(c.Category)
	if !ok {
		category = matchmaking.CategoryAny
	}
	out := matchmaking.Attributes{
		Category:     category,
		ReferralTier: c.ReferralTier,
		Karma:        c.Karma,
		BlockList:    make([]matchmaking.UserID, 0, len(c.BlockList)),
	}
	for _, id := range c.BlockList {
		out.BlockList = append(out.BlockList, matchmaking.UserID(id))
	}
	return out
}
