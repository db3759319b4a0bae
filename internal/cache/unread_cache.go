package cache

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// UnreadCountTTL keeps cached counts short-lived; correctness comes from
// the recompute path, the cache only absorbs repeated badge reads.
const UnreadCountTTL = 1 * time.Minute

// UnreadCache caches computed per-(user, group) unread counts. All
// methods are nil-safe: a nil cache (Redis unavailable) is a no-op.
type UnreadCache struct {
	redis *RedisCache
}

func NewUnreadCache(redis *RedisCache) *UnreadCache {
	return &UnreadCache{redis: redis}
}

func unreadKey(userID, groupID uint) string {
	return fmt.Sprintf("unread:%d:%d", userID, groupID)
}

// GetCount retrieves a cached unread count
func (uc *UnreadCache) GetCount(userID, groupID uint) (int64, bool) {
	if uc == nil || uc.redis == nil {
		return 0, false
	}
	data, err := uc.redis.Get(unreadKey(userID, groupID))
	if err != nil || data == nil {
		return 0, false
	}

	var count int64
	if err := msgpack.Unmarshal(data, &count); err != nil {
		return 0, false
	}

	return count, true
}

// SetCount caches an unread count
func (uc *UnreadCache) SetCount(userID, groupID uint, count int64) error {
	if uc == nil || uc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(count)
	if err != nil {
		return err
	}

	return uc.redis.Set(unreadKey(userID, groupID), data, UnreadCountTTL)
}

// InvalidateCount removes a cached unread count
func (uc *UnreadCache) InvalidateCount(userID, groupID uint) error {
	if uc == nil || uc.redis == nil {
		return nil
	}
	return uc.redis.Delete(unreadKey(userID, groupID))
}
