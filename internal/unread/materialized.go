package unread

import (
	"fmt"
	"log"

	"github.com/trangpham2601/group-task-manager/internal/cache"
)

// MaterializedCounter keeps a live per-(user, group) counter in Redis:
// incremented for every recipient on message write, reset to zero on
// read. A missing or unreadable key falls back to a full recompute and
// seeds the counter from its result. Selected over RecomputeCounter at
// deployment scale where per-event rescans are too expensive.
type MaterializedCounter struct {
	redis    *cache.RedisCache
	fallback Counter
}

func NewMaterializedCounter(redis *cache.RedisCache, fallback Counter) *MaterializedCounter {
	return &MaterializedCounter{redis: redis, fallback: fallback}
}

func counterKey(userID, groupID uint) string {
	return fmt.Sprintf("unreadctr:%d:%d", userID, groupID)
}

func (m *MaterializedCounter) Count(groupID, userID uint) (int64, error) {
	if m.redis == nil {
		return m.fallback.Count(groupID, userID)
	}

	value, ok, err := m.redis.GetInt64(counterKey(userID, groupID))
	if err == nil && ok {
		if value < 0 {
			value = 0
		}
		return value, nil
	}
	if err != nil {
		log.Printf("materialized counter read failed for user %d group %d: %v", userID, groupID, err)
	}

	count, cerr := m.fallback.Count(groupID, userID)
	if cerr != nil {
		return 0, cerr
	}
	// A message landing between the recompute and this seed is missed by
	// the seeded counter until the next read mark resets it. Same accepted
	// skew as the recompute path's uncoordinated reads; no fencing here.
	if serr := m.redis.SetInt64(counterKey(userID, groupID), count); serr != nil {
		log.Printf("materialized counter seed failed for user %d group %d: %v", userID, groupID, serr)
	}
	return count, nil
}

// OnMessage bumps the counter of every recipient except the sender.
// Only seeded counters are incremented; an unseeded one stays on the
// recompute path until something reads it.
func (m *MaterializedCounter) OnMessage(groupID, senderID uint, memberIDs []uint) {
	if m.redis == nil {
		return
	}
	for _, memberID := range memberIDs {
		if memberID == senderID {
			continue
		}
		key := counterKey(memberID, groupID)
		if !m.redis.Exists(key) {
			continue
		}
		if _, err := m.redis.Incr(key); err != nil {
			log.Printf("materialized counter incr failed for user %d group %d: %v", memberID, groupID, err)
		}
	}
}

// OnRead resets the counter after a successful read mark.
func (m *MaterializedCounter) OnRead(groupID, userID uint) {
	if m.redis == nil {
		return
	}
	if err := m.redis.SetInt64(counterKey(userID, groupID), 0); err != nil {
		log.Printf("materialized counter reset failed for user %d group %d: %v", userID, groupID, err)
	}
}
