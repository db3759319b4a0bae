// Package unread computes and streams per-(user, group) unread message
// counts. A count is the number of messages authored by other members
// since the user's last read mark; with no read mark every foreign
// message counts.
package unread

import (
	"time"

	"github.com/trangpham2601/group-task-manager/internal/apperr"
	"github.com/trangpham2601/group-task-manager/internal/cache"
	"github.com/trangpham2601/group-task-manager/internal/repository"
)

// Counter yields the unread count for one (group, user) pair. Both the
// recompute and the materialized implementations satisfy it, so callers
// are deployment-mode agnostic.
type Counter interface {
	Count(groupID, userID uint) (int64, error)
}

// RecomputeCounter re-derives the count from the message log on every
// call. Simple and always correct, at the cost of read amplification;
// fine at small per-group volumes.
type RecomputeCounter struct {
	messageRepo repository.MessageRepositoryInterface
	readRepo    repository.ReadPositionRepositoryInterface
	unreadCache *cache.UnreadCache
}

func NewRecomputeCounter(
	messageRepo repository.MessageRepositoryInterface,
	readRepo repository.ReadPositionRepositoryInterface,
	unreadCache *cache.UnreadCache,
) *RecomputeCounter {
	return &RecomputeCounter{
		messageRepo: messageRepo,
		readRepo:    readRepo,
		unreadCache: unreadCache,
	}
}

func (c *RecomputeCounter) Count(groupID, userID uint) (int64, error) {
	if count, ok := c.unreadCache.GetCount(userID, groupID); ok {
		return count, nil
	}

	pos, err := c.readRepo.Get(groupID, userID)
	if err != nil && !apperr.IsNotFound(err) {
		return 0, apperr.Transient("get read position", err)
	}

	// The read-position fetch and the message count are two separate
	// store reads with no shared transaction. A message landing between
	// them yields a transient undercount that self-corrects on the next
	// recompute; do not add coordination here.
	var since *time.Time
	if pos != nil {
		since = &pos.LastReadAt
	}

	count, err := c.messageRepo.CountUnread(groupID, userID, since)
	if err != nil {
		return 0, apperr.Transient("count unread", err)
	}
	_ = c.unreadCache.SetCount(userID, groupID, count)
	return count, nil
}
