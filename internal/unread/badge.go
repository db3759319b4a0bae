package unread

import (
	"log"
	"sync"
)

// Badge sums a user's unread counts across all of their groups into the
// single top-level indicator.
type Badge struct {
	groupRepo GroupLister
	counter   Counter
}

func NewBadge(groupRepo GroupLister, counter Counter) *Badge {
	return &Badge{groupRepo: groupRepo, counter: counter}
}

// TotalUnread fans one count out per group concurrently and joins on all
// of them. A failed per-group count contributes zero rather than failing
// the aggregate; the per-group counts may reflect slightly different
// as-of moments, which is accepted skew. Zero groups yields zero.
func (b *Badge) TotalUnread(userID uint) (int64, error) {
	groups, err := b.groupRepo.GetUserGroups(userID)
	if err != nil {
		return 0, err
	}
	if len(groups) == 0 {
		return 0, nil
	}

	counts := make([]int64, len(groups))
	var wg sync.WaitGroup
	for i, group := range groups {
		wg.Add(1)
		go func(i int, groupID uint) {
			defer wg.Done()
			count, err := b.counter.Count(groupID, userID)
			if err != nil {
				log.Printf("badge: counting group %d for user %d: %v", groupID, userID, err)
				return
			}
			counts[i] = count
		}(i, group.ID)
	}
	wg.Wait()

	var total int64
	for _, count := range counts {
		total += count
	}
	return total, nil
}
