package unread

import (
	"context"
	"log"
	"sync"

	"github.com/trangpham2601/group-task-manager/internal/events"
	"github.com/trangpham2601/group-task-manager/internal/models"
)

const eventBuffer = 64

// Watcher maintains standing per-user subscriptions over the live set of
// groups the user belongs to. Every wake-up on the group-change channel
// recomputes the count for every group currently in the set and emits one
// UnreadEvent per group. It deliberately does not wake on message writes;
// live per-message updates depend on the caller re-marking or the next
// group-document change, as in the original design.
type Watcher struct {
	groupRepo GroupLister
	counter   Counter
	bus       events.Bus
}

// GroupLister is the slice of the group repository the watcher needs.
type GroupLister interface {
	GetUserGroups(userID uint) ([]models.Group, error)
}

func NewWatcher(groupRepo GroupLister, counter Counter, bus events.Bus) *Watcher {
	return &Watcher{groupRepo: groupRepo, counter: counter, bus: bus}
}

// Subscription is a live unread-event stream for one user. It must be
// Closed when the consumer goes away; an unreleased subscription leaks a
// bus connection.
type Subscription struct {
	events chan models.UnreadEvent
	cancel func()
	once   sync.Once
}

// Events delivers one UnreadEvent per (wake-up, group). The channel is
// closed after Close.
func (s *Subscription) Events() <-chan models.UnreadEvent {
	return s.events
}

// Close releases the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(s.cancel)
}

// Subscribe opens the standing subscription and emits an initial round of
// counts before following change signals.
func (w *Watcher) Subscribe(ctx context.Context, userID uint) (*Subscription, error) {
	wakeups, cancel, err := w.bus.Subscribe(ctx, events.GroupsChanged)
	if err != nil {
		return nil, err
	}

	sub := &Subscription{
		events: make(chan models.UnreadEvent, eventBuffer),
		cancel: cancel,
	}

	go func() {
		defer close(sub.events)
		w.emitAll(userID, sub)
		for range wakeups {
			// The payload names one group, but any group write can
			// reorder the member set, so every group is recomputed.
			w.emitAll(userID, sub)
		}
	}()

	return sub, nil
}

func (w *Watcher) emitAll(userID uint, sub *Subscription) {
	groups, err := w.groupRepo.GetUserGroups(userID)
	if err != nil {
		log.Printf("unread watcher: listing groups for user %d: %v", userID, err)
		return
	}

	for _, group := range groups {
		count, err := w.counter.Count(group.ID, userID)
		if err != nil {
			// One group's failure never blocks its siblings.
			log.Printf("unread watcher: counting group %d for user %d: %v", group.ID, userID, err)
			continue
		}
		select {
		case sub.events <- models.UnreadEvent{GroupID: group.ID, Count: count}:
		default:
			log.Printf("unread watcher: dropping event for user %d group %d (slow consumer)", userID, group.ID)
		}
	}
}
