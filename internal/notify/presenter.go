package notify

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/trangpham2601/group-task-manager/internal/events"
	"github.com/trangpham2601/group-task-manager/internal/models"
	"github.com/trangpham2601/group-task-manager/internal/repository"
)

const drainBatchSize = 100

// Displayer is the surface that actually shows a notification to the
// user, typically a websocket push to their live connection.
type Displayer interface {
	Present(userID uint, record models.NotificationRecord) error
}

// Presenter consumes the notification records destined for one user:
// it drains whatever is pending, follows the live channel, decides per
// record whether to surface it, and deletes it afterwards. It is scoped
// to the caller's lifetime with an explicit Start/Stop pair; there is no
// process-wide singleton.
type Presenter struct {
	userID    uint
	userRepo  repository.UserRepositoryInterface
	notifRepo repository.NotificationRepositoryInterface
	bus       events.Bus
	display   Displayer

	mu      sync.Mutex
	cancel  func()
	running bool
}

func NewPresenter(
	userID uint,
	userRepo repository.UserRepositoryInterface,
	notifRepo repository.NotificationRepositoryInterface,
	bus events.Bus,
	display Displayer,
) *Presenter {
	return &Presenter{
		userID:    userID,
		userRepo:  userRepo,
		notifRepo: notifRepo,
		bus:       bus,
		display:   display,
	}
}

// Start drains pending records, then follows the user's notification
// channel until Stop. Calling Start on a running presenter is an error
// surfaced as a no-op.
func (p *Presenter) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}

	incoming, cancel, err := p.bus.Subscribe(ctx, events.UserNotifications(p.userID))
	if err != nil {
		p.mu.Unlock()
		return err
	}
	p.cancel = cancel
	p.running = true
	p.mu.Unlock()

	go func() {
		p.drain()
		for payload := range incoming {
			var record models.NotificationRecord
			if err := json.Unmarshal(payload, &record); err != nil {
				log.Printf("presenter: bad payload for user %d: %v", p.userID, err)
				continue
			}
			p.process(record)
		}
	}()

	return nil
}

// Stop releases the subscription. Idempotent; the drain/follow goroutine
// exits when the channel closes.
func (p *Presenter) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.running = false
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// drain processes records created while no presenter was listening, for
// example while the app was backgrounded.
func (p *Presenter) drain() {
	records, err := p.notifRepo.ListForRecipient(p.userID, drainBatchSize)
	if err != nil {
		log.Printf("presenter: draining records for user %d: %v", p.userID, err)
		return
	}
	for _, record := range records {
		p.process(record)
	}
}

func (p *Presenter) process(record models.NotificationRecord) {
	enabled, err := p.notificationsEnabled()
	if err != nil {
		// Can't tell whether the user allows notifications; leave the
		// record pending for the next drain instead of guessing.
		log.Printf("presenter: permission lookup for user %d: %v", p.userID, err)
		return
	}

	if p.ShouldSuppress(record, enabled) {
		p.acknowledge(record)
		return
	}

	if err := p.display.Present(p.userID, record); err != nil {
		// Not acknowledged: the record stays pending and is retried on
		// the next drain.
		log.Printf("presenter: presenting record %d to user %d: %v", record.ID, p.userID, err)
		return
	}
	p.acknowledge(record)
}

// ShouldSuppress applies the suppression rules in order: notification
// permission off first, then the user's own messages. Fan-out already
// skips the sender, so the second rule only fires on records written by
// older clients that did not.
func (p *Presenter) ShouldSuppress(record models.NotificationRecord, notificationsEnabled bool) bool {
	if !notificationsEnabled {
		return true
	}
	if record.SenderID == p.userID {
		return true
	}
	return false
}

// acknowledge deletes the record; every presentation path is terminal.
func (p *Presenter) acknowledge(record models.NotificationRecord) {
	if err := p.notifRepo.Delete(p.userID, record.ID); err != nil {
		log.Printf("presenter: acknowledging record %d for user %d: %v", record.ID, p.userID, err)
	}
}

func (p *Presenter) notificationsEnabled() (bool, error) {
	user, err := p.userRepo.FindByID(p.userID)
	if err != nil {
		return false, err
	}
	return user.NotificationsEnabled, nil
}

// AcknowledgeAllForGroup flushes every chat notification the user has for
// a group. Called after a successful read mark so records whose display
// window has passed do not accumulate.
func AcknowledgeAllForGroup(notifRepo repository.NotificationRepositoryInterface, userID, groupID uint) (int64, error) {
	return notifRepo.DeleteForGroup(userID, groupID, models.NotificationTypeChatMessage)
}
