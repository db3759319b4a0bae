// Package notify turns a single message send into per-recipient
// notification records and presents those records to their recipients.
package notify

import (
	"encoding/json"
	"log"

	"github.com/trangpham2601/group-task-manager/internal/apperr"
	"github.com/trangpham2601/group-task-manager/internal/events"
	"github.com/trangpham2601/group-task-manager/internal/models"
	"github.com/trangpham2601/group-task-manager/internal/repository"
)

// Fanout expands one sent message into one NotificationRecord per group
// member, never including the sender. Invoked synchronously after the
// message is durably written.
type Fanout struct {
	groupRepo repository.GroupRepositoryInterface
	notifRepo repository.NotificationRepositoryInterface
	bus       events.Bus
}

func NewFanout(
	groupRepo repository.GroupRepositoryInterface,
	notifRepo repository.NotificationRepositoryInterface,
	bus events.Bus,
) *Fanout {
	return &Fanout{groupRepo: groupRepo, notifRepo: notifRepo, bus: bus}
}

// OnMessageSent resolves the group's member list and writes one record
// into each recipient's inbox. The sender is excluded unconditionally; a
// missing group aborts the whole fan-out (logged, not an error); one
// recipient's write failure never rolls back or blocks the others.
func (f *Fanout) OnMessageSent(groupID, senderID uint, senderName, content string) {
	group, err := f.groupRepo.FindByID(groupID)
	if err != nil {
		if apperr.IsNotFound(err) {
			log.Printf("fanout: group %d not found, skipping", groupID)
		} else {
			log.Printf("fanout: resolving group %d: %v", groupID, err)
		}
		return
	}

	created := 0
	for _, member := range group.Members {
		if member.UserID == senderID {
			continue
		}

		record := &models.NotificationRecord{
			RecipientID: member.UserID,
			Type:        models.NotificationTypeChatMessage,
			GroupID:     group.ID,
			GroupName:   group.Name,
			SenderID:    senderID,
			SenderName:  senderName,
			Message:     content,
		}
		if err := f.notifRepo.Create(record); err != nil {
			log.Printf("fanout: creating record for user %d in group %d: %v", member.UserID, groupID, err)
			continue
		}
		created++

		if f.bus != nil {
			payload, err := json.Marshal(record)
			if err == nil {
				_ = f.bus.Publish(events.UserNotifications(member.UserID), payload)
			}
		}
	}

	log.Printf("fanout: group %d message from user %d produced %d records", groupID, senderID, created)
}
