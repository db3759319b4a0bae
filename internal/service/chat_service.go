package service

import (
	"log"
	"strconv"

	"github.com/google/uuid"
	"github.com/trangpham2601/group-task-manager/internal/apperr"
	"github.com/trangpham2601/group-task-manager/internal/cache"
	"github.com/trangpham2601/group-task-manager/internal/events"
	"github.com/trangpham2601/group-task-manager/internal/models"
	"github.com/trangpham2601/group-task-manager/internal/notify"
	"github.com/trangpham2601/group-task-manager/internal/repository"
	"github.com/trangpham2601/group-task-manager/internal/unread"
)

// ChatService orchestrates the unread/notification core: message sends
// with fan-out, read marks with notification flushing, and unread reads
// through whichever counter mode the deployment selected.
type ChatService struct {
	messageRepo repository.MessageRepositoryInterface
	groupRepo   repository.GroupRepositoryInterface
	readRepo    repository.ReadPositionRepositoryInterface
	notifRepo   repository.NotificationRepositoryInterface
	userRepo    repository.UserRepositoryInterface

	fanout       *notify.Fanout
	counter      unread.Counter
	badge        *unread.Badge
	materialized *unread.MaterializedCounter
	unreadCache  *cache.UnreadCache
	bus          events.Bus
}

func NewChatService(
	messageRepo repository.MessageRepositoryInterface,
	groupRepo repository.GroupRepositoryInterface,
	readRepo repository.ReadPositionRepositoryInterface,
	notifRepo repository.NotificationRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	fanout *notify.Fanout,
	counter unread.Counter,
	badge *unread.Badge,
	materialized *unread.MaterializedCounter,
	unreadCache *cache.UnreadCache,
	bus events.Bus,
) *ChatService {
	return &ChatService{
		messageRepo:  messageRepo,
		groupRepo:    groupRepo,
		readRepo:     readRepo,
		notifRepo:    notifRepo,
		userRepo:     userRepo,
		fanout:       fanout,
		counter:      counter,
		badge:        badge,
		materialized: materialized,
		unreadCache:  unreadCache,
		bus:          bus,
	}
}

// SendGroupMessage appends to the group's message log and fans the
// message out to every other member's notification inbox. The message
// timestamp is assigned by the database on insert.
func (s *ChatService) SendGroupMessage(senderID, groupID uint, clientID, content string) (*models.Message, error) {
	isMember, err := s.groupRepo.IsMember(groupID, senderID)
	if err != nil {
		return nil, apperr.Transient("membership check", err)
	}
	if !isMember {
		return nil, apperr.ErrPermissionDenied
	}

	if clientID == "" {
		clientID = uuid.NewString()
	} else if existing, err := s.messageRepo.FindByClientID(clientID, senderID); err == nil {
		// Client resent an already-written message; no second fan-out.
		return existing, nil
	}

	message := &models.Message{
		ClientID: clientID,
		GroupID:  groupID,
		SenderID: senderID,
		Content:  content,
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}

	if err := s.groupRepo.TouchLastMessageAt(groupID); err != nil {
		log.Printf("chat: touching group %d last message time: %v", groupID, err)
	}

	senderName := ""
	if sender, err := s.userRepo.FindByID(senderID); err == nil {
		senderName = sender.Name()
	}
	s.fanout.OnMessageSent(groupID, senderID, senderName, content)

	if memberIDs, err := s.groupRepo.GetMemberIDs(groupID); err == nil {
		if s.materialized != nil {
			s.materialized.OnMessage(groupID, senderID, memberIDs)
		}
		for _, memberID := range memberIDs {
			if memberID != senderID {
				_ = s.unreadCache.InvalidateCount(memberID, groupID)
			}
		}
	}

	// No group-change publish here: the watcher wakes on group document
	// writes only, never per message.

	return s.messageRepo.FindByID(message.ID)
}

// MarkGroupRead records the read point at the current server time
// (last-write-wins), flushes the user's pending notifications for the
// group, and wakes unread subscribers so the count resets to zero.
func (s *ChatService) MarkGroupRead(userID, groupID uint) error {
	isMember, err := s.groupRepo.IsMember(groupID, userID)
	if err != nil {
		return apperr.Transient("membership check", err)
	}
	if !isMember {
		return apperr.ErrPermissionDenied
	}

	if err := s.readRepo.Upsert(groupID, userID); err != nil {
		return err
	}

	if flushed, err := notify.AcknowledgeAllForGroup(s.notifRepo, userID, groupID); err != nil {
		// The read mark already succeeded; stale records are flushed by
		// the presenter's own acknowledge path instead.
		log.Printf("chat: flushing notifications for user %d group %d: %v", userID, groupID, err)
	} else if flushed > 0 {
		log.Printf("chat: flushed %d notifications for user %d group %d", flushed, userID, groupID)
	}

	if s.materialized != nil {
		s.materialized.OnRead(groupID, userID)
	}
	_ = s.unreadCache.InvalidateCount(userID, groupID)

	if s.bus != nil {
		_ = s.bus.Publish(events.GroupsChanged, []byte(strconv.FormatUint(uint64(groupID), 10)))
	}

	return nil
}

// GetUnreadCount fails open: a store failure yields zero, not an error,
// so a broken badge degrades to "no badge".
func (s *ChatService) GetUnreadCount(groupID, userID uint) int64 {
	count, err := s.counter.Count(groupID, userID)
	if err != nil {
		log.Printf("chat: unread count for user %d group %d: %v", userID, groupID, err)
		return 0
	}
	return count
}

// GetTotalUnread sums unread counts across all the user's groups,
// failing open to zero.
func (s *ChatService) GetTotalUnread(userID uint) int64 {
	total, err := s.badge.TotalUnread(userID)
	if err != nil {
		log.Printf("chat: total unread for user %d: %v", userID, err)
		return 0
	}
	return total
}

// GetReadPosition returns nil when the user has never read the group;
// absence is a valid state, not an error.
func (s *ChatService) GetReadPosition(groupID, userID uint) (*models.ReadPosition, error) {
	pos, err := s.readRepo.Get(groupID, userID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return pos, nil
}

// GetGroupMessages returns a page of the group's log, newest first.
func (s *ChatService) GetGroupMessages(userID, groupID uint, cursor uint, limit int) ([]models.Message, error) {
	isMember, err := s.groupRepo.IsMember(groupID, userID)
	if err != nil {
		return nil, apperr.Transient("membership check", err)
	}
	if !isMember {
		return nil, apperr.ErrPermissionDenied
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.messageRepo.FindGroupMessages(groupID, cursor, limit)
}

// ListNotifications exposes the pending inbox for presenter catch-up.
func (s *ChatService) ListNotifications(userID uint, limit int) ([]models.NotificationRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.notifRepo.ListForRecipient(userID, limit)
}

// CountNotifications reports the pending total, which can exceed what a
// limited list call returns. Fails open to zero like the unread reads.
func (s *ChatService) CountNotifications(userID uint) int64 {
	count, err := s.notifRepo.CountForRecipient(userID)
	if err != nil {
		log.Printf("chat: counting notifications for user %d: %v", userID, err)
		return 0
	}
	return count
}
