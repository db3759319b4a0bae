package notify

import (
	"errors"
	"sync"
	"testing"

	"github.com/trangpham2601/group-task-manager/internal/apperr"
	"github.com/trangpham2601/group-task-manager/internal/events"
	"github.com/trangpham2601/group-task-manager/internal/models"
)

// mockGroupRepo implements repository.GroupRepositoryInterface.
type mockGroupRepo struct {
	group   *models.Group
	findErr error
}

func (m *mockGroupRepo) Create(group *models.Group) error { return nil }
func (m *mockGroupRepo) FindByID(id uint) (*models.Group, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.group == nil {
		return nil, apperr.ErrNotFound
	}
	return m.group, nil
}
func (m *mockGroupRepo) AddMember(groupID, userID uint, role models.GroupRole) error { return nil }
func (m *mockGroupRepo) RemoveMember(groupID, userID uint) error                     { return nil }
func (m *mockGroupRepo) GetMembers(groupID uint) ([]models.User, error)              { return nil, nil }
func (m *mockGroupRepo) GetMemberIDs(groupID uint) ([]uint, error)                   { return nil, nil }
func (m *mockGroupRepo) IsMember(groupID, userID uint) (bool, error)                 { return false, nil }
func (m *mockGroupRepo) GetUserGroups(userID uint) ([]models.Group, error)           { return nil, nil }
func (m *mockGroupRepo) TouchLastMessageAt(groupID uint) error                       { return nil }

// mockNotifRepo implements repository.NotificationRepositoryInterface.
// The presenter calls it from its own goroutine, so all state is behind
// a mutex.
type mockNotifRepo struct {
	mu        sync.Mutex
	created   []*models.NotificationRecord
	deleted   []uint
	createErr map[uint]error // keyed by recipient
	listErr   error
	deleteErr error
	nextID    uint
}

func (m *mockNotifRepo) Create(record *models.NotificationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.createErr[record.RecipientID]; err != nil {
		return err
	}
	m.nextID++
	record.ID = m.nextID
	m.created = append(m.created, record)
	return nil
}

func (m *mockNotifRepo) ListForRecipient(recipientID uint, limit int) ([]models.NotificationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.NotificationRecord
	for _, record := range m.created {
		if record.RecipientID == recipientID && !m.isDeletedLocked(record.ID) {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (m *mockNotifRepo) Delete(recipientID, recordID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, recordID)
	return nil
}

func (m *mockNotifRepo) DeleteForGroup(recipientID, groupID uint, notificationType string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	var flushed int64
	for _, record := range m.created {
		if record.RecipientID == recipientID && record.GroupID == groupID &&
			record.Type == notificationType && !m.isDeletedLocked(record.ID) {
			m.deleted = append(m.deleted, record.ID)
			flushed++
		}
	}
	return flushed, nil
}

func (m *mockNotifRepo) CountForRecipient(recipientID uint) (int64, error) {
	records, err := m.ListForRecipient(recipientID, 0)
	return int64(len(records)), err
}

func (m *mockNotifRepo) isDeletedLocked(recordID uint) bool {
	for _, id := range m.deleted {
		if id == recordID {
			return true
		}
	}
	return false
}

func (m *mockNotifRepo) deletedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.deleted)
}

func (m *mockNotifRepo) createdRecords() []*models.NotificationRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.NotificationRecord, len(m.created))
	copy(out, m.created)
	return out
}

func threeMemberGroup() *models.Group {
	return &models.Group{
		ID:   1,
		Name: "project alpha",
		Members: []models.GroupMember{
			{GroupID: 1, UserID: 10},
			{GroupID: 1, UserID: 20},
			{GroupID: 1, UserID: 30},
		},
	}
}

func TestFanoutSkipsSender(t *testing.T) {
	notifRepo := &mockNotifRepo{}
	fanout := NewFanout(&mockGroupRepo{group: threeMemberGroup()}, notifRepo, events.NewMemoryBus())

	fanout.OnMessageSent(1, 10, "alice", "hello")

	if len(notifRepo.created) != 2 {
		t.Fatalf("created %d records, want 2", len(notifRepo.created))
	}
	for _, record := range notifRepo.created {
		if record.RecipientID == 10 {
			t.Error("sender received their own notification record")
		}
		if record.Type != models.NotificationTypeChatMessage {
			t.Errorf("record type = %q, want %q", record.Type, models.NotificationTypeChatMessage)
		}
		if record.GroupName != "project alpha" || record.SenderName != "alice" || record.Message != "hello" {
			t.Errorf("record content not denormalized: %+v", record)
		}
	}
}

func TestFanoutMissingGroupCreatesNothing(t *testing.T) {
	notifRepo := &mockNotifRepo{}
	fanout := NewFanout(&mockGroupRepo{}, notifRepo, events.NewMemoryBus())

	fanout.OnMessageSent(99, 10, "alice", "hello")

	if len(notifRepo.created) != 0 {
		t.Errorf("created %d records for a missing group, want 0", len(notifRepo.created))
	}
}

func TestFanoutContinuesPastFailedRecipient(t *testing.T) {
	notifRepo := &mockNotifRepo{
		createErr: map[uint]error{20: errors.New("connection refused")},
	}
	fanout := NewFanout(&mockGroupRepo{group: threeMemberGroup()}, notifRepo, events.NewMemoryBus())

	fanout.OnMessageSent(1, 10, "alice", "hello")

	if len(notifRepo.created) != 1 {
		t.Fatalf("created %d records, want 1", len(notifRepo.created))
	}
	if notifRepo.created[0].RecipientID != 30 {
		t.Errorf("surviving record went to user %d, want 30", notifRepo.created[0].RecipientID)
	}
}

func TestFanoutNilBus(t *testing.T) {
	notifRepo := &mockNotifRepo{}
	fanout := NewFanout(&mockGroupRepo{group: threeMemberGroup()}, notifRepo, nil)

	fanout.OnMessageSent(1, 10, "alice", "hello")

	if len(notifRepo.created) != 2 {
		t.Errorf("created %d records without a bus, want 2", len(notifRepo.created))
	}
}
