package service

import (
	"sync"
	"time"

	"github.com/trangpham2601/group-task-manager/internal/apperr"
	"github.com/trangpham2601/group-task-manager/internal/models"
)

// In-memory fakes for the repository interfaces, shared by the service
// tests. They model just enough store behavior for the flows under test.

type fakeUserRepo struct {
	users map[uint]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uint]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(user *models.User) error {
	if user.ID == 0 {
		user.ID = uint(len(r.users) + 1)
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByEmail(email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (r *fakeUserRepo) FindByUsername(username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (r *fakeUserRepo) FindByID(id uint) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) SetNotificationsEnabled(userID uint, enabled bool) error {
	u, ok := r.users[userID]
	if !ok {
		return apperr.ErrNotFound
	}
	u.NotificationsEnabled = enabled
	return nil
}

type fakeGroupRepo struct {
	groups  map[uint]*models.Group
	members map[uint][]uint
	touched []uint
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{
		groups:  make(map[uint]*models.Group),
		members: make(map[uint][]uint),
	}
}

func (r *fakeGroupRepo) addGroup(group *models.Group, memberIDs ...uint) {
	r.groups[group.ID] = group
	r.members[group.ID] = memberIDs
	for _, id := range memberIDs {
		group.Members = append(group.Members, models.GroupMember{GroupID: group.ID, UserID: id})
	}
}

func (r *fakeGroupRepo) Create(group *models.Group) error {
	if group.ID == 0 {
		group.ID = uint(len(r.groups) + 1)
	}
	r.groups[group.ID] = group
	return nil
}

func (r *fakeGroupRepo) FindByID(id uint) (*models.Group, error) {
	g, ok := r.groups[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return g, nil
}

func (r *fakeGroupRepo) AddMember(groupID, userID uint, role models.GroupRole) error {
	r.members[groupID] = append(r.members[groupID], userID)
	if g, ok := r.groups[groupID]; ok {
		g.Members = append(g.Members, models.GroupMember{GroupID: groupID, UserID: userID, Role: role})
	}
	return nil
}

func (r *fakeGroupRepo) RemoveMember(groupID, userID uint) error {
	list := r.members[groupID]
	for i, id := range list {
		if id == userID {
			r.members[groupID] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if g, ok := r.groups[groupID]; ok {
		for i, m := range g.Members {
			if m.UserID == userID {
				g.Members = append(g.Members[:i], g.Members[i+1:]...)
				break
			}
		}
	}
	return nil
}

func (r *fakeGroupRepo) GetMembers(groupID uint) ([]models.User, error) {
	out := make([]models.User, 0, len(r.members[groupID]))
	for _, id := range r.members[groupID] {
		out = append(out, models.User{ID: id})
	}
	return out, nil
}

func (r *fakeGroupRepo) GetMemberIDs(groupID uint) ([]uint, error) {
	return r.members[groupID], nil
}

func (r *fakeGroupRepo) IsMember(groupID, userID uint) (bool, error) {
	for _, id := range r.members[groupID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeGroupRepo) GetUserGroups(userID uint) ([]models.Group, error) {
	var out []models.Group
	for groupID, memberIDs := range r.members {
		for _, id := range memberIDs {
			if id == userID {
				out = append(out, *r.groups[groupID])
				break
			}
		}
	}
	return out, nil
}

func (r *fakeGroupRepo) TouchLastMessageAt(groupID uint) error {
	r.touched = append(r.touched, groupID)
	now := time.Now()
	if g, ok := r.groups[groupID]; ok {
		g.LastMessageAt = &now
	}
	return nil
}

type fakeMessageRepo struct {
	messages map[uint]*models.Message
	nextID   uint
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[uint]*models.Message)}
}

func (r *fakeMessageRepo) Create(message *models.Message) error {
	r.nextID++
	message.ID = r.nextID
	message.CreatedAt = time.Now()
	r.messages[message.ID] = message
	return nil
}

func (r *fakeMessageRepo) FindByID(id uint) (*models.Message, error) {
	m, ok := r.messages[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return m, nil
}

func (r *fakeMessageRepo) FindByClientID(clientID string, senderID uint) (*models.Message, error) {
	for _, m := range r.messages {
		if m.ClientID == clientID && m.SenderID == senderID {
			return m, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (r *fakeMessageRepo) FindGroupMessages(groupID uint, cursor uint, limit int) ([]models.Message, error) {
	var out []models.Message
	for _, m := range r.messages {
		if m.GroupID == groupID && (cursor == 0 || m.ID < cursor) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) CountUnread(groupID, userID uint, since *time.Time) (int64, error) {
	var count int64
	for _, m := range r.messages {
		if m.GroupID != groupID || m.SenderID == userID {
			continue
		}
		if since != nil && !m.CreatedAt.After(*since) {
			continue
		}
		count++
	}
	return count, nil
}

type fakeReadRepo struct {
	positions map[[2]uint]*models.ReadPosition
	upserts   int
}

func newFakeReadRepo() *fakeReadRepo {
	return &fakeReadRepo{positions: make(map[[2]uint]*models.ReadPosition)}
}

func (r *fakeReadRepo) Upsert(groupID, userID uint) error {
	r.upserts++
	r.positions[[2]uint{groupID, userID}] = &models.ReadPosition{
		GroupID:    groupID,
		UserID:     userID,
		LastReadAt: time.Now(),
	}
	return nil
}

func (r *fakeReadRepo) Get(groupID, userID uint) (*models.ReadPosition, error) {
	pos, ok := r.positions[[2]uint{groupID, userID}]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return pos, nil
}

func (r *fakeReadRepo) DeleteForMember(groupID, userID uint) error {
	delete(r.positions, [2]uint{groupID, userID})
	return nil
}

type fakeNotifRepo struct {
	mu      sync.Mutex
	records map[uint]*models.NotificationRecord
	nextID  uint
}

func newFakeNotifRepo() *fakeNotifRepo {
	return &fakeNotifRepo{records: make(map[uint]*models.NotificationRecord)}
}

func (r *fakeNotifRepo) Create(record *models.NotificationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	record.ID = r.nextID
	r.records[record.ID] = record
	return nil
}

func (r *fakeNotifRepo) ListForRecipient(recipientID uint, limit int) ([]models.NotificationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.NotificationRecord
	for _, record := range r.records {
		if record.RecipientID == recipientID {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (r *fakeNotifRepo) Delete(recipientID, recordID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record, ok := r.records[recordID]; ok && record.RecipientID == recipientID {
		delete(r.records, recordID)
	}
	return nil
}

func (r *fakeNotifRepo) DeleteForGroup(recipientID, groupID uint, notificationType string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var flushed int64
	for id, record := range r.records {
		if record.RecipientID == recipientID && record.GroupID == groupID && record.Type == notificationType {
			delete(r.records, id)
			flushed++
		}
	}
	return flushed, nil
}

func (r *fakeNotifRepo) CountForRecipient(recipientID uint) (int64, error) {
	records, err := r.ListForRecipient(recipientID, 0)
	return int64(len(records)), err
}
