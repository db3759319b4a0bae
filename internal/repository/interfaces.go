package repository

import (
	"time"

	"github.com/trangpham2601/group-task-manager/internal/models"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	FindByEmail(email string) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	FindByID(id uint) (*models.User, error)
	SetNotificationsEnabled(userID uint, enabled bool) error
}

// MessageRepositoryInterface defines the contract for the append-only
// group message log
type MessageRepositoryInterface interface {
	Create(message *models.Message) error
	FindByID(id uint) (*models.Message, error)
	FindByClientID(clientID string, senderID uint) (*models.Message, error)
	FindGroupMessages(groupID uint, cursor uint, limit int) ([]models.Message, error)
	CountUnread(groupID, userID uint, since *time.Time) (int64, error)
}

// GroupRepositoryInterface defines the contract for group repository operations
type GroupRepositoryInterface interface {
	Create(group *models.Group) error
	FindByID(id uint) (*models.Group, error)
	AddMember(groupID, userID uint, role models.GroupRole) error
	RemoveMember(groupID, userID uint) error
	GetMembers(groupID uint) ([]models.User, error)
	GetMemberIDs(groupID uint) ([]uint, error)
	IsMember(groupID, userID uint) (bool, error)
	GetUserGroups(userID uint) ([]models.Group, error)
	TouchLastMessageAt(groupID uint) error
}

// ReadPositionRepositoryInterface defines the contract for per-(group,user)
// read markers. Upsert is unconditional last-write-wins on server time.
type ReadPositionRepositoryInterface interface {
	Upsert(groupID, userID uint) error
	Get(groupID, userID uint) (*models.ReadPosition, error)
	DeleteForMember(groupID, userID uint) error
}

// NotificationRepositoryInterface defines the contract for per-recipient
// pending notification records
type NotificationRepositoryInterface interface {
	Create(record *models.NotificationRecord) error
	ListForRecipient(recipientID uint, limit int) ([]models.NotificationRecord, error)
	Delete(recipientID, recordID uint) error
	DeleteForGroup(recipientID, groupID uint, notificationType string) (int64, error)
	CountForRecipient(recipientID uint) (int64, error)
}
