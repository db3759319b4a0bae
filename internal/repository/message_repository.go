package repository

import (
	"time"

	"github.com/trangpham2601/group-task-manager/internal/models"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

func (r *MessageRepository) FindByID(id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Sender").First(&message, id).Error
	return &message, err
}

func (r *MessageRepository) FindByClientID(clientID string, senderID uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Sender").
		Where("client_id = ? AND sender_id = ?", clientID, senderID).
		First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// FindGroupMessages returns messages newest-first; cursor is an exclusive
// upper bound on message ID for loading older pages.
func (r *MessageRepository) FindGroupMessages(groupID uint, cursor uint, limit int) ([]models.Message, error) {
	q := r.db.Preload("Sender").Where("group_id = ?", groupID)
	if cursor > 0 {
		q = q.Where("id < ?", cursor)
	}
	var messages []models.Message
	err := q.Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

// CountUnread implements the unread algorithm: messages in the group
// authored by someone else, and, when a read position exists, strictly
// newer than it. A nil since means the user has never read the group.
func (r *MessageRepository) CountUnread(groupID, userID uint, since *time.Time) (int64, error) {
	q := r.db.Model(&models.Message{}).
		Where("group_id = ? AND sender_id <> ?", groupID, userID)
	if since != nil {
		q = q.Where("created_at > ?", *since)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}
