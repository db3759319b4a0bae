package repository

import (
	"github.com/trangpham2601/group-task-manager/internal/models"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(record *models.NotificationRecord) error {
	if record.Type == "" {
		record.Type = models.NotificationTypeChatMessage
	}
	return r.db.Create(record).Error
}

// ListForRecipient returns pending records oldest-first so catch-up
// presentation preserves arrival order.
func (r *NotificationRepository) ListForRecipient(recipientID uint, limit int) ([]models.NotificationRecord, error) {
	var records []models.NotificationRecord
	err := r.db.Where("recipient_id = ?", recipientID).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// Delete removes a single record. Scoped to the recipient so one user can
// never acknowledge another user's records. Deleting an already-deleted
// record is a no-op, which keeps acknowledge idempotent.
func (r *NotificationRepository) Delete(recipientID, recordID uint) error {
	return r.db.Where("recipient_id = ? AND id = ?", recipientID, recordID).
		Delete(&models.NotificationRecord{}).Error
}

// DeleteForGroup bulk-flushes every record of the given type the recipient
// has for a group. Invoked after a successful read mark so records whose
// display window has passed do not accumulate.
func (r *NotificationRepository) DeleteForGroup(recipientID, groupID uint, notificationType string) (int64, error) {
	res := r.db.Where("recipient_id = ? AND group_id = ? AND type = ?", recipientID, groupID, notificationType).
		Delete(&models.NotificationRecord{})
	return res.RowsAffected, res.Error
}

func (r *NotificationRepository) CountForRecipient(recipientID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.NotificationRecord{}).
		Where("recipient_id = ?", recipientID).
		Count(&count).Error
	return count, err
}
