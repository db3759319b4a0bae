package repository

import (
	"github.com/trangpham2601/group-task-manager/internal/models"
	"gorm.io/gorm"
)

type ReadPositionRepository struct {
	db *gorm.DB
}

func NewReadPositionRepository(db *gorm.DB) *ReadPositionRepository {
	return &ReadPositionRepository{db: db}
}

// Upsert records the current server time as the user's last read point.
// Deliberately last-write-wins: a delayed write can regress last_read_at
// and no guard is applied, matching the store's documented contract.
func (r *ReadPositionRepository) Upsert(groupID, userID uint) error {
	return r.db.Exec(`
		INSERT INTO read_positions (group_id, user_id, last_read_at, created_at, updated_at)
		VALUES (?, ?, NOW(), NOW(), NOW())
		ON CONFLICT (group_id, user_id) DO UPDATE
		SET last_read_at = NOW(),
			updated_at = NOW()
	`, groupID, userID).Error
}

func (r *ReadPositionRepository) Get(groupID, userID uint) (*models.ReadPosition, error) {
	var pos models.ReadPosition
	err := r.db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&pos).Error
	if err != nil {
		return nil, err
	}
	return &pos, nil
}

func (r *ReadPositionRepository) DeleteForMember(groupID, userID uint) error {
	return r.db.Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&models.ReadPosition{}).Error
}
