package models

import (
	"time"

	"gorm.io/gorm"
)

// Message is a single entry in a group's append-only message log.
// CreatedAt is assigned by the database on insert and is the ordering
// timestamp used for unread counting; the unread/notification core never
// mutates a message once written.
type Message struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `gorm:"index:idx_group_created,priority:2" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// ClientID is a client-generated UUID used to deduplicate resends.
	ClientID string `gorm:"type:varchar(36);uniqueIndex:idx_client_sender;not null" json:"client_id"`

	GroupID  uint `gorm:"not null;index:idx_group_created,priority:1" json:"group_id"`
	SenderID uint `gorm:"not null;uniqueIndex:idx_client_sender;index" json:"sender_id"`

	Sender User `gorm:"foreignKey:SenderID" json:"sender"`

	Content string `gorm:"type:text;not null" json:"content"`
}

type MessageResponse struct {
	ID        uint         `json:"id"`
	ClientID  string       `json:"client_id"`
	GroupID   uint         `json:"group_id"`
	SenderID  uint         `json:"sender_id"`
	Sender    UserResponse `json:"sender"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"created_at"`
}

func (m *Message) ToResponse() MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		ClientID:  m.ClientID,
		GroupID:   m.GroupID,
		SenderID:  m.SenderID,
		Sender:    m.Sender.ToResponse(),
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
