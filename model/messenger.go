package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Conversation is the two-party message thread. PairKey is the canonical
// "min_max" encoding of the unordered participant pair; its unique index is
// what guarantees at most one conversation per pair, concurrent first
// contacts included.
type Conversation struct {
	gorm.Model
	PairKey      string                    `gorm:"uniqueIndex;not null" json:"pair_key"`
	Participants []ConversationParticipant `gorm:"constraint:OnDelete:CASCADE" json:"participants"`
	Messages     []Message                 `gorm:"constraint:OnDelete:CASCADE" json:"messages"`
}

// PairKeyFor canonicalizes an unordered user pair.
func PairKeyFor(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d_%d", a, b)
}

// ConversationParticipant carries a user's membership in a conversation and
// their read watermark. LastRead only moves forward.
type ConversationParticipant struct {
	gorm.Model
	ConversationID uint      `gorm:"not null;uniqueIndex:idx_conversation_user" json:"conversation_id"`
	UserID         uint      `gorm:"not null;uniqueIndex:idx_conversation_user" json:"user_id"`
	User           User      `gorm:"foreignKey:UserID" json:"user"`
	LastRead       time.Time `gorm:"not null" json:"last_read"`
}

// Message belongs to exactly one conversation. CreatedAt is the immutable
// ordering timestamp; DisplayedAt is bumped on edit.
type Message struct {
	gorm.Model
	ConversationID uint      `gorm:"not null;index" json:"conversation_id"`
	SenderID       uint      `gorm:"not null" json:"sender_id"`
	Sender         User      `gorm:"foreignKey:SenderID" json:"sender"`
	Content        string    `json:"content"`
	DisplayedAt    time.Time `gorm:"not null" json:"displayed_at"`
	Edited         bool      `gorm:"not null;default:false" json:"edited"`
	AttachmentURL  string    `json:"attachment_url"`
}

// MessengerFile holds attachment bytes for the database storage backend,
// base64 encoded.
type MessengerFile struct {
	gorm.Model
	Name string `gorm:"not null" json:"name"`
	Data string `gorm:"not null" json:"data"`
}
