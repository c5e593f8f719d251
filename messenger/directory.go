package messenger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"classroom-messenger/model"
)

// GetOrCreateConversation returns the unique conversation for the unordered
// pair {userA, userB}, creating it with both participants on first contact.
// (A,B) and (B,A) resolve to the same row through the canonical pair key.
func (s *Service) GetOrCreateConversation(ctx context.Context, userA, userB uint) (*model.Conversation, error) {
	if userA == userB {
		return nil, ErrSameUser
	}
	key := model.PairKeyFor(userA, userB)

	conversation := new(model.Conversation)
	err := s.db.WithContext(ctx).
		Where(&model.Conversation{PairKey: key}).
		Preload("Participants").
		First(conversation).Error
	if err == nil {
		return conversation, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("messenger: look up conversation: %w", err)
	}

	now := time.Now()
	conversation = &model.Conversation{
		PairKey: key,
		Participants: []model.ConversationParticipant{
			{UserID: userA, LastRead: now},
			{UserID: userB, LastRead: now},
		},
	}
	if err := s.db.WithContext(ctx).Create(conversation).Error; err != nil {
		// A concurrent first contact may have won the pair key index race;
		// both callers converge on the surviving row.
		winner := new(model.Conversation)
		if lookupErr := s.db.WithContext(ctx).
			Where(&model.Conversation{PairKey: key}).
			Preload("Participants").
			First(winner).Error; lookupErr == nil {
			return winner, nil
		}
		return nil, fmt.Errorf("messenger: create conversation: %w", err)
	}
	return conversation, nil
}

// MarkRead moves the caller's read watermark to at. Stale calls are a no-op:
// the watermark never moves backward.
func (s *Service) MarkRead(ctx context.Context, conversationID, userID uint, at time.Time) error {
	err := s.db.WithContext(ctx).
		Model(&model.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ? AND last_read < ?", conversationID, userID, at).
		Update("last_read", at).Error
	if err != nil {
		return fmt.Errorf("messenger: mark read: %w", err)
	}
	return nil
}

// IsParticipant reports whether the user belongs to the conversation. Socket
// handlers gate room joins on it.
func (s *Service) IsParticipant(ctx context.Context, conversationID, userID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.ConversationParticipant{}).
		Where(&model.ConversationParticipant{ConversationID: conversationID, UserID: userID}).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("messenger: check participant: %w", err)
	}
	return count > 0, nil
}
