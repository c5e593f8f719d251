package messenger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"classroom-messenger/model"
)

// AppendMessage persists a new message and fans it out to the conversation
// room. A message must carry content, an attachment locator, or both;
// otherwise ErrInvalidMessage and nothing is written. The attachment locator
// is stored verbatim, size/type policy belongs to the upload boundary.
func (s *Service) AppendMessage(ctx context.Context, conversationID, senderID uint, content, attachmentURL string) (*model.Message, error) {
	if content == "" && attachmentURL == "" {
		return nil, ErrInvalidMessage
	}

	message := &model.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		AttachmentURL:  attachmentURL,
		DisplayedAt:    time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, fmt.Errorf("messenger: append message: %w", err)
	}

	if err := s.db.WithContext(ctx).First(&message.Sender, senderID).Error; err != nil {
		s.log.Printf("sender %d not loaded for broadcast: %v", senderID, err)
	}

	s.broadcastCreated(message)
	return message, nil
}

// EditMessage replaces the content of an existing message, marks it edited
// and bumps its display timestamp. CreatedAt is untouched, so the message
// keeps its position in the conversation order.
func (s *Service) EditMessage(ctx context.Context, messageID uint, newContent string) (*model.Message, error) {
	message := new(model.Message)
	if err := s.db.WithContext(ctx).First(message, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("messenger: load message: %w", err)
	}

	message.Content = newContent
	message.Edited = true
	message.DisplayedAt = time.Now()
	err := s.db.WithContext(ctx).
		Model(message).
		Select("content", "edited", "displayed_at").
		Updates(message).Error
	if err != nil {
		return nil, fmt.Errorf("messenger: edit message: %w", err)
	}

	s.broadcastEdited(message)
	return message, nil
}

// DeleteMessage removes a message permanently. No tombstone is kept.
func (s *Service) DeleteMessage(ctx context.Context, messageID uint) error {
	message := new(model.Message)
	if err := s.db.WithContext(ctx).First(message, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("messenger: load message: %w", err)
	}

	if err := s.db.WithContext(ctx).Unscoped().Delete(message).Error; err != nil {
		return fmt.Errorf("messenger: delete message: %w", err)
	}

	s.broadcastDeleted(message.ConversationID, message.ID)
	return nil
}

// ConversationMessages returns a conversation's messages in creation order,
// same-instant writes breaking by insertion id.
func (s *Service) ConversationMessages(ctx context.Context, conversationID uint) ([]model.Message, error) {
	var messages []model.Message
	err := s.db.WithContext(ctx).
		Where(&model.Message{ConversationID: conversationID}).
		Order("created_at asc, id asc").
		Preload("Sender").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("messenger: load messages: %w", err)
	}
	return messages, nil
}
