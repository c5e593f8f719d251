package messenger

import (
	"fmt"
	"time"

	"classroom-messenger/model"
)

// Publisher is the live-transport capability the service fans out through.
// Emit targets one room, Broadcast reaches every connected session. Both are
// best-effort: a failed delivery never rolls back the mutation it follows.
type Publisher interface {
	Emit(room string, event string, message any) error
	Broadcast(event string, message any) error
}

// Socket event names for the message lifecycle.
const (
	EventMessageCreated          = "message_created"
	EventMessageEdited           = "message_edited"
	EventMessageDeleted          = "message_deleted"
	EventConversationListChanged = "conversation_list_changed"
)

// ConversationTopic names the broadcast room for a conversation.
func ConversationTopic(conversationID uint) string {
	return fmt.Sprintf("conversation_%d", conversationID)
}

type MessageCreatedEvent struct {
	ID             uint      `json:"id"`
	ConversationID uint      `json:"conversation_id"`
	SenderID       uint      `json:"sender_id"`
	SenderName     string    `json:"sender_name"`
	Content        string    `json:"content"`
	AttachmentURL  string    `json:"attachment_url,omitempty"`
	DisplayedAt    time.Time `json:"displayed_at"`
}

type MessageEditedEvent struct {
	ID          uint      `json:"id"`
	Content     string    `json:"content"`
	DisplayedAt time.Time `json:"displayed_at"`
}

type MessageDeletedEvent struct {
	ID uint `json:"id"`
}

// broadcastCreated fans the new message out to the conversation room and
// nudges every connected session to refresh its conversation list.
func (s *Service) broadcastCreated(message *model.Message) {
	event := MessageCreatedEvent{
		ID:             message.ID,
		ConversationID: message.ConversationID,
		SenderID:       message.SenderID,
		SenderName:     message.Sender.DisplayName,
		Content:        message.Content,
		AttachmentURL:  message.AttachmentURL,
		DisplayedAt:    message.DisplayedAt,
	}
	if err := s.pub.Emit(ConversationTopic(message.ConversationID), EventMessageCreated, event); err != nil {
		s.log.Printf("dropped %s broadcast for message %d: %v", EventMessageCreated, message.ID, err)
	}
	if err := s.pub.Broadcast(EventConversationListChanged, nil); err != nil {
		s.log.Printf("dropped %s broadcast: %v", EventConversationListChanged, err)
	}
}

func (s *Service) broadcastEdited(message *model.Message) {
	event := MessageEditedEvent{
		ID:          message.ID,
		Content:     message.Content,
		DisplayedAt: message.DisplayedAt,
	}
	if err := s.pub.Emit(ConversationTopic(message.ConversationID), EventMessageEdited, event); err != nil {
		s.log.Printf("dropped %s broadcast for message %d: %v", EventMessageEdited, message.ID, err)
	}
}

func (s *Service) broadcastDeleted(conversationID, messageID uint) {
	if err := s.pub.Emit(ConversationTopic(conversationID), EventMessageDeleted, MessageDeletedEvent{ID: messageID}); err != nil {
		s.log.Printf("dropped %s broadcast for message %d: %v", EventMessageDeleted, messageID, err)
	}
}
