package messenger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"classroom-messenger/model"
)

// recentLimit caps the summary list to what the chat window renders.
const recentLimit = 6

type Counterpart struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ConversationSummary is one row of the recent-conversations list.
type ConversationSummary struct {
	ConversationID       uint         `json:"conversationId"`
	LastMessage          string       `json:"lastMessage"`
	LastMessageTimestamp time.Time    `json:"lastMessageTimestamp"`
	LastMessageSenderID  uint         `json:"lastMessageSenderId"`
	HasAttachment        bool         `json:"hasAttachment"`
	IsFileOnly           bool         `json:"isFileOnly"`
	MissedCount          int64        `json:"missedCount"`
	OtherParticipant     *Counterpart `json:"otherParticipant"`
}

// RecentConversations builds the caller's conversation list: every
// conversation they participate in that holds at least one message, newest
// last message first, capped at recentLimit. excludeID skips the
// conversation the caller is already viewing; pass 0 to skip none.
//
// The missed count is recomputed from the caller's watermark on every call:
// messages newer than LastRead that the caller did not send.
func (s *Service) RecentConversations(ctx context.Context, userID uint, excludeID uint) ([]ConversationSummary, error) {
	var memberships []model.ConversationParticipant
	err := s.db.WithContext(ctx).
		Where(&model.ConversationParticipant{UserID: userID}).
		Find(&memberships).Error
	if err != nil {
		return nil, fmt.Errorf("messenger: load memberships: %w", err)
	}

	summaries := []ConversationSummary{}
	for _, membership := range memberships {
		if membership.ConversationID == excludeID {
			continue
		}

		last := new(model.Message)
		err := s.db.WithContext(ctx).
			Where(&model.Message{ConversationID: membership.ConversationID}).
			Order("created_at desc, id desc").
			First(last).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Conversation exists but nobody said anything yet.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("messenger: load last message: %w", err)
		}

		summary := ConversationSummary{
			ConversationID:       membership.ConversationID,
			LastMessage:          last.Content,
			LastMessageTimestamp: last.CreatedAt,
			LastMessageSenderID:  last.SenderID,
			HasAttachment:        last.AttachmentURL != "",
			IsFileOnly:           last.AttachmentURL != "" && last.Content == "",
		}

		other := new(model.ConversationParticipant)
		err = s.db.WithContext(ctx).
			Where("conversation_id = ? AND user_id <> ?", membership.ConversationID, userID).
			Preload("User").
			First(other).Error
		if err == nil {
			summary.OtherParticipant = &Counterpart{ID: other.UserID, Name: other.User.DisplayName}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("messenger: load counterpart: %w", err)
		}
		// A missing counterpart leaves the field null rather than failing
		// the whole list.

		err = s.db.WithContext(ctx).
			Model(&model.Message{}).
			Where("conversation_id = ? AND sender_id <> ? AND created_at > ?",
				membership.ConversationID, userID, membership.LastRead).
			Count(&summary.MissedCount).Error
		if err != nil {
			return nil, fmt.Errorf("messenger: count missed: %w", err)
		}

		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastMessageTimestamp.After(summaries[j].LastMessageTimestamp)
	})
	if len(summaries) > recentLimit {
		summaries = summaries[:recentLimit]
	}
	return summaries, nil
}
