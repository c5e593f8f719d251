package messenger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecentConversationsFirstContact(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	alice := createUser(t, service.db, "alice")
	bob := createUser(t, service.db, "bob")

	conversation, err := service.GetOrCreateConversation(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("first contact: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := service.AppendMessage(ctx, conversation.ID, alice.ID, "hello", ""); err != nil {
		t.Fatalf("append: %v", err)
	}

	summaries, err := service.RecentConversations(ctx, bob.ID, 0)
	if err != nil {
		t.Fatalf("summaries: %v", err)
	}

	if assert.Len(t, summaries, 1) {
		summary := summaries[0]
		assert.Equal(t, conversation.ID, summary.ConversationID)
		assert.Equal(t, "hello", summary.LastMessage)
		assert.Equal(t, alice.ID, summary.LastMessageSenderID)
		assert.EqualValues(t, 1, summary.MissedCount)
		assert.False(t, summary.HasAttachment)
		assert.False(t, summary.IsFileOnly)
		if assert.NotNil(t, summary.OtherParticipant) {
			assert.Equal(t, alice.ID, summary.OtherParticipant.ID)
			assert.Equal(t, "alice", summary.OtherParticipant.Name)
		}
	}
}

func TestRecentConversationsSkipsEmptyAndExcluded(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	alice := createUser(t, service.db, "alice")
	bob := createUser(t, service.db, "bob")
	carol := createUser(t, service.db, "carol")

	// Messages with bob, silence with carol.
	withBob, _ := service.GetOrCreateConversation(ctx, alice.ID, bob.ID)
	service.GetOrCreateConversation(ctx, alice.ID, carol.ID)
	time.Sleep(5 * time.Millisecond)
	if _, err := service.AppendMessage(ctx, withBob.ID, bob.ID, "hey", ""); err != nil {
		t.Fatalf("append: %v", err)
	}

	summaries, err := service.RecentConversations(ctx, alice.ID, 0)
	if err != nil {
		t.Fatalf("summaries: %v", err)
	}
	if assert.Len(t, summaries, 1) {
		assert.Equal(t, withBob.ID, summaries[0].ConversationID)
	}

	summaries, err = service.RecentConversations(ctx, alice.ID, withBob.ID)
	if err != nil {
		t.Fatalf("summaries with exclude: %v", err)
	}
	assert.Empty(t, summaries)
}

func TestRecentConversationsAttachmentFlags(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	alice := createUser(t, service.db, "alice")
	bob := createUser(t, service.db, "bob")
	conversation, _ := service.GetOrCreateConversation(ctx, alice.ID, bob.ID)

	time.Sleep(5 * time.Millisecond)
	if _, err := service.AppendMessage(ctx, conversation.ID, alice.ID, "", "/uploads/abc.png"); err != nil {
		t.Fatalf("append file-only: %v", err)
	}

	summaries, err := service.RecentConversations(ctx, bob.ID, 0)
	if err != nil {
		t.Fatalf("summaries: %v", err)
	}
	if assert.Len(t, summaries, 1) {
		assert.True(t, summaries[0].HasAttachment)
		assert.True(t, summaries[0].IsFileOnly)
	}

	// A caption alongside the attachment keeps HasAttachment but drops
	// IsFileOnly.
	time.Sleep(5 * time.Millisecond)
	if _, err := service.AppendMessage(ctx, conversation.ID, alice.ID, "look", "/uploads/def.png"); err != nil {
		t.Fatalf("append captioned: %v", err)
	}

	summaries, err = service.RecentConversations(ctx, bob.ID, 0)
	if err != nil {
		t.Fatalf("summaries: %v", err)
	}
	if assert.Len(t, summaries, 1) {
		assert.True(t, summaries[0].HasAttachment)
		assert.False(t, summaries[0].IsFileOnly)
	}
}

func TestUnreadCountResetByMarkRead(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	alice := createUser(t, service.db, "alice")
	bob := createUser(t, service.db, "bob")
	conversation, _ := service.GetOrCreateConversation(ctx, alice.ID, bob.ID)

	time.Sleep(5 * time.Millisecond)
	for i := 0; i < 3; i++ {
		if _, err := service.AppendMessage(ctx, conversation.ID, alice.ID, fmt.Sprintf("msg %d", i), ""); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	summaries, err := service.RecentConversations(ctx, bob.ID, 0)
	if err != nil {
		t.Fatalf("summaries: %v", err)
	}
	if assert.Len(t, summaries, 1) {
		assert.EqualValues(t, 3, summaries[0].MissedCount)
	}

	if err := service.MarkRead(ctx, conversation.ID, bob.ID, time.Now()); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	summaries, err = service.RecentConversations(ctx, bob.ID, 0)
	if err != nil {
		t.Fatalf("summaries after read: %v", err)
	}
	if assert.Len(t, summaries, 1) {
		assert.EqualValues(t, 0, summaries[0].MissedCount)
	}
}

func TestUnreadCountIgnoresOwnMessages(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	alice := createUser(t, service.db, "alice")
	bob := createUser(t, service.db, "bob")
	conversation, _ := service.GetOrCreateConversation(ctx, alice.ID, bob.ID)

	time.Sleep(5 * time.Millisecond)
	if _, err := service.AppendMessage(ctx, conversation.ID, alice.ID, "to bob", ""); err != nil {
		t.Fatalf("append: %v", err)
	}

	summaries, err := service.RecentConversations(ctx, alice.ID, 0)
	if err != nil {
		t.Fatalf("summaries: %v", err)
	}
	if assert.Len(t, summaries, 1) {
		assert.EqualValues(t, 0, summaries[0].MissedCount, "own messages are never missed")
	}
}

func TestRecentConversationsOrderAndCap(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	alice := createUser(t, service.db, "alice")

	// Eight counterparts, each with one message; only the six most recent
	// conversations survive the cap, newest first.
	var conversationIDs []uint
	for i := 0; i < 8; i++ {
		other := createUser(t, service.db, fmt.Sprintf("student%d", i))
		conversation, err := service.GetOrCreateConversation(ctx, alice.ID, other.ID)
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		time.Sleep(5 * time.Millisecond)
		if _, err := service.AppendMessage(ctx, conversation.ID, other.ID, fmt.Sprintf("hi %d", i), ""); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		conversationIDs = append(conversationIDs, conversation.ID)
	}

	summaries, err := service.RecentConversations(ctx, alice.ID, 0)
	if err != nil {
		t.Fatalf("summaries: %v", err)
	}

	if assert.Len(t, summaries, 6) {
		// Newest last message first.
		for i := 0; i < len(summaries); i++ {
			assert.Equal(t, conversationIDs[len(conversationIDs)-1-i], summaries[i].ConversationID)
			if i > 0 {
				assert.False(t, summaries[i].LastMessageTimestamp.After(summaries[i-1].LastMessageTimestamp))
			}
		}
	}
}
