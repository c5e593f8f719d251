package messenger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendBroadcastsToTopicAndList(t *testing.T) {
	service, pub := newTestService(t)
	ctx := context.Background()

	alice := createUser(t, service.db, "alice")
	bob := createUser(t, service.db, "bob")
	conversation, _ := service.GetOrCreateConversation(ctx, alice.ID, bob.ID)

	message, err := service.AppendMessage(ctx, conversation.ID, alice.ID, "hello", "")
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	if assert.Len(t, pub.emits, 1) {
		emit := pub.emits[0]
		assert.Equal(t, ConversationTopic(conversation.ID), emit.room)
		assert.Equal(t, EventMessageCreated, emit.event)

		event := emit.data.(MessageCreatedEvent)
		assert.Equal(t, message.ID, event.ID)
		assert.Equal(t, alice.ID, event.SenderID)
		assert.Equal(t, "alice", event.SenderName)
		assert.Equal(t, "hello", event.Content)
	}

	assert.Equal(t, []string{EventConversationListChanged}, pub.broadcasts)
}

func TestEditAndDeleteBroadcastTopicScoped(t *testing.T) {
	service, pub := newTestService(t)
	ctx := context.Background()

	alice := createUser(t, service.db, "alice")
	bob := createUser(t, service.db, "bob")
	conversation, _ := service.GetOrCreateConversation(ctx, alice.ID, bob.ID)

	message, err := service.AppendMessage(ctx, conversation.ID, alice.ID, "helo", "")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	pub.emits = nil
	pub.broadcasts = nil

	if _, err := service.EditMessage(ctx, message.ID, "hello"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := service.DeleteMessage(ctx, message.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if assert.Len(t, pub.emits, 2) {
		assert.Equal(t, EventMessageEdited, pub.emits[0].event)
		assert.Equal(t, ConversationTopic(conversation.ID), pub.emits[0].room)
		edited := pub.emits[0].data.(MessageEditedEvent)
		assert.Equal(t, "hello", edited.Content)

		assert.Equal(t, EventMessageDeleted, pub.emits[1].event)
		assert.Equal(t, ConversationTopic(conversation.ID), pub.emits[1].room)
		deleted := pub.emits[1].data.(MessageDeletedEvent)
		assert.Equal(t, message.ID, deleted.ID)
	}

	// Edits and deletes never trigger the global list refresh.
	assert.Empty(t, pub.broadcasts)
}

func TestBroadcastFailureDoesNotFailMutation(t *testing.T) {
	service, pub := newTestService(t)
	ctx := context.Background()

	alice := createUser(t, service.db, "alice")
	bob := createUser(t, service.db, "bob")
	conversation, _ := service.GetOrCreateConversation(ctx, alice.ID, bob.ID)

	pub.fail = true

	message, err := service.AppendMessage(ctx, conversation.ID, alice.ID, "hello", "")
	assert.NoError(t, err, "mutation committed, delivery failure stays local")
	assert.NotZero(t, message.ID)

	messages, err := service.ConversationMessages(ctx, conversation.ID)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	assert.Len(t, messages, 1)

	_, err = service.EditMessage(ctx, message.ID, "still hello")
	assert.NoError(t, err)
	assert.NoError(t, service.DeleteMessage(ctx, message.ID))
}
