package messenger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"classroom-messenger/model"
)

func TestGetOrCreateConversationIdempotent(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	alice := createUser(t, service.db, "alice")
	bob := createUser(t, service.db, "bob")

	first, err := service.GetOrCreateConversation(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("first contact: %v", err)
	}
	second, err := service.GetOrCreateConversation(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("second contact: %v", err)
	}

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, first.Participants, 2)

	var total int64
	service.db.Model(&model.Conversation{}).Count(&total)
	assert.EqualValues(t, 1, total)
}

func TestGetOrCreateConversationSymmetric(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	alice := createUser(t, service.db, "alice")
	bob := createUser(t, service.db, "bob")

	forward, err := service.GetOrCreateConversation(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	reverse, err := service.GetOrCreateConversation(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("reverse: %v", err)
	}

	assert.Equal(t, forward.ID, reverse.ID)
}

func TestGetOrCreateConversationSameUser(t *testing.T) {
	service, _ := newTestService(t)

	alice := createUser(t, service.db, "alice")

	_, err := service.GetOrCreateConversation(context.Background(), alice.ID, alice.ID)
	assert.ErrorIs(t, err, ErrSameUser)
}

func TestGetOrCreateConversationLostRace(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	alice := createUser(t, service.db, "alice")
	bob := createUser(t, service.db, "bob")

	// Plant a row as if another request won the creation race; the unique
	// pair key makes our Create fail and fall back to the winner.
	winner := &model.Conversation{
		PairKey: model.PairKeyFor(alice.ID, bob.ID),
		Participants: []model.ConversationParticipant{
			{UserID: alice.ID, LastRead: time.Now()},
			{UserID: bob.ID, LastRead: time.Now()},
		},
	}
	if err := service.db.Create(winner).Error; err != nil {
		t.Fatalf("plant winner: %v", err)
	}

	got, err := service.GetOrCreateConversation(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("converge on winner: %v", err)
	}
	assert.Equal(t, winner.ID, got.ID)
}

func TestMarkReadMovesForwardOnly(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	alice := createUser(t, service.db, "alice")
	bob := createUser(t, service.db, "bob")

	conversation, err := service.GetOrCreateConversation(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	forward := time.Now().Add(time.Hour)
	if err := service.MarkRead(ctx, conversation.ID, alice.ID, forward); err != nil {
		t.Fatalf("mark read forward: %v", err)
	}

	participant := new(model.ConversationParticipant)
	service.db.
		Where("conversation_id = ? AND user_id = ?", conversation.ID, alice.ID).
		First(participant)
	assert.WithinDuration(t, forward, participant.LastRead, time.Second)

	// A stale client reporting an old watermark must not rewind it.
	stale := time.Now().Add(-time.Hour)
	if err := service.MarkRead(ctx, conversation.ID, alice.ID, stale); err != nil {
		t.Fatalf("mark read stale: %v", err)
	}

	service.db.
		Where("conversation_id = ? AND user_id = ?", conversation.ID, alice.ID).
		First(participant)
	assert.WithinDuration(t, forward, participant.LastRead, time.Second)
}

func TestIsParticipant(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	alice := createUser(t, service.db, "alice")
	bob := createUser(t, service.db, "bob")
	eve := createUser(t, service.db, "eve")

	conversation, err := service.GetOrCreateConversation(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	member, err := service.IsParticipant(ctx, conversation.ID, alice.ID)
	if err != nil {
		t.Fatalf("check alice: %v", err)
	}
	assert.True(t, member)

	outsider, err := service.IsParticipant(ctx, conversation.ID, eve.ID)
	if err != nil {
		t.Fatalf("check eve: %v", err)
	}
	assert.False(t, outsider)
}
