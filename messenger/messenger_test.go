package messenger

import (
	"errors"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"classroom-messenger/model"
)

type fakeEmit struct {
	room  string
	event string
	data  any
}

// fakePublisher records fan-out calls; flipping fail simulates a transport
// outage.
type fakePublisher struct {
	emits      []fakeEmit
	broadcasts []string
	fail       bool
}

func (p *fakePublisher) Emit(room string, event string, message any) error {
	if p.fail {
		return errors.New("transport down")
	}
	p.emits = append(p.emits, fakeEmit{room: room, event: event, data: message})
	return nil
}

func (p *fakePublisher) Broadcast(event string, _ any) error {
	if p.fail {
		return errors.New("transport down")
	}
	p.broadcasts = append(p.broadcasts, event)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakePublisher) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&model.User{},
		&model.Conversation{},
		&model.ConversationParticipant{},
		&model.Message{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pub := &fakePublisher{}
	return NewService(db, pub), pub
}

func createUser(t *testing.T, db *gorm.DB, name string) *model.User {
	t.Helper()

	user := &model.User{
		Username:    name,
		Email:       fmt.Sprintf("%s@conestogac.on.ca", name),
		DisplayName: name,
		Password:    "x",
		Role:        "user",
		UserType:    "student",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return user
}
