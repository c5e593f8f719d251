package identity

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"classroom-messenger/model"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewResolver(db)
}

func TestResolveOrProvisionCreatesOnFirstSight(t *testing.T) {
	resolver := newTestResolver(t)

	user, err := resolver.ResolveOrProvision(context.Background(), "oidc|abc123", "abrown9034@conestogac.on.ca", "Austin Brown")
	if err != nil {
		t.Fatalf("provision: %v", err)
	}

	assert.NotZero(t, user.ID)
	assert.Equal(t, "abrown9034", user.Username)
	assert.Equal(t, "Austin Brown", user.DisplayName)
	assert.Equal(t, "user", user.Role)
	assert.Equal(t, "student", user.UserType)
	if assert.NotNil(t, user.ExternalID) {
		assert.Equal(t, "oidc|abc123", *user.ExternalID)
	}
	assert.NotEmpty(t, user.Password, "placeholder hash must be set")
}

func TestResolveOrProvisionIdempotent(t *testing.T) {
	resolver := newTestResolver(t)
	ctx := context.Background()

	first, err := resolver.ResolveOrProvision(ctx, "oidc|abc123", "abrown9034@conestogac.on.ca", "Austin Brown")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}

	// Later logins with drifted profile data still bind to the same user.
	second, err := resolver.ResolveOrProvision(ctx, "oidc|abc123", "other@conestogac.on.ca", "A. Brown")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Austin Brown", second.DisplayName)

	var count int64
	resolver.db.Model(&model.User{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestResolveOrProvisionDistinctIdentities(t *testing.T) {
	resolver := newTestResolver(t)
	ctx := context.Background()

	first, err := resolver.ResolveOrProvision(ctx, "oidc|abc123", "abrown9034@conestogac.on.ca", "Austin Brown")
	if err != nil {
		t.Fatalf("first identity: %v", err)
	}
	second, err := resolver.ResolveOrProvision(ctx, "oidc|def456", "koeun8402@conestogac.on.ca", "Khemara Oeun")
	if err != nil {
		t.Fatalf("second identity: %v", err)
	}

	assert.NotEqual(t, first.ID, second.ID)
}

func TestResolveOrProvisionEmptyExternalID(t *testing.T) {
	resolver := newTestResolver(t)

	_, err := resolver.ResolveOrProvision(context.Background(), "", "x@y.z", "X")
	assert.Error(t, err)
}
