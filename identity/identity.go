package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"classroom-messenger/model"
)

// Resolver maps federated identities onto local user rows.
type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// ResolveOrProvision returns the local user bound to externalID, creating it
// on first sight. The binding is idempotent: the same externalID always maps
// to the same user, including under concurrent first logins, because the
// external id column carries a unique index.
func (r *Resolver) ResolveOrProvision(ctx context.Context, externalID, email, displayName string) (*model.User, error) {
	if externalID == "" {
		return nil, errors.New("identity: empty external id")
	}

	user := new(model.User)
	err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(user).Error
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("identity: look up external id: %w", err)
	}

	// Federated accounts never sign in with a password; store an unguessable
	// placeholder so the column constraint holds.
	placeholder := make([]byte, 24)
	if _, err := rand.Read(placeholder); err != nil {
		return nil, fmt.Errorf("identity: generate placeholder: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(placeholder)), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("identity: hash placeholder: %w", err)
	}

	user = &model.User{
		Username:    usernameFor(email, externalID),
		Email:       email,
		DisplayName: displayName,
		Password:    string(hash),
		Role:        "user",
		UserType:    "student",
		ExternalID:  &externalID,
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		// Lost a concurrent first login; the unique index kept one row.
		winner := new(model.User)
		if lookupErr := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(winner).Error; lookupErr == nil {
			return winner, nil
		}
		return nil, fmt.Errorf("identity: provision user: %w", err)
	}
	return user, nil
}

func usernameFor(email, externalID string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return externalID
}
