package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"classroom-messenger/model"
)

func TestDatabaseUpload(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.MessengerFile{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store := NewDatabase(db)
	locator, err := store.Upload(context.Background(), strings.NewReader("payload"), "notes.pdf")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	assert.True(t, strings.HasPrefix(locator, "/v1/messenger/file/"))

	file := new(model.MessengerFile)
	if err := db.First(file).Error; err != nil {
		t.Fatalf("read back: %v", err)
	}
	assert.Equal(t, fmt.Sprintf("/v1/messenger/file/%d", file.ID), locator)
	assert.Equal(t, "notes.pdf", file.Name)

	data, err := base64.StdEncoding.DecodeString(file.Data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	assert.Equal(t, "payload", string(data))
}
