package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"

	"gorm.io/gorm"

	"classroom-messenger/model"
)

// Database keeps attachment bytes in Postgres, base64 encoded. The locator
// points at the messenger file-serving endpoint.
type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) Upload(ctx context.Context, r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("storage: read upload: %w", err)
	}

	file := &model.MessengerFile{
		Name: filename,
		Data: base64.StdEncoding.EncodeToString(data),
	}
	if err := d.db.WithContext(ctx).Create(file).Error; err != nil {
		return "", fmt.Errorf("storage: save upload: %w", err)
	}
	return fmt.Sprintf("/v1/messenger/file/%d", file.ID), nil
}
