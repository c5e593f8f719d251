package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalUpload(t *testing.T) {
	dir := t.TempDir()
	local, err := NewLocal(dir)
	if err != nil {
		t.Fatalf("new local: %v", err)
	}

	locator, err := local.Upload(context.Background(), strings.NewReader("payload"), "photo.png")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	assert.True(t, strings.HasPrefix(locator, "/uploads/"))
	assert.True(t, strings.HasSuffix(locator, ".png"), "extension carried over")

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(locator, "/uploads/")))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	assert.Equal(t, "payload", string(data))
}

func TestLocalUploadUniqueNames(t *testing.T) {
	local, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("new local: %v", err)
	}

	first, err := local.Upload(context.Background(), strings.NewReader("a"), "same.pdf")
	if err != nil {
		t.Fatalf("first upload: %v", err)
	}
	second, err := local.Upload(context.Background(), strings.NewReader("b"), "same.pdf")
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}

	assert.NotEqual(t, first, second, "same filename must not collide")
}
