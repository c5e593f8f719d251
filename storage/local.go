package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Local writes attachments to a directory served as static files. Each file
// gets a uuid name so uploads never collide.
type Local struct {
	dir string
}

func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create upload dir: %w", err)
	}
	return &Local{dir: dir}, nil
}

func (l *Local) Upload(_ context.Context, r io.Reader, filename string) (string, error) {
	name := uuid.NewString() + filepath.Ext(filename)

	f, err := os.Create(filepath.Join(l.dir, name))
	if err != nil {
		return "", fmt.Errorf("storage: create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return "/uploads/" + name, nil
}
