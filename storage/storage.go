package storage

import (
	"context"
	"io"
)

// Storage stores attachment bytes and returns an opaque locator. The
// messenger embeds the locator verbatim in the message row and never
// dereferences it itself.
type Storage interface {
	Upload(ctx context.Context, r io.Reader, filename string) (string, error)
}
