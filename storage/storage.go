package storage

import (
	"context"
	"errors"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// HealthKey is probed by the health check. It never has to exist.
const HealthKey = "__health__"

var (
	ErrEmptyUpload = errors.New("upload is empty")
	ErrInvalidKey  = errors.New("invalid storage key")
)

// Upload is a file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Size returns the number of bytes in the upload
func (u Upload) Size() int {
	return len(u.Data)
}

// Storage stores blobs under opaque keys.
type Storage interface {
	// Put stores file under prefix and returns the generated key.
	Put(ctx context.Context, prefix string, file Upload) (string, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// NewKey returns prefix/<uuid><ext> for file
func NewKey(prefix string, file Upload) string {
	name := uuid.NewString() + Extension(file)
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// Extension picks the file extension from the sniffed content, falling back to
// the client supplied filename.
func Extension(file Upload) string {
	if len(file.Data) > 0 {
		if ext := mimetype.Detect(file.Data).Extension(); ext != "" {
			return ext
		}
	}
	return strings.ToLower(filepath.Ext(file.Filename))
}

// ContentType returns the sniffed MIME type of file
func ContentType(file Upload) string {
	if len(file.Data) == 0 && file.ContentType != "" {
		return file.ContentType
	}
	return mimetype.Detect(file.Data).String()
}

func checkKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}
