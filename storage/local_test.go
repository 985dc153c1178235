package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func newLocal(t *testing.T) (*LocalStorage, string) {
	t.Helper()
	root := t.TempDir()
	s, err := NewLocalStorage(root)
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	return s, root
}

func TestLocalStorage_PutDeleteExists(t *testing.T) {
	s, root := newLocal(t)
	ctx := context.Background()

	key, err := s.Put(ctx, "uploads", Upload{Filename: "cover.bin", Data: pngHeader})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !strings.HasPrefix(key, "uploads/") || !strings.HasSuffix(key, ".png") {
		t.Errorf("key = %q, want uploads/<uuid>.png", key)
	}

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(key)))
	if err != nil {
		t.Fatalf("blob not written: %v", err)
	}
	if string(data) != string(pngHeader) {
		t.Error("blob content mismatch")
	}

	exists, err := s.Exists(ctx, key)
	if err != nil || !exists {
		t.Errorf("Exists = %v, %v", exists, err)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	exists, err = s.Exists(ctx, key)
	if err != nil || exists {
		t.Errorf("Exists after delete = %v, %v", exists, err)
	}

	// deleting twice is fine
	if err := s.Delete(ctx, key); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestLocalStorage_KeysAreUnique(t *testing.T) {
	s, _ := newLocal(t)
	ctx := context.Background()

	a, err := s.Put(ctx, "uploads", Upload{Data: pngHeader})
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Put(ctx, "uploads", Upload{Data: pngHeader})
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Errorf("two puts produced the same key %q", a)
	}
}

func TestLocalStorage_RejectsEmptyUpload(t *testing.T) {
	s, _ := newLocal(t)

	_, err := s.Put(context.Background(), "uploads", Upload{Filename: "empty.png"})
	if !errors.Is(err, ErrEmptyUpload) {
		t.Errorf("err = %v, want ErrEmptyUpload", err)
	}
}

func TestLocalStorage_RejectsEscapingKeys(t *testing.T) {
	s, _ := newLocal(t)
	ctx := context.Background()

	for _, key := range []string{"", "/etc/passwd", "../outside.png", "uploads/../../x"} {
		if err := s.Delete(ctx, key); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Delete(%q) err = %v, want ErrInvalidKey", key, err)
		}
	}
}

func TestLocalStorage_HealthProbe(t *testing.T) {
	s, _ := newLocal(t)

	exists, err := s.Exists(context.Background(), HealthKey)
	if err != nil || exists {
		t.Errorf("Exists(HealthKey) = %v, %v", exists, err)
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		name string
		file Upload
		want string
	}{
		{"sniffed", Upload{Filename: "photo.JPG", Data: pngHeader}, ".png"},
		{"filename fallback", Upload{Filename: "photo.JPG"}, ".jpg"},
		{"nothing", Upload{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extension(tt.file); got != tt.want {
				t.Errorf("Extension() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewKey(t *testing.T) {
	key := NewKey("", Upload{Filename: "a.gif"})
	if strings.Contains(key, "/") || !strings.HasSuffix(key, ".gif") {
		t.Errorf("NewKey without prefix = %q", key)
	}
}
