package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestUploadStoresImage(t *testing.T) {
	root := t.TempDir()
	storage := NewFilesystemStorage(root, "", zerolog.Nop())
	uploader := NewUploader(storage, zerolog.Nop())

	upload, err := uploader.Upload(context.Background(), "image/png", strings.NewReader("fake-png-bytes"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if upload.Type != "image" {
		t.Errorf("type = %q, want image", upload.Type)
	}
	if !strings.HasSuffix(upload.Key, ".png") {
		t.Errorf("key = %q, want .png suffix", upload.Key)
	}
	if !strings.HasPrefix(upload.URL, "/media/") {
		t.Errorf("url = %q, want /media/ prefix", upload.URL)
	}

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(upload.Key)))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "fake-png-bytes" {
		t.Errorf("stored bytes = %q", data)
	}
}

func TestUploadClassifiesVideo(t *testing.T) {
	storage := NewFilesystemStorage(t.TempDir(), "", zerolog.Nop())
	uploader := NewUploader(storage, zerolog.Nop())

	upload, err := uploader.Upload(context.Background(), "video/mp4", strings.NewReader("fake-mp4"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if upload.Type != "video" || !strings.HasSuffix(upload.Key, ".mp4") {
		t.Errorf("upload = %+v, want video with .mp4 key", upload)
	}
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	storage := NewFilesystemStorage(t.TempDir(), "", zerolog.Nop())
	uploader := NewUploader(storage, zerolog.Nop())

	_, err := uploader.Upload(context.Background(), "application/zip", strings.NewReader("zip"))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("err = %v, want ErrUnsupportedType", err)
	}
}

func TestDeleteMissingIsNotError(t *testing.T) {
	storage := NewFilesystemStorage(t.TempDir(), "", zerolog.Nop())
	if err := storage.Delete(context.Background(), "evidence/2026-01/missing.png"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}
