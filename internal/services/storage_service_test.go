// internal/services/storage_service_test.go
package services

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftai/craftai-backend/internal/apperrors"
	"github.com/craftai/craftai-backend/internal/config"
)

type memoryFile struct {
	*bytes.Reader
}

func (memoryFile) Close() error { return nil }

func newMemoryFile(data []byte) multipart.File {
	return memoryFile{bytes.NewReader(data)}
}

var (
	jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}
	pngHeader  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
)

func newLocalStorage(t *testing.T) *StorageService {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := &config.Config{}
	cfg.Server.Port = "8080"

	svc, err := NewStorageService(cfg, log)
	require.NoError(t, err)
	return svc
}

func TestUploadProductImageLocalMode(t *testing.T) {
	svc := newLocalStorage(t)
	ownerID := uuid.New()

	data := append(append([]byte{}, jpegHeader...), bytes.Repeat([]byte{0x01}, 100)...)
	header := &multipart.FileHeader{Filename: "vase.jpg", Size: int64(len(data))}

	result, err := svc.UploadProductImage(context.Background(), ownerID, newMemoryFile(data), header)
	require.NoError(t, err)

	assert.Equal(t, "image/jpeg", result.MimeType)
	assert.Equal(t, int64(len(data)), result.Size)
	assert.True(t, strings.HasPrefix(result.Key, "products/"+ownerID.String()+"/"))
	assert.True(t, strings.HasSuffix(result.Key, ".jpg"))
	assert.Contains(t, result.URL, result.Key)
}

func TestUploadProductImageRejectsOversize(t *testing.T) {
	svc := newLocalStorage(t)

	// The declared size alone must reject the upload; no read happens.
	header := &multipart.FileHeader{Filename: "huge.jpg", Size: 15 * 1024 * 1024}

	_, err := svc.UploadProductImage(context.Background(), uuid.New(), newMemoryFile(jpegHeader), header)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeQuotaExceeded, apperrors.CodeOf(err))
}

func TestUploadProductImageRejectsLyingSizeHeader(t *testing.T) {
	svc := newLocalStorage(t)

	data := append(append([]byte{}, jpegHeader...), bytes.Repeat([]byte{0x01}, MaxImageSize)...)
	header := &multipart.FileHeader{Filename: "huge.jpg", Size: 100}

	_, err := svc.UploadProductImage(context.Background(), uuid.New(), newMemoryFile(data), header)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeQuotaExceeded, apperrors.CodeOf(err))
}

func TestUploadProductImageRejectsNonImage(t *testing.T) {
	svc := newLocalStorage(t)

	data := []byte("%PDF-1.4 not an image")
	header := &multipart.FileHeader{Filename: "doc.pdf", Size: int64(len(data))}

	_, err := svc.UploadProductImage(context.Background(), uuid.New(), newMemoryFile(data), header)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidFormat, apperrors.CodeOf(err))
}

func TestUploadProductImageExtensionFromContent(t *testing.T) {
	svc := newLocalStorage(t)

	// No extension on the uploaded name; the sniffed type supplies one.
	result, err := svc.UploadProductImage(context.Background(), uuid.New(),
		newMemoryFile(pngHeader), &multipart.FileHeader{Filename: "upload", Size: int64(len(pngHeader))})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.Key, ".png"))
	assert.Equal(t, "image/png", result.MimeType)
}

func TestSniffImageType(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
		ok       bool
	}{
		{"jpeg", jpegHeader, "image/jpeg", true},
		{"png", pngHeader, "image/png", true},
		{"gif87a", []byte("GIF87a......"), "image/gif", true},
		{"gif89a", []byte("GIF89a......"), "image/gif", true},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), "image/webp", true},
		{"pdf", []byte("%PDF-1.4"), "", false},
		{"empty", nil, "", false},
		{"riff but not webp", []byte("RIFF\x00\x00\x00\x00WAVEfmt "), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := sniffImageType(tt.data)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDeleteProductImageLocalMode(t *testing.T) {
	svc := newLocalStorage(t)

	// Must be a silent no-op.
	svc.DeleteProductImage(context.Background(), "products/abc/def.jpg")
	svc.DeleteProductImage(context.Background(), "")
}

func TestClassifyUploadError(t *testing.T) {
	assert.Equal(t, apperrors.CodeUploadTimeout, apperrors.CodeOf(classifyUploadError(context.DeadlineExceeded)))
	assert.Equal(t, apperrors.CodeUnavailable, apperrors.CodeOf(classifyUploadError(io.ErrUnexpectedEOF)))
}
