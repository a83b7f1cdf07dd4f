// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/craftai/craftai-backend/internal/apperrors"
	"github.com/craftai/craftai-backend/internal/config"
)

// MaxImageSize is the ceiling for a single product image upload.
const MaxImageSize = 10 * 1024 * 1024

// StorageService stores product images in S3. Without AWS credentials
// it runs in local mode and fabricates URLs, which keeps development
// and CI working offline.
type StorageService struct {
	s3Client s3iface.S3API
	config   *config.Config
	log      *logrus.Logger
}

type UploadResult struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

func NewStorageService(cfg *config.Config, log *logrus.Logger) (*StorageService, error) {
	if cfg.AWS.AccessKeyID == "" {
		// Local development mode, no S3.
		return &StorageService{config: cfg, log: log}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		config:   cfg,
		log:      log,
	}, nil
}

// UploadProductImage validates and stores one image for ownerID,
// keyed products/{owner}/{uuid}.{ext}. Size and content checks run
// before any network call.
func (s *StorageService) UploadProductImage(ctx context.Context, ownerID uuid.UUID, file multipart.File, header *multipart.FileHeader) (*UploadResult, error) {
	if header.Size > MaxImageSize {
		return nil, apperrors.New(apperrors.CodeQuotaExceeded,
			fmt.Sprintf("Image exceeds the %dMB limit", MaxImageSize/(1024*1024)))
	}

	fileBytes, err := io.ReadAll(io.LimitReader(file, MaxImageSize+1))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidFormat, "Unable to read uploaded file", err)
	}
	if int64(len(fileBytes)) > MaxImageSize {
		return nil, apperrors.New(apperrors.CodeQuotaExceeded,
			fmt.Sprintf("Image exceeds the %dMB limit", MaxImageSize/(1024*1024)))
	}

	contentType, ok := sniffImageType(fileBytes)
	if !ok {
		return nil, apperrors.New(apperrors.CodeInvalidFormat, "File is not a supported image (JPEG, PNG, GIF, WebP)")
	}

	key := s.productImageKey(ownerID, header.Filename, contentType)

	if s.s3Client == nil {
		return &UploadResult{
			URL:      fmt.Sprintf("http://localhost:%s/uploads/%s", s.config.Server.Port, key),
			Key:      key,
			Size:     int64(len(fileBytes)),
			MimeType: contentType,
		}, nil
	}

	params := &s3.PutObjectInput{
		Bucket:        aws.String(s.config.AWS.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(fileBytes),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(fileBytes))),
		ACL:           aws.String("public-read"),
	}

	if _, err := s.s3Client.PutObjectWithContext(ctx, params); err != nil {
		return nil, classifyUploadError(err)
	}

	return &UploadResult{
		URL:      s.getS3URL(key),
		Key:      key,
		Size:     int64(len(fileBytes)),
		MimeType: contentType,
	}, nil
}

// DeleteProductImage removes a stored image. Failures are logged but
// never surfaced: a dangling object must not block product deletion.
func (s *StorageService) DeleteProductImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if s.s3Client == nil {
		s.log.WithField("key", key).Debug("Local mode, skipping image delete")
		return
	}

	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Failed to delete image from S3")
	}
}

func (s *StorageService) productImageKey(ownerID uuid.UUID, originalName, contentType string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		switch contentType {
		case "image/jpeg":
			ext = ".jpg"
		case "image/png":
			ext = ".png"
		case "image/gif":
			ext = ".gif"
		case "image/webp":
			ext = ".webp"
		}
	}
	return fmt.Sprintf("products/%s/%s%s", ownerID, uuid.New(), ext)
}

func (s *StorageService) getS3URL(key string) string {
	if s.config.AWS.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", s.config.AWS.CloudFrontURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		s.config.AWS.S3Bucket, s.config.AWS.Region, key)
}

// sniffImageType checks magic bytes rather than trusting the declared
// Content-Type.
func sniffImageType(buffer []byte) (string, bool) {
	if len(buffer) >= 3 && buffer[0] == 0xFF && buffer[1] == 0xD8 && buffer[2] == 0xFF {
		return "image/jpeg", true
	}
	if len(buffer) >= 8 && bytes.Equal(buffer[:4], []byte{0x89, 0x50, 0x4E, 0x47}) {
		return "image/png", true
	}
	if len(buffer) >= 6 && (string(buffer[:6]) == "GIF87a" || string(buffer[:6]) == "GIF89a") {
		return "image/gif", true
	}
	if len(buffer) >= 12 && string(buffer[:4]) == "RIFF" && string(buffer[8:12]) == "WEBP" {
		return "image/webp", true
	}
	return "", false
}

func classifyUploadError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(apperrors.CodeUploadTimeout, "Image upload timed out", err)
	}

	var awsErr awserr.Error
	if errors.As(err, &awsErr) {
		switch awsErr.Code() {
		case request.CanceledErrorCode:
			return apperrors.Wrap(apperrors.CodeUploadTimeout, "Image upload timed out", err)
		case "EntityTooLarge":
			return apperrors.Wrap(apperrors.CodeQuotaExceeded, "Image exceeds the storage limit", err)
		}
	}

	return apperrors.Wrap(apperrors.CodeUnavailable, "Unable to store image", err)
}
