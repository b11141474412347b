package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"movies-catalog/internal/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

// StorageService stores profile pictures in a MinIO/S3 bucket. Clients
// upload directly through short-lived presigned URLs.
type StorageService struct {
	client    *minio.Client
	bucket    string
	publicURL string
	logger    *logrus.Logger
}

func NewStorageService(cfg *config.MinIOConfig, logger *logrus.Logger) (*StorageService, error) {
	endpoint := cfg.Endpoint
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"bucket":   cfg.BucketName,
	}).Info("MinIO client initialized successfully")

	service := &StorageService{
		client:    minioClient,
		bucket:    cfg.BucketName,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
		logger:    logger,
	}

	if err := service.ensureBucket(context.Background()); err != nil {
		logger.WithError(err).Warn("Failed to configure bucket, but continuing...")
	}

	return service, nil
}

func (s *StorageService) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		s.logger.WithField("bucket", s.bucket).Info("Bucket created successfully")
	}

	policy := fmt.Sprintf(`{
		"Version": "2012-10-17",
		"Statement": [
			{
				"Effect": "Allow",
				"Principal": {"AWS": ["*"]},
				"Action": ["s3:GetObject"],
				"Resource": ["arn:aws:s3:::%s/*"]
			}
		]
	}`, s.bucket)

	if err := s.client.SetBucketPolicy(ctx, s.bucket, policy); err != nil {
		return fmt.Errorf("failed to set bucket policy: %w", err)
	}

	return nil
}

// PresignedUploadURL returns a 15-minute PUT URL for a fresh object key
// under the user's prefix, plus the public URL the object will have.
func (s *StorageService) PresignedUploadURL(ctx context.Context, userID uint, ext string) (string, string, error) {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = "jpg"
	}

	objectKey := fmt.Sprintf("users/%d/%s.%s", userID, uuid.New().String(), ext)

	presignedURL, err := s.client.PresignedPutObject(ctx, s.bucket, objectKey, 15*time.Minute)
	if err != nil {
		s.logger.WithError(err).Error("Failed to generate presigned URL")
		return "", "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"object_key": objectKey,
	}).Info("Generated presigned upload URL")

	return presignedURL.String(), s.objectURL(objectKey), nil
}

func (s *StorageService) objectURL(objectKey string) string {
	if s.publicURL != "" {
		return s.publicURL + "/" + objectKey
	}
	scheme := "http"
	if s.client.EndpointURL().Scheme == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.client.EndpointURL().Host, s.bucket, objectKey)
}

// OwnsURL reports whether the URL points into this service's bucket.
func (s *StorageService) OwnsURL(url string) bool {
	if url == "" || !strings.Contains(url, "http") {
		return false
	}
	if s.publicURL != "" && strings.HasPrefix(url, s.publicURL+"/") {
		return true
	}
	return strings.Contains(url, "/"+s.bucket+"/")
}

func (s *StorageService) DeleteObject(url string) error {
	objectKey := url
	if s.publicURL != "" && strings.HasPrefix(url, s.publicURL+"/") {
		objectKey = strings.TrimPrefix(url, s.publicURL+"/")
	} else if idx := strings.Index(url, "/"+s.bucket+"/"); idx != -1 {
		objectKey = url[idx+len(s.bucket)+2:]
	}

	err := s.client.RemoveObject(context.Background(), s.bucket, objectKey, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	s.logger.WithField("object_key", objectKey).Info("Object deleted from bucket")
	return nil
}
