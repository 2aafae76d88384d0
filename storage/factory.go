package storage

import (
	"fmt"

	"filevault/config"
)

// NewClient builds the configured blob store client. S3-compatible hosts
// (R2, Wasabi, MinIO) are reached through the s3 provider with a custom
// endpoint.
func NewClient(cfg *config.Config) (Client, error) {
	switch cfg.StorageProvider {
	case "s3":
		return NewS3Client(&S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	case "local":
		return NewLocalClient(cfg.UploadPath, cfg.AppURL)
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.StorageProvider)
	}
}
