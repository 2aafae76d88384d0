package storage

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// S3Client implements Client against S3 or any S3-compatible endpoint.
type S3Client struct {
	client   *s3.S3
	uploader *s3manager.Uploader
	bucket   string
	region   string
	endpoint string
}

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// NewS3Client creates a new S3 client. A non-empty endpoint switches to
// path-style addressing, which is what S3-compatible hosts expect.
func NewS3Client(cfg *S3Config) (*S3Client, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.Region),
	}

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %v", err)
	}

	return &S3Client{
		client:   s3.New(sess),
		uploader: s3manager.NewUploader(sess),
		bucket:   cfg.Bucket,
		region:   cfg.Region,
		endpoint: cfg.Endpoint,
	}, nil
}

// Upload streams data to S3
func (s *S3Client) Upload(key string, reader io.Reader, size int64, opts *UploadOptions) (*UploadResult, error) {
	input := &s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   reader,
	}
	if opts != nil && opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}

	if _, err := s.uploader.Upload(input); err != nil {
		return nil, newError("s3", "upload", key, err)
	}

	return &UploadResult{
		Key:  key,
		URL:  s.PublicURL(key),
		Size: size,
	}, nil
}

// Download fetches an object from S3
func (s *S3Client) Download(key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, newError("s3", "download", key, err)
	}
	return out.Body, nil
}

// Delete removes an object from S3
func (s *S3Client) Delete(key string) error {
	_, err := s.client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return newError("s3", "delete", key, err)
	}
	return nil
}

// Exists checks whether an object exists in S3
func (s *S3Client) Exists(key string) (bool, error) {
	_, err := s.client.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok {
			if aerr.Code() == "NotFound" || aerr.Code() == s3.ErrCodeNoSuchKey {
				return false, nil
			}
		}
		return false, newError("s3", "head", key, err)
	}
	return true, nil
}

// PresignedURL generates a time-limited download URL
func (s *S3Client) PresignedURL(key string, expiry time.Duration) (string, error) {
	req, _ := s.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	url, err := req.Presign(expiry)
	if err != nil {
		return "", newError("s3", "presign", key, err)
	}
	return url, nil
}

// PublicURL returns the canonical object URL
func (s *S3Client) PublicURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.endpoint, "/"), s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// HealthCheck verifies bucket access
func (s *S3Client) HealthCheck() error {
	_, err := s.client.HeadBucket(&s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return newError("s3", "head_bucket", s.bucket, err)
	}
	return nil
}
