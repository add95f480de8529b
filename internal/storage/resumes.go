// Package storage persists uploaded resume files in S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const (
	// MaxResumeSize caps resume uploads at 10 MiB.
	MaxResumeSize = 10 << 20

	resumeContentType = "application/pdf"
	keyPrefix         = "resumes/"
)

// s3API is the subset of the S3 client used by the resume store.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// ResumeStore uploads resume PDFs to a bucket and hands back public URLs.
type ResumeStore struct {
	client        s3API
	bucket        string
	publicBaseURL string
	uploadTimeout time.Duration
}

// NewResumeStore builds a ResumeStore backed by the default AWS configuration.
func NewResumeStore(ctx context.Context, region, bucket, publicBaseURL string, uploadTimeout time.Duration) (*ResumeStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return &ResumeStore{
		client:        s3.NewFromConfig(cfg),
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		uploadTimeout: uploadTimeout,
	}, nil
}

// NewResumeStoreWithClient builds a ResumeStore around an existing client.
// Tests use this to substitute a fake.
func NewResumeStoreWithClient(client s3API, bucket, publicBaseURL string, uploadTimeout time.Duration) *ResumeStore {
	return &ResumeStore{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		uploadTimeout: uploadTimeout,
	}
}

// ValidateResume checks that the upload looks like an acceptable PDF.
func ValidateResume(data []byte, contentType string) error {
	if len(data) == 0 {
		return fmt.Errorf("resume file is empty")
	}
	if len(data) > MaxResumeSize {
		return fmt.Errorf("resume file exceeds %d byte limit", MaxResumeSize)
	}
	if mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0])); mediaType != resumeContentType {
		return fmt.Errorf("resume must be a PDF, got content type %q", contentType)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return fmt.Errorf("resume file does not look like a PDF")
	}
	return nil
}

// Upload stores a validated resume and returns its key and public URL.
func (s *ResumeStore) Upload(ctx context.Context, data []byte, contentType string) (key, url string, err error) {
	if err := ValidateResume(data, contentType); err != nil {
		return "", "", err
	}

	key = keyPrefix + uuid.New().String() + ".pdf"

	ctx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(resumeContentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload resume: %w", err)
	}

	return key, s.PublicURL(key), nil
}

// Delete removes a stored resume.
func (s *ResumeStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete resume: %w", err)
	}
	return nil
}

// PublicURL returns the browser-reachable URL for a stored resume key.
func (s *ResumeStore) PublicURL(key string) string {
	return s.publicBaseURL + "/" + key
}
