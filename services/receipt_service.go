package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/kendall-kelly/techsupport-client/config"
	"github.com/kendall-kelly/techsupport-client/models"
)

// ReceiptURLExpiry is how long a presigned receipt link stays valid
const ReceiptURLExpiry = time.Hour

// ReceiptStore archives receipts of paid checkouts
type ReceiptStore interface {
	// SaveReceipt stores the receipt and returns its key
	SaveReceipt(ctx context.Context, receipt models.Receipt) (string, error)
	// GetReceiptURL returns a temporary link to a stored receipt
	GetReceiptURL(ctx context.Context, key string) (string, error)
}

// S3ReceiptStore implements ReceiptStore with AWS S3
type S3ReceiptStore struct {
	client *s3.Client
	bucket string
}

// NewS3ReceiptStore creates an S3-backed receipt store from the application config
func NewS3ReceiptStore(ctx context.Context, cfg *config.Config) (*S3ReceiptStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	// Explicit keys win; otherwise the default credential chain applies
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)))
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3ReceiptStore{
		client: s3.NewFromConfig(awsConfig),
		bucket: cfg.AWSReceiptBucket,
	}, nil
}

// ReceiptKey returns the object key a checkout session's receipt is stored under
func ReceiptKey(sessionID string) string {
	return fmt.Sprintf("receipts/%s.json", url.PathEscape(sessionID))
}

// SaveReceipt uploads the receipt as a JSON object
func (s *S3ReceiptStore) SaveReceipt(ctx context.Context, receipt models.Receipt) (string, error) {
	content, err := json.Marshal(receipt)
	if err != nil {
		return "", fmt.Errorf("failed to encode receipt: %w", err)
	}

	key := ReceiptKey(receipt.SessionID)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload receipt to S3: %w", err)
	}

	slog.Info("archived payment receipt", "key", key)
	return key, nil
}

// GetReceiptURL generates a presigned URL for a stored receipt
func (s *S3ReceiptStore) GetReceiptURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	presignClient := s3.NewPresignClient(s.client)
	request, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = ReceiptURLExpiry
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return request.URL, nil
}
