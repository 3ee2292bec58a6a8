// Package storage hands out presigned S3 URLs so clients move document
// bytes directly to and from the bucket (MinIO in development).
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/secondmind/internal/server/config"
	"github.com/google/uuid"
)

// PresignExpiry is the lifetime of every URL handed out.
const PresignExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// Presigner issues upload and download URLs for document objects.
type Presigner interface {
	PresignPut(ctx context.Context, ownerID string) (key, url string, err error)
	PresignGet(ctx context.Context, key string) (string, error)
}

// S3Presigner signs requests against one bucket.
type S3Presigner struct {
	region   string
	user     string
	password string
	endpoint string
	bucket   string
	now      func() time.Time
}

func NewS3Presigner(cfg *sc.Config) *S3Presigner {
	return &S3Presigner{
		region:   cfg.S3Region,
		user:     cfg.S3RootUser,
		password: cfg.S3RootPassword,
		endpoint: cfg.S3BaseEndpoint,
		bucket:   cfg.S3Bucket,
		now:      time.Now,
	}
}

// ObjectKey returns a fresh key of the form users/<owner>/<yyyy>/<mm>/<dd>/<uuid>.
func ObjectKey(ownerID string, at time.Time) string {
	at = at.UTC()
	return fmt.Sprintf("users/%s/%04d/%02d/%02d/%s", ownerID, at.Year(), int(at.Month()), at.Day(), uuid.New())
}

func (p *S3Presigner) client(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(p.region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(p.user, p.password, "")))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(p.endpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// PresignPut allocates a key under the owner's prefix and signs a PUT for it.
func (p *S3Presigner) PresignPut(ctx context.Context, ownerID string) (string, string, error) {
	pc, err := p.client(ctx)
	if err != nil {
		return "", "", fmt.Errorf("s3 config: %w", err)
	}

	key := ObjectKey(ownerID, p.now())
	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return "", "", fmt.Errorf("presign put: %w", err)
	}

	return key, req.URL, nil
}

// PresignGet signs a GET for an existing key.
func (p *S3Presigner) PresignGet(ctx context.Context, key string) (string, error) {
	pc, err := p.client(ctx)
	if err != nil {
		return "", fmt.Errorf("s3 config: %w", err)
	}

	req, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}

	return req.URL, nil
}
