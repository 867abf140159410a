package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/pinboard/internal/common"
	sc "github.com/dmitrijs2005/pinboard/internal/server/config"
)

// UploadExpiry is how long a presigned upload URL stays valid.
const UploadExpiry = 15 * time.Minute

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
)

// UploadSlot tells a client where to PUT an image and which URL to store
// on the pin or visit afterwards.
type UploadSlot struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"uploadUrl"`
	PublicURL string    `json:"publicUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UploadService hands out presigned S3 upload URLs for pin and visit
// images. The bytes never pass through this server.
type UploadService struct {
	config *sc.Config
	now    func() time.Time
}

func NewUploadService(cfg *sc.Config) *UploadService {
	return &UploadService{config: cfg, now: time.Now}
}

// Enabled reports whether object storage is configured.
func (s *UploadService) Enabled() bool {
	return s.config.S3Bucket != ""
}

func (s *UploadService) storageKey() string {
	d := s.now().UTC()
	return fmt.Sprintf("pins/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *UploadService) publicURL(key string) string {
	base := s.config.S3PublicBaseURL
	if base == "" {
		base = strings.TrimRight(s.config.S3BaseEndpoint, "/") + "/" + s.config.S3Bucket
	}
	return strings.TrimRight(base, "/") + "/" + key
}

func (s *UploadService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return newS3PresignClient(client), nil
}

// PresignUpload returns a fresh upload slot. contentType, when set, is
// bound into the signature so the client must send the same header.
func (s *UploadService) PresignUpload(ctx context.Context, contentType string) (*UploadSlot, error) {
	if !s.Enabled() {
		return nil, common.ErrorStorageDisabled
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	key := s.storageKey()
	in := &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	req, err := presignPutObject(presignClient, ctx, in, s3.WithPresignExpires(UploadExpiry))
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}

	return &UploadSlot{
		Key:       key,
		UploadURL: req.URL,
		PublicURL: s.publicURL(key),
		ExpiresAt: s.now().Add(UploadExpiry).UTC(),
	}, nil
}
