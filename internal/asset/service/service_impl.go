package service

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/oklog/ulid/v2"
	"github.com/vendly/vendly/internal/asset/domain"
	"github.com/vendly/vendly/internal/config"
	"go.uber.org/zap"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type service struct {
	log       *zap.Logger
	client    *s3.Client
	bucket    string
	publicURL string
}

// New builds the S3-backed asset service. Without credentials the
// service is still constructed but every call returns ErrNotConfigured,
// so installs without object storage keep working.
func New(log *zap.Logger, cfg config.Config) (domain.Service, error) {
	svc := &service{
		log:       log.Named("asset.service"),
		bucket:    cfg.AssetBucket,
		publicURL: cfg.AssetPublicURL,
	}
	if cfg.AssetAccessKey == "" || cfg.AssetSecretKey == "" {
		return svc, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AssetRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AssetAccessKey,
			cfg.AssetSecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load object storage config: %w", err)
	}

	svc.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AssetEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AssetEndpoint)
			o.UsePathStyle = true
		}
	})
	return svc, nil
}

func (s *service) UploadProductImage(ctx context.Context, orgID int64, req domain.UploadRequest) (*domain.Asset, error) {
	if orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	if s.client == nil {
		return nil, domain.ErrNotConfigured
	}

	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, domain.ErrUnsupportedType
	}
	if req.Size > domain.MaxImageSize {
		return nil, domain.ErrTooLarge
	}

	key := path.Join(fmt.Sprintf("org/%d/products", orgID), ulid.Make().String()+ext)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        req.Body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store object: %w", err)
	}

	s.log.Info("product image stored", zap.Int64("org_id", orgID), zap.String("key", key))
	return &domain.Asset{Key: key, URL: s.objectURL(key)}, nil
}

func (s *service) DeleteObject(ctx context.Context, key string) error {
	if s.client == nil {
		return domain.ErrNotConfigured
	}
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *service) objectURL(key string) string {
	if s.publicURL != "" {
		return s.publicURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
}
