package filestorage

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/librarease/assetcatalog/internal/config"
	"github.com/librarease/assetcatalog/internal/usecase"
)

type S3Storage struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	bucket     string
	region     string
	publicBase string
	now        func() time.Time
}

// New builds an S3 provider from the default AWS credential chain.
func New(ctx context.Context, bucket, region, publicBase string) (*S3Storage, error) {
	if err := checkIdentity(bucket, region); err != nil {
		return nil, err
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewWithClient(s3.NewFromConfig(cfg, withPresignDefaults), bucket, region, publicBase), nil
}

func NewWithClient(client *s3.Client, bucket, region, publicBase string) *S3Storage {
	return &S3Storage{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucket:     bucket,
		region:     region,
		publicBase: publicBase,
		now:        time.Now,
	}
}

// Presigned PUTs must not carry SDK computed checksums of an empty body.
func withPresignDefaults(o *s3.Options) {
	o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
}

func (f *S3Storage) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (usecase.PresignedURL, error) {
	if err := checkIdentity(f.bucket, f.region); err != nil {
		return usecase.PresignedURL{}, err
	}
	ttl, err := presignTTL(ttl, config.DEFAULT_UPLOAD_URL_TTL)
	if err != nil {
		return usecase.PresignedURL{}, err
	}

	issued := f.now()
	req, err := f.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(f.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return usecase.PresignedURL{}, fmt.Errorf("presign put %s: %w", key, err)
	}

	return usecase.PresignedURL{
		URL:       req.URL,
		Method:    http.MethodPut,
		Headers:   map[string]string{"Content-Type": contentType},
		ExpiresAt: issued.Add(ttl),
	}, nil
}

func (f *S3Storage) PresignGet(ctx context.Context, key string, ttl time.Duration) (usecase.PresignedURL, error) {
	if err := checkIdentity(f.bucket, f.region); err != nil {
		return usecase.PresignedURL{}, err
	}
	ttl, err := presignTTL(ttl, config.DEFAULT_DOWNLOAD_URL_TTL)
	if err != nil {
		return usecase.PresignedURL{}, err
	}

	issued := f.now()
	req, err := f.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return usecase.PresignedURL{}, fmt.Errorf("presign get %s: %w", key, err)
	}

	return usecase.PresignedURL{
		URL:       req.URL,
		Method:    http.MethodGet,
		ExpiresAt: issued.Add(ttl),
	}, nil
}

// PublicURL is advisory: it 404s or 403s while the object is private.
func (f *S3Storage) PublicURL(key string) string {
	if f.publicBase != "" {
		return joinURL(f.publicBase, key)
	}
	return joinURL(fmt.Sprintf("https://%s.s3.%s.amazonaws.com", f.bucket, f.region), key)
}
