package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	sc "github.com/vibecast/vibecast/internal/server/config"
	"github.com/vibecast/vibecast/internal/wire"
)

// UploadService hands out presigned PUT slots on the S3-compatible media
// store. The client uploads each asset exactly once; the returned public
// URL is what ends up in vibe records and widget states.
type UploadService struct {
	config *sc.Config
}

func NewUploadService(config *sc.Config) *UploadService {
	return &UploadService{config: config}
}

// storageKey produces a collision-free object key, partitioned by day for
// retention housekeeping.
func storageKey(role string) string {
	d := time.Now()
	return fmt.Sprintf("vibes/%d/%02d/%02d/%v_%s", d.Year(), d.Month(), d.Day(), uuid.New(), role)
}

func (s *UploadService) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3AccessKey,
			s.config.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})
	return s3.NewPresignClient(client), nil
}

// CreateSlot presigns a PUT for one asset and returns the slot the client
// uploads into.
func (s *UploadService) CreateSlot(ctx context.Context, req *wire.UploadRequest) (*wire.UploadSlot, error) {
	presignClient, err := s.presignClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("presign client: %w", err)
	}

	bucket := s.config.S3Bucket
	key := storageKey(req.Role)

	out, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: aws.String(req.ContentType),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return nil, fmt.Errorf("presign put: %w", err)
	}

	return &wire.UploadSlot{
		Key:       key,
		PutURL:    out.URL,
		PublicURL: strings.TrimSuffix(s.config.S3PublicBaseURL, "/") + "/" + key,
	}, nil
}
