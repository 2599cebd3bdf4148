package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/linkt-app/linkt/internal/common"
	sc "github.com/linkt-app/linkt/internal/server/config"
	"github.com/linkt-app/linkt/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

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

// PosterService hands out presigned URLs for event poster images stored in
// an S3-compatible backend. Clients upload directly to storage; the server
// only records the resulting storage key on the event.
type PosterService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewPosterService(db *sql.DB, repomanager repomanager.RepositoryManager, config *sc.Config) *PosterService {
	return &PosterService{
		db:          db,
		repomanager: repomanager,
		config:      config,
	}
}

// GetRandomStorageKey builds a date-partitioned object key for a new poster.
func GetRandomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("events/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *PosterService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,     // MINIO_ROOT_USER
			s.config.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// GetPosterUploadURL authorizes the organizer against the event, presigns a
// PUT for a fresh storage key, and records the key on the event. Returns the
// storage key and the upload URL.
func (s *PosterService) GetPosterUploadURL(ctx context.Context, eventID, actorID int64) (string, string, error) {
	eventRepo := s.repomanager.Events(s.db)

	event, err := eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", "", common.ErrEventNotFound
		}
		return "", "", fmt.Errorf("error loading event: %w", err)
	}
	if event.OrganizerID != actorID {
		return "", "", common.ErrorUnauthorized
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := GetRandomStorageKey()

	// Presigned PUT
	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))

	if err != nil {
		return "", "", err
	}

	if err := eventRepo.UpdateImageURL(ctx, eventID, key); err != nil {
		return "", "", fmt.Errorf("error saving poster key: %w", err)
	}

	return key, req.URL, nil
}

// GetPosterURL presigns a GET for the event's stored poster key.
func (s *PosterService) GetPosterURL(ctx context.Context, eventID int64) (string, error) {
	eventRepo := s.repomanager.Events(s.db)

	event, err := eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrEventNotFound
		}
		return "", fmt.Errorf("error loading event: %w", err)
	}
	if event.ImageURL == "" {
		return "", common.ErrorNotFound
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	key := event.ImageURL

	// Presigned GET
	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
