package storage

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Storage struct {
	client *minio.Client
	bucket string
}

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func NewStorage(ctx context.Context, config *Config) (*Storage, error) {
	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	s := &Storage{
		client: client,
		bucket: config.Bucket,
	}

	exists, err := client.BucketExists(ctx, config.Bucket)
	if err != nil {
		return nil, err
	}

	if !exists {
		if err := client.MakeBucket(ctx, config.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Storage) GetUploadUrl(ctx context.Context, objectName string, duration time.Duration) (string, error) {
	presignedUrl, err := s.client.PresignedPutObject(ctx, s.bucket, objectName, duration)
	if err != nil {
		return "", err
	}
	return presignedUrl.String(), nil
}

func (s *Storage) GetDownloadUrl(ctx context.Context, objectName string, duration time.Duration) (string, error) {
	presignedUrl, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, duration, url.Values{})
	if err != nil {
		return "", err
	}
	return presignedUrl.String(), nil
}

func (s *Storage) RemoveObject(ctx context.Context, objectName string) error {
	return s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
}

// ObjectName builds the object key for a document's file. Keys are scoped by
// owner then document so object names never collide across uploads.
func ObjectName(ownerID, documentID, fileName string) string {
	return fmt.Sprintf("%s/%s/%s", ownerID, documentID, fileName)
}
