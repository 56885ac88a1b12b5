package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/dkrylov/medvault/internal/common"
	sc "github.com/dkrylov/medvault/internal/server/config"
)

type S3BlobStore struct {
	client *s3.Client
	bucket string
}

// NewS3BlobStore builds an S3 client from the server configuration. When
// S3BaseEndpoint is set the client targets an S3-compatible backend such as
// MinIO; otherwise the regular AWS endpoint resolution applies.
func NewS3BlobStore(ctx context.Context, cfg *sc.Config) (*S3BlobStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3BlobStore{client: client, bucket: cfg.S3Bucket}, nil
}

func (s *S3BlobStore) Put(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		Metadata:    metadata,
	})
	if err != nil {
		return fmt.Errorf("%w: put %s: %v", common.ErrorExternalService, key, err)
	}
	return nil
}

func (s *S3BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: get %s: %v", common.ErrorExternalService, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", common.ErrorExternalService, key, err)
	}
	return data, nil
}

func (s *S3BlobStore) Head(ctx context.Context, key string) (map[string]string, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: head %s: %v", common.ErrorExternalService, key, err)
	}
	return out.Metadata, nil
}

func (s *S3BlobStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", common.ErrorExternalService, key, err)
	}
	return nil
}

// List walks the whole bucket and resolves each object's metadata with a
// HEAD request, since S3 listings do not carry user metadata.
func (s *S3BlobStore) List(ctx context.Context) ([]ObjectInfo, error) {
	var objects []ObjectInfo

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: list: %v", common.ErrorExternalService, err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			metadata, err := s.Head(ctx, key)
			if err != nil {
				// object may have been deleted between list and head
				if errors.Is(err, common.ErrorNotFound) {
					continue
				}
				return nil, err
			}
			objects = append(objects, ObjectInfo{Key: key, Metadata: metadata})
		}
	}

	return objects, nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	var nk *types.NoSuchKey
	return errors.As(err, &nf) || errors.As(err, &nk)
}
