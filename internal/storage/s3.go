package storage

import (
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"

	"github.com/emilythestrangee/yatube/internal/config"
)

type S3Storage struct {
	s3Client *s3.S3
	uploader *s3manager.Uploader
	bucket   string
	prefix   string
}

func NewS3Storage(cfg *config.Config) (*S3Storage, error) {
	if cfg.S3Bucket == "" {
		return nil, errors.New("S3_BUCKET is required for the s3 storage backend")
	}
	awsConfig := &aws.Config{Region: aws.String(cfg.S3Region)}
	if cfg.S3Endpoint != "" {
		// minio and other S3 compatible servers
		awsConfig.Endpoint = aws.String(cfg.S3Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}
	if cfg.S3AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.S3AccessKey, cfg.S3SecretKey, "")
	}
	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, errors.Wrap(err, "create aws session")
	}
	client := s3.New(sess)
	return &S3Storage{
		s3Client: client,
		uploader: s3manager.NewUploaderWithClient(client),
		bucket:   cfg.S3Bucket,
		prefix:   strings.Trim(cfg.S3Prefix, "/"),
	}, nil
}

// GetRemotePath maps a media path to its object key.
func (s *S3Storage) GetRemotePath(p string) (string, error) {
	clean, err := CleanPath(p)
	if err != nil {
		return "", err
	}
	if s.prefix == "" {
		return clean, nil
	}
	return s.prefix + "/" + clean, nil
}

func (s *S3Storage) Save(ctx context.Context, p string, reader io.Reader, contentType string) error {
	key, err := s.GetRemotePath(p)
	if err != nil {
		return err
	}
	input := s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   reader,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	_, err = s.uploader.UploadWithContext(ctx, &input)
	return errors.Wrapf(err, "upload %s", key)
}

func (s *S3Storage) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	key, err := s.GetRemotePath(p)
	if err != nil {
		return nil, err
	}
	resp, err := s.s3Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get %s", key)
	}
	return resp.Body, nil
}

func (s *S3Storage) Delete(ctx context.Context, p string) error {
	key, err := s.GetRemotePath(p)
	if err != nil {
		return err
	}
	_, err = s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return errors.Wrapf(err, "delete %s", key)
}
