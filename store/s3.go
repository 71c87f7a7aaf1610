package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Backend stores each document's properties as one JSON object in a bucket.
// Every write is a read-modify-write of that object, so a document must have a
// single writer at a time.
type S3Backend struct {
	client *s3.Client

	bucket string
	prefix string

	uploader   *manager.Uploader
	downloader *manager.Downloader
}

func NewS3Backend(profile, bucket, prefix string) (*S3Backend, error) {
	if bucket == "" {
		return nil, errors.New("no s3 bucket provided for property backend")
	}

	// Load the Shared AWS Configuration (~/.aws/config)
	opts := []func(*config.LoadOptions) error{}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	ctxCfg, cancelCfg := context.WithTimeout(context.Background(), 3*time.Second)
	cfg, err := config.LoadDefaultConfig(ctxCfg, opts...)
	cancelCfg()
	if err != nil {
		return nil, fmt.Errorf("unable to load aws config, %w", err)
	}

	return NewS3BackendFromClient(s3.NewFromConfig(cfg), bucket, prefix), nil
}

func NewS3BackendFromClient(client *s3.Client, bucket, prefix string) *S3Backend {
	return &S3Backend{
		client:     client,
		bucket:     bucket,
		prefix:     prefix,
		uploader:   manager.NewUploader(client),
		downloader: manager.NewDownloader(client),
	}
}

func (b *S3Backend) Properties(documentID string) Properties {
	return &s3Properties{b: b, documentID: documentID}
}

func (b *S3Backend) Close() error {
	return nil
}

func (b *S3Backend) objectKey(documentID string) string {
	return path.Join(b.prefix, "documents", documentID+".json")
}

func (b *S3Backend) load(ctx context.Context, documentID string) (map[string]string, error) {
	buf := manager.NewWriteAtBuffer(nil)
	key := b.objectKey(documentID)
	if _, err := b.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}); err != nil {
		if isNotFound(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("unable to download properties from s3, %s, %w", key, err)
	}

	props := map[string]string{}
	if err := json.Unmarshal(buf.Bytes(), &props); err != nil {
		return nil, fmt.Errorf("unable to decode properties object, %s, %w", key, err)
	}
	return props, nil
}

func (b *S3Backend) save(ctx context.Context, documentID string, props map[string]string) error {
	data, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("unable to encode properties, %w", err)
	}

	key := b.objectKey(documentID)
	if _, err := b.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return fmt.Errorf("unable to upload properties to s3, %s, %w", key, err)
	}
	slog.Debug("uploaded document properties", "bucket", b.bucket, "key", key, "count", len(props))
	return nil
}

func isNotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

type s3Properties struct {
	b          *S3Backend
	documentID string
}

func (p *s3Properties) GetProperty(ctx context.Context, key string) (string, bool, error) {
	props, err := p.GetProperties(ctx)
	if err != nil {
		return "", false, err
	}
	value, ok := props[key]
	return value, ok, nil
}

func (p *s3Properties) GetProperties(ctx context.Context) (map[string]string, error) {
	if p.documentID == "" {
		return nil, ErrEmptyDocumentID
	}
	return p.b.load(ctx, p.documentID)
}

func (p *s3Properties) SetProperty(ctx context.Context, key, value string) error {
	return p.SetProperties(ctx, map[string]string{key: value}, false)
}

func (p *s3Properties) SetProperties(ctx context.Context, props map[string]string, deleteAllOthers bool) error {
	if p.documentID == "" {
		return ErrEmptyDocumentID
	}

	var current map[string]string
	if !deleteAllOthers {
		var err error
		current, err = p.b.load(ctx, p.documentID)
		if err != nil {
			return err
		}
	}
	return p.b.save(ctx, p.documentID, mergeProperties(current, props, deleteAllOthers))
}

func (p *s3Properties) DeleteProperty(ctx context.Context, key string) error {
	if p.documentID == "" {
		return ErrEmptyDocumentID
	}

	current, err := p.b.load(ctx, p.documentID)
	if err != nil {
		return err
	}
	if _, ok := current[key]; !ok {
		return nil
	}
	delete(current, key)
	return p.b.save(ctx, p.documentID, current)
}
