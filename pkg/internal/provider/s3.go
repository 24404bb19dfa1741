package provider

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yeisme/filerelay/pkg/configs"
)

// s3LinkExpiry 预签名下载链接有效期.
const s3LinkExpiry = 7 * 24 * time.Hour

// S3 通过 MinIO SDK 上传到任意 S3 兼容对象存储.
type S3 struct {
	client *minio.Client
	bucket string
	region string
}

// NewS3 创建 S3 后端并确保 bucket 存在.
func NewS3(ctx context.Context, cfg configs.S3Config) (*S3, error) {
	endpoint, useSSL := cfg.GetEndpointHost()

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	s := &S3{client: client, bucket: cfg.BucketName, region: cfg.Region}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *S3) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}

	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket,
			minio.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
	}

	return nil
}

func (s *S3) Name() string { return ProviderS3 }

func (s *S3) DisplayName() string { return "S3" }

// Upload 上传文件到 bucket 并返回预签名下载链接.
func (s *S3) Upload(ctx context.Context, localPath, fileName string) (*Result, error) {
	if _, err := s.client.FPutObject(ctx, s.bucket, fileName, localPath,
		minio.PutObjectOptions{}); err != nil {
		return nil, fmt.Errorf("s3 upload: %w", err)
	}

	link, err := s.client.PresignedGetObject(ctx, s.bucket, fileName, s3LinkExpiry, url.Values{})
	if err != nil {
		return nil, fmt.Errorf("s3 presign: %w", err)
	}

	return &Result{Success: true, URL: link.String()}, nil
}
