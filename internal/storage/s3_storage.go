package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"rastiv/internal/buildtypes"
	"rastiv/internal/config"
	"rastiv/internal/formdata"
)

// ErrMissingBucket is returned when STORAGE.S3.BUCKET_NAME is empty.
var ErrMissingBucket = errors.New("未配置 S3 存储桶")

type s3Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3OutputStore 把构建结果上传到 S3 (或兼容 S3 的存储，例如 MinIO)。
type S3OutputStore struct {
	uploader s3Uploader
	bucket   string
	prefix   string
}

// NewS3OutputStore 根据配置创建 S3 客户端。
// 未配置 AccessKeyID 时使用默认凭证链。
func NewS3OutputStore(ctx context.Context, cfg config.S3Config) (*S3OutputStore, error) {
	if cfg.BucketName == "" {
		return nil, ErrMissingBucket
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("加载 AWS 配置失败: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3OutputStore(manager.NewUploader(client), cfg.BucketName, cfg.Prefix), nil
}

func newS3OutputStore(uploader s3Uploader, bucket, prefix string) *S3OutputStore {
	return &S3OutputStore{
		uploader: uploader,
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
	}
}

// Save 上传结果，key 为 prefix/文件名。sourcePath 不参与 key 的计算。
func (s *S3OutputStore) Save(ctx context.Context, sourcePath string, result *buildtypes.UploadResult) (*buildtypes.SavedFile, error) {
	fileName := SafeFileName(result.OutputFilename)
	key := path.Join(s.prefix, fileName)

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(result.OutputBytes),
		ContentType:   aws.String(formdata.SpreadsheetContentType),
		ContentLength: aws.Int64(int64(len(result.OutputBytes))),
	})
	if err != nil {
		return nil, fmt.Errorf("上传到 S3 失败 '%s/%s': %w", s.bucket, key, err)
	}

	return &buildtypes.SavedFile{
		Location: fmt.Sprintf("s3://%s/%s", s.bucket, key),
		FileName: fileName,
		Size:     int64(len(result.OutputBytes)),
	}, nil
}
