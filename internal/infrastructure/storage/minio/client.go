package minio

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/config"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/monitoring/logging"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
)

// URL schemes served by the object store.
const (
	SchemeS3    = "s3://"
	SchemeMinIO = "minio://"
)

// MinIOAPI is the subset of *minio.Client used by the importer.
type MinIOAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// sdkAdapter narrows *minio.Object to io.ReadCloser.
type sdkAdapter struct {
	*minio.Client
}

func (a sdkAdapter) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	return a.Client.GetObject(ctx, bucketName, objectName, opts)
}

// MinIOClient reads import inputs from and writes exports to an S3
// compatible store.
type MinIOClient struct {
	client MinIOAPI
	logger logging.Logger
}

// NewMinIOClient connects to cfg.Endpoint.  Connectivity is checked lazily on
// the first Stat.
func NewMinIOClient(cfg config.MinIOConfig, log logging.Logger) (*MinIOClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.NewValidationError("minio.endpoint", "minio endpoint is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "failed to create minio client")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	log.Info("MinIO client created", logging.String("endpoint", cfg.Endpoint), logging.Bool("ssl", cfg.UseSSL))
	return NewMinIOClientWithAPI(sdkAdapter{client}, log), nil
}

// NewMinIOClientWithAPI wraps an existing MinIOAPI implementation.
func NewMinIOClientWithAPI(api MinIOAPI, log logging.Logger) *MinIOClient {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &MinIOClient{client: api, logger: log.Named("minio")}
}

// IsObjectURL reports whether path names an object rather than a local file.
func IsObjectURL(path string) bool {
	return strings.HasPrefix(path, SchemeS3) || strings.HasPrefix(path, SchemeMinIO)
}

// ParseObjectURL splits s3://bucket/key or minio://bucket/key.
func ParseObjectURL(raw string) (bucket, key string, err error) {
	rest := ""
	switch {
	case strings.HasPrefix(raw, SchemeS3):
		rest = strings.TrimPrefix(raw, SchemeS3)
	case strings.HasPrefix(raw, SchemeMinIO):
		rest = strings.TrimPrefix(raw, SchemeMinIO)
	default:
		return "", "", errors.InvalidParam("not an object URL").WithDetail(raw)
	}
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", errors.InvalidParam("object URL needs bucket and key").WithDetail(raw)
	}
	return bucket, key, nil
}

// HealthStatus is the result of a bucket probe.
type HealthStatus struct {
	Healthy bool
	Latency time.Duration
	Error   string
}

// HealthCheck probes bucket.
func (c *MinIOClient) HealthCheck(ctx context.Context, bucket string) (*HealthStatus, error) {
	start := time.Now()
	exists, err := c.client.BucketExists(ctx, bucket)
	status := &HealthStatus{Healthy: err == nil && exists, Latency: time.Since(start)}
	if err != nil {
		status.Error = err.Error()
		return status, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "minio health check failed")
	}
	if !exists {
		status.Error = "bucket not found"
	}
	return status, nil
}

//Personal.AI order the ending
