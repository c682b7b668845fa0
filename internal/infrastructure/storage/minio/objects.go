package minio

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/monitoring/logging"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
)

// Open returns a reader over the object named by url.  A missing bucket or
// key is reported as ErrCodeDataSourceUnavailable.
func (c *MinIOClient) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	bucket, key, err := ParseObjectURL(url)
	if err != nil {
		return nil, err
	}
	info, err := c.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, classify(err, url)
	}
	r, err := c.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, classify(err, url)
	}
	c.logger.Info("Opened object",
		logging.String("url", url),
		logging.Int64("size", info.Size),
		logging.String("etag", info.ETag))
	return r, nil
}

// Create returns a writer that streams into the object named by url.  The
// upload completes when the writer is closed; Close reports upload errors.
func (c *MinIOClient) Create(ctx context.Context, url, contentType string) (io.WriteCloser, error) {
	bucket, key, err := ParseObjectURL(url)
	if err != nil {
		return nil, err
	}
	pr, pw := io.Pipe()
	u := &upload{pw: pw, done: make(chan error, 1)}
	go func() {
		info, err := c.client.PutObject(ctx, bucket, key, pr, -1, minio.PutObjectOptions{ContentType: contentType})
		if err != nil {
			err = errors.Wrap(err, errors.ErrCodeSinkWriteFailed, "object upload failed").WithDetail(url)
			pr.CloseWithError(err)
		} else {
			c.logger.Info("Uploaded object", logging.String("url", url), logging.Int64("size", info.Size))
		}
		u.done <- err
	}()
	return u, nil
}

type upload struct {
	pw   *io.PipeWriter
	done chan error
}

func (u *upload) Write(p []byte) (int, error) { return u.pw.Write(p) }

func (u *upload) Close() error {
	if err := u.pw.Close(); err != nil {
		return err
	}
	return <-u.done
}

func classify(err error, url string) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return errors.Wrap(err, errors.ErrCodeDataSourceUnavailable, "object not found").WithDetail(url)
	}
	return errors.Wrap(err, errors.ErrCodeDataSourceUnavailable, "failed to read object").WithDetail(url)
}

//Personal.AI order the ending
