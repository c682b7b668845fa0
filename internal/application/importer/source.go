package importer

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/storage/minio"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
)

// ObjectStore opens and creates objects addressed by s3:// or minio:// URLs.
// *minio.MinIOClient satisfies it.
type ObjectStore interface {
	Open(ctx context.Context, url string) (io.ReadCloser, error)
	Create(ctx context.Context, url, contentType string) (io.WriteCloser, error)
}

const ndjsonContentType = "application/x-ndjson"

// SourceOpener resolves input and output locations.  Local paths ending in
// ".gz" are transparently (de)compressed.
type SourceOpener struct {
	objects ObjectStore
}

// NewSourceOpener returns an opener.  objects may be nil when no location is
// an object URL.
func NewSourceOpener(objects ObjectStore) *SourceOpener {
	return &SourceOpener{objects: objects}
}

// Open returns a reader over path.
func (o *SourceOpener) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	var (
		rc  io.ReadCloser
		err error
	)
	if minio.IsObjectURL(path) {
		if o.objects == nil {
			return nil, errors.New(errors.ErrCodeDataSourceUnavailable, "object store not configured").WithDetail(path)
		}
		rc, err = o.objects.Open(ctx, path)
	} else {
		rc, err = os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDataSourceUnavailable, "cannot open input").WithDetail(path)
		}
	}
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return rc, nil
	}
	zr, err := gzip.NewReader(rc)
	if err != nil {
		_ = rc.Close()
		return nil, errors.Wrap(err, errors.ErrCodeDataSourceParseError, "invalid gzip stream").WithDetail(path)
	}
	return &gzipReadCloser{Reader: zr, under: rc}, nil
}

// Create returns a writer into path.  An existing local file is truncated.
func (o *SourceOpener) Create(ctx context.Context, path string) (io.WriteCloser, error) {
	var (
		wc  io.WriteCloser
		err error
	)
	if minio.IsObjectURL(path) {
		if o.objects == nil {
			return nil, errors.New(errors.ErrCodeSinkWriteFailed, "object store not configured").WithDetail(path)
		}
		wc, err = o.objects.Create(ctx, path, ndjsonContentType)
	} else {
		wc, err = os.Create(path)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSinkWriteFailed, "cannot create output").WithDetail(path)
		}
	}
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return wc, nil
	}
	return &gzipWriteCloser{Writer: gzip.NewWriter(wc), under: wc}, nil
}

type gzipReadCloser struct {
	*gzip.Reader
	under io.Closer
}

func (g *gzipReadCloser) Close() error {
	zerr := g.Reader.Close()
	if err := g.under.Close(); err != nil {
		return err
	}
	return zerr
}

type gzipWriteCloser struct {
	*gzip.Writer
	under io.Closer
}

func (g *gzipWriteCloser) Close() error {
	if err := g.Writer.Close(); err != nil {
		_ = g.under.Close()
		return err
	}
	return g.under.Close()
}

//Personal.AI order the ending
