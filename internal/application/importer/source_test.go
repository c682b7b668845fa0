package importer

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/config"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
)

type mockObjectStore struct {
	mock.Mock
}

func (m *mockObjectStore) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *mockObjectStore) Create(ctx context.Context, url, contentType string) (io.WriteCloser, error) {
	args := m.Called(ctx, url, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

type bufferCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufferCloser) Close() error {
	b.closed = true
	return nil
}

func gzipped(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func readAll(t *testing.T, o *SourceOpener, path string) string {
	t.Helper()
	rc, err := o.Open(context.Background(), path)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

func TestSourceOpener_LocalFiles(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "gene_info")
	require.NoError(t, os.WriteFile(plain, []byte("9606\t1\n"), 0o644))
	packed := filepath.Join(dir, "gene_info.gz")
	require.NoError(t, os.WriteFile(packed, gzipped(t, "9606\t2\n"), 0o644))

	o := NewSourceOpener(nil)
	assert.Equal(t, "9606\t1\n", readAll(t, o, plain))
	assert.Equal(t, "9606\t2\n", readAll(t, o, packed))
}

func TestSourceOpener_Errors(t *testing.T) {
	dir := t.TempDir()
	o := NewSourceOpener(nil)

	_, err := o.Open(context.Background(), filepath.Join(dir, "missing"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeDataSourceUnavailable))

	notGzip := filepath.Join(dir, "broken.gz")
	require.NoError(t, os.WriteFile(notGzip, []byte("plain text"), 0o644))
	_, err = o.Open(context.Background(), notGzip)
	assert.True(t, errors.IsCode(err, errors.CodeMalformedRecord))

	_, err = o.Open(context.Background(), "s3://bucket/gene_info")
	assert.True(t, errors.IsCode(err, errors.ErrCodeDataSourceUnavailable))
	assert.Contains(t, err.Error(), "object store not configured")
}

func TestSourceOpener_ObjectURL(t *testing.T) {
	store := &mockObjectStore{}
	store.On("Open", mock.Anything, "minio://refdata/homologene.data.gz").
		Return(io.NopCloser(bytes.NewReader(gzipped(t, "3\t9606\t1\tA1BG\n"))), nil)
	store.On("Open", mock.Anything, "s3://refdata/absent").
		Return(nil, errors.New(errors.ErrCodeDataSourceUnavailable, "object not found"))

	o := NewSourceOpener(store)
	assert.Equal(t, "3\t9606\t1\tA1BG\n", readAll(t, o, "minio://refdata/homologene.data.gz"))

	_, err := o.Open(context.Background(), "s3://refdata/absent")
	assert.True(t, errors.IsCode(err, errors.ErrCodeDataSourceUnavailable))
	store.AssertExpectations(t)
}

func TestSourceOpener_Create(t *testing.T) {
	dir := t.TempDir()
	o := NewSourceOpener(nil)

	out := filepath.Join(dir, "concepts.ndjson.gz")
	w, err := o.Create(context.Background(), out)
	require.NoError(t, err)
	_, err = io.WriteString(w, "{}\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, "{}\n", readAll(t, o, out))

	buf := &bufferCloser{}
	store := &mockObjectStore{}
	store.On("Create", mock.Anything, "s3://exports/concepts.ndjson", ndjsonContentType).Return(buf, nil)
	w, err = NewSourceOpener(store).Create(context.Background(), "s3://exports/concepts.ndjson")
	require.NoError(t, err)
	_, err = io.WriteString(w, "{}\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.True(t, buf.closed)
	assert.Equal(t, "{}\n", buf.String())
}

func TestOpenObjectStore_NotNeeded(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Import.GeneInfoPath = "/data/gene_info.gz"

	store, err := OpenObjectStore(cfg, nil)
	require.NoError(t, err)
	assert.Nil(t, store)
}

//Personal.AI order the ending
