package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageUploadDownload(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/files/")
	require.NoError(t, err)

	ctx := context.Background()
	url, size, err := s.Upload(ctx, "project-1/SIS-0001.pdf", "application/pdf", strings.NewReader("first"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/project-1/SIS-0001.pdf", url)
	assert.Equal(t, int64(5), size)

	rc, err := s.Download(ctx, "project-1/SIS-0001.pdf")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestLocalStorageUploadOverwrites(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/files")
	require.NoError(t, err)

	ctx := context.Background()
	_, _, err = s.Upload(ctx, "project-1/SIS-0002.pdf", "application/pdf", strings.NewReader("original artifact"))
	require.NoError(t, err)

	url, size, err := s.Upload(ctx, "project-1/SIS-0002.pdf", "application/pdf", strings.NewReader("new"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/project-1/SIS-0002.pdf", url)
	assert.Equal(t, int64(3), size)

	rc, err := s.Download(ctx, "project-1/SIS-0002.pdf")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestLocalStorageDownloadMissing(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/files")
	require.NoError(t, err)

	_, err = s.Download(context.Background(), "project-1/absent.pdf")
	assert.ErrorContains(t, err, "file not found")
}

func TestLocalStorageDeleteIsIdempotent(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/files")
	require.NoError(t, err)

	ctx := context.Background()
	_, _, err = s.Upload(ctx, "project-1/SIS-0003.pdf", "application/pdf", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "project-1/SIS-0003.pdf"))
	require.NoError(t, s.Delete(ctx, "project-1/SIS-0003.pdf"))
}
