package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalFileStorage_SaveAndRead(t *testing.T) {
	fs := NewLocalFileStorage(t.TempDir(), zap.NewNop())
	ctx := context.Background()

	err := fs.Save(ctx, "delegation_1/receipt.pdf", []byte("hello"))
	require.NoError(t, err)

	got, err := fs.Read(ctx, "delegation_1/receipt.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
	assert.True(t, fs.Exists(ctx, "delegation_1/receipt.pdf"))
}

func TestLocalFileStorage_DeleteIsIdempotent(t *testing.T) {
	fs := NewLocalFileStorage(t.TempDir(), zap.NewNop())
	ctx := context.Background()

	require.NoError(t, fs.Save(ctx, "a.txt", []byte("x")))
	require.NoError(t, fs.Delete(ctx, "a.txt"))
	assert.False(t, fs.Exists(ctx, "a.txt"))

	// second delete of a missing file succeeds
	require.NoError(t, fs.Delete(ctx, "a.txt"))
}

func TestLocalFileStorage_RejectsPathEscape(t *testing.T) {
	fs := NewLocalFileStorage(t.TempDir(), zap.NewNop())
	ctx := context.Background()

	err := fs.Save(ctx, "../outside.txt", []byte("x"))
	assert.Error(t, err)

	_, err = fs.Read(ctx, "../../etc/passwd")
	assert.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "receipt.pdf", SanitizeFilename("receipt.pdf"))
	assert.Equal(t, "receipt.pdf", SanitizeFilename("../../receipt.pdf"))
	assert.Equal(t, "my_receipt__1_.pdf", SanitizeFilename("my receipt (1).pdf"))
	assert.Equal(t, "upload", SanitizeFilename(".."))
	assert.Equal(t, "upload", SanitizeFilename(""))
}
