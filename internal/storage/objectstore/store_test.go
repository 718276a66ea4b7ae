package objectstore

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhotoKey(t *testing.T) {
	id := uuid.MustParse("6f1c8f0e-8c1e-4a8e-9a55-2b1f3f1f0c11")

	key := PhotoKey(id, "full_form", "image/jpeg; charset=binary")
	assert.True(t, strings.HasPrefix(key, "submissions/6f1c8f0e-8c1e-4a8e-9a55-2b1f3f1f0c11/full_form-"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.NotEqual(t, key, PhotoKey(id, "full_form", "image/jpeg"))
}

func TestSupportedContentType(t *testing.T) {
	assert.True(t, SupportedContentType("image/png"))
	assert.True(t, SupportedContentType("IMAGE/JPEG"))
	assert.False(t, SupportedContentType("application/pdf"))
	assert.False(t, SupportedContentType(""))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, "a", strings.NewReader("abc"), 3, "image/png"))
	obj, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, []byte("abc"), obj.Data)
	assert.Equal(t, "image/png", obj.ContentType)

	assert.Error(t, s.Put(ctx, "b", strings.NewReader("abc"), 5, "image/png"))
	assert.ErrorIs(t, s.Put(ctx, "", strings.NewReader(""), 0, "image/png"), ErrKeyEmpty)

	require.NoError(t, s.Remove(ctx, "a"))
	assert.ErrorIs(t, s.Remove(ctx, "a"), ErrObjectNotFound)
	assert.Zero(t, s.Len())
}
