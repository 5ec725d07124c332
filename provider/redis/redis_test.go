package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsNilClient(t *testing.T) {
	_, err := New(Config{})
	require.ErrorIs(t, err, ErrNilClient)

	_, err = NewFromURL("not a url")
	assert.Error(t, err)
}

// Runs against a live server when LAYOUT_REDIS_URL is set.
func TestProviderRoundTrip(t *testing.T) {
	url := os.Getenv("LAYOUT_REDIS_URL")
	if url == "" {
		t.Skip("LAYOUT_REDIS_URL not set")
	}
	ctx := context.Background()
	p, err := NewFromURL(url)
	require.NoError(t, err)
	defer p.Close(ctx)

	key := "rec:layout-test:" + time.Now().Format(time.RFC3339Nano)
	ok, err := p.Set(ctx, key, []byte{0, 1, 2}, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	v, hit, err := p.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, []byte{0, 1, 2}, v)

	require.NoError(t, p.Del(ctx, key))
	_, hit, err = p.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, hit)
}
