package report

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestShareStore(t *testing.T, ttl time.Duration) (*ShareStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewShareStore(client, ttl)
	store.now = func() time.Time { return fixedNow }
	return store, mr
}

func TestShareStoreRoundTrip(t *testing.T) {
	store, mr := newTestShareStore(t, time.Hour)
	ctx := context.Background()
	artifact := Artifact{Format: FormatHTML, ContentType: "text/html; charset=utf-8", Filename: "r.html", Body: []byte("<h1>report</h1>")}

	link, err := store.Save(ctx, "p-a", artifact)
	require.NoError(t, err)
	require.Equal(t, fixedNow.Add(time.Hour), link.ExpiresAt)
	require.True(t, mr.Exists(shareKeyPrefix+link.Token))
	require.Equal(t, time.Hour, mr.TTL(shareKeyPrefix+link.Token))

	got, err := store.Load(ctx, link.Token)
	require.NoError(t, err)
	require.Equal(t, artifact, got)
}

func TestShareStoreExpires(t *testing.T) {
	store, mr := newTestShareStore(t, time.Minute)
	ctx := context.Background()
	link, err := store.Save(ctx, "p-a", Artifact{Format: FormatHTML, Body: []byte("x")})
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	_, err = store.Load(ctx, link.Token)
	require.ErrorIs(t, err, ErrShareNotFound)
}

func TestShareStoreRejectsUnknownTokens(t *testing.T) {
	store, _ := newTestShareStore(t, 0)
	ctx := context.Background()
	_, err := store.Load(ctx, "not-a-token")
	require.ErrorIs(t, err, ErrShareNotFound)
	_, err = store.Load(ctx, "1b4e28ba-2fa1-11d2-883f-0016d3cca427")
	require.ErrorIs(t, err, ErrShareNotFound)
	require.Equal(t, DefaultShareTTL, store.ttl)
}
