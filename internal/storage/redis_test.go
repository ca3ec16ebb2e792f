package storage

import (
	"context"
	"testing"
	"time"

	"gearinhere/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s := NewRedisStore(mr.Addr(), "", 0, ttl)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	s, mr := newTestRedisStore(t, time.Hour)
	ctx := context.Background()
	title := "Solar Backpack"
	image := "https://kick.example/img.jpg"
	created := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

	d := &domain.Draft{
		ID:     "d1",
		Source: domain.SourceKickstarter,
		Snapshot: &domain.ProductSnapshot{
			Title:     &title,
			Image:     &image,
			URL:       "https://kick.example/p",
			ScrapedAt: created,
		},
		Content:     "REVIEW",
		AutoRefresh: true,
		Notices:     []string{domain.NoticeAutoRefresh},
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	require.NoError(t, s.Save(ctx, d))
	require.True(t, mr.Exists("draft:d1"))
	require.Equal(t, time.Hour, mr.TTL("draft:d1"))

	got, err := s.Get(ctx, "d1")
	require.NoError(t, err)
	require.Equal(t, d, got)
	require.Nil(t, got.Snapshot.Description)
	require.NoError(t, s.Ping(ctx))
}

func TestRedisStoreMissingAndExpired(t *testing.T) {
	s, mr := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	_, err := s.Get(ctx, "nope")
	require.ErrorIs(t, err, domain.ErrDraftNotFound)

	require.NoError(t, s.Save(ctx, &domain.Draft{ID: "d1"}))
	mr.FastForward(30 * time.Second)

	// Saving again refreshes the expiry.
	require.NoError(t, s.Save(ctx, &domain.Draft{ID: "d1", Content: "edited"}))
	mr.FastForward(45 * time.Second)
	got, err := s.Get(ctx, "d1")
	require.NoError(t, err)
	require.Equal(t, "edited", got.Content)

	mr.FastForward(time.Minute)
	_, err = s.Get(ctx, "d1")
	require.ErrorIs(t, err, domain.ErrDraftNotFound)
}

func TestRedisStoreCorruptValue(t *testing.T) {
	s, mr := newTestRedisStore(t, time.Minute)
	require.NoError(t, mr.Set("draft:bad", "{not json"))

	_, err := s.Get(context.Background(), "bad")
	require.Error(t, err)
	require.NotErrorIs(t, err, domain.ErrDraftNotFound)
}

func TestRedisStorePingDown(t *testing.T) {
	s, mr := newTestRedisStore(t, time.Minute)
	mr.Close()
	require.Error(t, s.Ping(context.Background()))
}
