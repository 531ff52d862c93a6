package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweepStore struct {
	subsCalls, hlCalls int
	subsErr, hlErr     error
	seen               time.Time
}

func (f *fakeSweepStore) ExpireSubscriptions(_ context.Context, now time.Time) (int64, error) {
	f.subsCalls++
	f.seen = now
	return 2, f.subsErr
}

func (f *fakeSweepStore) ClearExpiredHighlights(_ context.Context, now time.Time) (int64, error) {
	f.hlCalls++
	return 1, f.hlErr
}

func TestSweepOnceRunsBothCleanups(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeSweepStore{subsErr: errors.New("db down")}
	w := &sweeper{ctx: context.Background(), subs: store, highlights: store, logger: zerolog.Nop(), now: func() time.Time { return now }}

	err := w.sweepOnce()
	require.Error(t, err)
	assert.Equal(t, 1, store.subsCalls)
	assert.Equal(t, 1, store.hlCalls, "highlight cleanup must run even when expiring subscriptions fails")
	assert.Equal(t, now, store.seen)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := &fakeSweepStore{}
	w := &sweeper{ctx: ctx, subs: store, highlights: store, logger: zerolog.Nop(), interval: time.Hour, now: time.Now}

	done := make(chan error, 1)
	go func() { done <- w.Run() }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.GreaterOrEqual(t, store.subsCalls, 1)
}
