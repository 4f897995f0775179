package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySetGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	type rec struct {
		Name string `json:"name"`
		N    int    `json:"n"`
	}

	require.NoError(t, m.Set(ctx, "a/b", rec{Name: "x", N: 3}))

	var got rec
	require.NoError(t, m.Get(ctx, "a/b", &got))
	assert.Equal(t, rec{Name: "x", N: 3}, got)

	var parent map[string]rec
	require.NoError(t, m.Get(ctx, "a", &parent))
	assert.Equal(t, rec{Name: "x", N: 3}, parent["b"])

	var missing rec
	assert.ErrorIs(t, m.Get(ctx, "a/nope", &missing), ErrNotFound)
}

func TestMemoryUpdateMergesAndDeletes(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "p/k", map[string]interface{}{"name": "x", "cost": "5"}))
	require.NoError(t, m.Update(ctx, "p/k", map[string]interface{}{
		"name": "y",
		"cost": nil,
		"new":  "1",
	}))

	var got map[string]interface{}
	require.NoError(t, m.Get(ctx, "p/k", &got))
	assert.Equal(t, "y", got["name"])
	assert.Equal(t, "1", got["new"])
	_, hasCost := got["cost"]
	assert.False(t, hasCost)
}

func TestMemoryDelete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "a/b", "v"))
	require.NoError(t, m.Delete(ctx, "a/b"))

	var got string
	assert.ErrorIs(t, m.Get(ctx, "a/b", &got), ErrNotFound)
}

func TestMemoryPushKeysSortChronologically(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	k1, err := m.Push(ctx, "items", "first")
	require.NoError(t, err)
	k2, err := m.Push(ctx, "items", "second")
	require.NoError(t, err)
	assert.Less(t, k1, k2)
}

func TestMemoryWatchReplayThenLive(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	k1, err := m.Push(ctx, "items", map[string]interface{}{"n": 1})
	require.NoError(t, err)

	ch, err := m.Watch(ctx, "items")
	require.NoError(t, err)

	ev := mustRecv(t, ch)
	assert.Equal(t, k1, ev.Key)

	k2, err := m.Push(ctx, "items", map[string]interface{}{"n": 2})
	require.NoError(t, err)

	ev = mustRecv(t, ch)
	assert.Equal(t, k2, ev.Key)
	var payload map[string]int
	require.NoError(t, json.Unmarshal(ev.Data, &payload))
	assert.Equal(t, 2, payload["n"])

	cancel()
	for range ch {
	}
}

func TestMemoryWatchIsolatedPerPath(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := m.Watch(ctx, "purchases")
	require.NoError(t, err)

	_, err = m.Push(ctx, "products", "p")
	require.NoError(t, err)

	select {
	case ev, ok := <-ch:
		if ok {
			t.Fatalf("unexpected event %v", ev)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func mustRecv(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}
