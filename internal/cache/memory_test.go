package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedForm struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)

	var got cachedForm
	ok, err := c.Get(ctx, FormKey(1), &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, FormKey(1), cachedForm{ID: 1, Title: "Signup"}, Stamp{}, FormTag(1)))

	ok, err = c.Get(ctx, FormKey(1), &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, cachedForm{ID: 1, Title: "Signup"}, got)
}

func TestMemoryCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)

	require.NoError(t, c.Set(ctx, FormKey(1), cachedForm{ID: 1}, Stamp{}, FormTag(1), OwnerTag("u1")))
	require.NoError(t, c.Set(ctx, FormKey(2), cachedForm{ID: 2}, Stamp{}, FormTag(2), OwnerTag("u1")))
	require.NoError(t, c.Set(ctx, OwnerFormsKey("u1"), []cachedForm{{ID: 1}, {ID: 2}}, Stamp{}, TagUserForms, OwnerTag("u1")))
	require.NoError(t, c.Set(ctx, OwnerFormsKey("u2"), []cachedForm{}, Stamp{}, TagUserForms, OwnerTag("u2")))

	tests := []struct {
		name string
		tags []string
		want int
	}{
		{"single form tag", []string{FormTag(1)}, 3},
		{"unknown tag is a no-op", []string{"nope"}, 3},
		{"owner tag", []string{OwnerTag("u1")}, 1},
		{"listing tag", []string{TagUserForms}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, c.Invalidate(ctx, tt.tags...))
			assert.Equal(t, tt.want, c.Len())
		})
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", "v", Stamp{}))

	var got string
	ok, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, err = c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCache_StaleFillSkipped(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)

	// a reader stamps, a writer invalidates, the reader then tries to fill
	stamp, err := c.Stamp(ctx, FormTag(1), TagUserForms)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, FormTag(1)))
	require.NoError(t, c.Set(ctx, FormKey(1), cachedForm{ID: 1, Title: "old"}, stamp, FormTag(1)))

	var got cachedForm
	ok, err := c.Get(ctx, FormKey(1), &got)
	require.NoError(t, err)
	assert.False(t, ok)

	// a fresh stamp fills normally
	stamp, err = c.Stamp(ctx, FormTag(1), TagUserForms)
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, FormKey(1), cachedForm{ID: 1, Title: "new"}, stamp, FormTag(1)))

	ok, err = c.Get(ctx, FormKey(1), &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "new", got.Title)

	// unrelated invalidations do not block the fill
	stamp, err = c.Stamp(ctx, FormTag(2))
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, FormTag(3)))
	require.NoError(t, c.Set(ctx, FormKey(2), cachedForm{ID: 2}, stamp, FormTag(2)))
	assert.Equal(t, 2, c.Len())
}
