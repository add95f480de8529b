package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewWithClient(rdb), mr
}

type linkPayload struct {
	Slug      string `json:"slug"`
	RepoCount int    `json:"repo_count"`
}

// TestSetGetJSON tests the JSON round trip through Redis.
func TestSetGetJSON(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	stored := linkPayload{Slug: "acme/backend-engineer", RepoCount: 2}
	require.NoError(t, client.SetJSON(ctx, ShareLinkKey(stored.Slug), stored, time.Minute))

	var loaded linkPayload
	require.NoError(t, client.GetJSON(ctx, ShareLinkKey(stored.Slug), &loaded))
	assert.Equal(t, stored, loaded)
}

// TestGetJSONMiss tests that absent keys report ErrMiss.
func TestGetJSONMiss(t *testing.T) {
	client, _ := newTestClient(t)

	var loaded linkPayload
	err := client.GetJSON(context.Background(), ShareLinkKey("missing"), &loaded)
	assert.ErrorIs(t, err, ErrMiss)
}

// TestSetJSONExpiry tests that entries honor their TTL.
func TestSetJSONExpiry(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	key := ShareLinkKey("acme/backend-engineer")
	require.NoError(t, client.SetJSON(ctx, key, linkPayload{Slug: "acme/backend-engineer"}, time.Minute))

	mr.FastForward(2 * time.Minute)

	var loaded linkPayload
	assert.ErrorIs(t, client.GetJSON(ctx, key, &loaded), ErrMiss)
}

// TestDelete tests invalidation after a share-link update.
func TestDelete(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	key := ShareLinkKey("acme/backend-engineer")
	require.NoError(t, client.SetJSON(ctx, key, linkPayload{Slug: "acme/backend-engineer"}, time.Minute))
	require.NoError(t, client.Delete(ctx, key))

	var loaded linkPayload
	assert.ErrorIs(t, client.GetJSON(ctx, key, &loaded), ErrMiss)
}
