package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := Initialize("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestInitialize_BadURL(t *testing.T) {
	_, err := Initialize("not a url")
	assert.Error(t, err)
}

func TestPreferences(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	_, err := client.GetPreferences(ctx, "s1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, client.SetPreferences(ctx, "s1", &Preferences{WorkflowTab: "orders"}, time.Hour))
	prefs, err := client.GetPreferences(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "orders", prefs.WorkflowTab)
	assert.False(t, prefs.UpdatedAt.IsZero())

	mr.FastForward(2 * time.Hour)
	_, err = client.GetPreferences(ctx, "s1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestDrafts(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	draft := &Draft{Kind: "order", Data: json.RawMessage(`{"customer_name":"Acme"}`)}
	require.NoError(t, client.SetDraft(ctx, "s1", draft, time.Hour))

	got, err := client.GetDraft(ctx, "order", "s1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"customer_name":"Acme"}`, string(got.Data))

	_, err = client.GetDraft(ctx, "expense", "s1")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = client.GetDraft(ctx, "order", "s2")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, client.DeleteDraft(ctx, "order", "s1"))
	_, err = client.GetDraft(ctx, "order", "s1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestGetJSON_Corrupt(t *testing.T) {
	client, mr := newTestClient(t)
	require.NoError(t, mr.Set("prefs:s1", "{not json"))

	_, err := client.GetPreferences(context.Background(), "s1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
