package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpatel/profilesync-backend/internal/app/model"
	redispkg "github.com/hpatel/profilesync-backend/pkg/redis"
)

func setupRedisTest(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func sampleDraft(token int64) *model.PendingProfileDraft {
	return &model.PendingProfileDraft{
		Token: token,
		Form: model.ProfileForm{
			Name:     "Second Shop",
			Category: "Retail",
			Address:  "12 MG Road",
			Phone:    "9876543210",
			Email:    "owner@pateltraders.in",
		},
		OrderID:   "order_1",
		Amount:    49900,
		Currency:  "INR",
		CreatedAt: time.Now(),
	}
}

func TestDraftStore_SaveAndGet(t *testing.T) {
	store := NewDraftStore(setupRedisTest(t))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "user-1", sampleDraft(1)))

	draft, err := store.Get(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.Equal(t, int64(1), draft.Token)
	assert.Equal(t, "Second Shop", draft.Form.Name)
	assert.Equal(t, "order_1", draft.OrderID)
	assert.Equal(t, model.DraftSchemaVersion, draft.SchemaVersion)
}

func TestDraftStore_GetMissingReturnsNil(t *testing.T) {
	store := NewDraftStore(setupRedisTest(t))

	draft, err := store.Get(context.Background(), "user-unknown")
	assert.NoError(t, err)
	assert.Nil(t, draft)
}

func TestDraftStore_SaveReplacesExisting(t *testing.T) {
	store := NewDraftStore(setupRedisTest(t))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "user-1", sampleDraft(1)))

	replacement := sampleDraft(2)
	replacement.Form.Name = "Replacement Shop"
	require.NoError(t, store.Save(ctx, "user-1", replacement))

	draft, err := store.Get(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.Equal(t, int64(2), draft.Token)
	assert.Equal(t, "Replacement Shop", draft.Form.Name)
}

func TestDraftStore_Delete(t *testing.T) {
	store := NewDraftStore(setupRedisTest(t))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "user-1", sampleDraft(1)))
	require.NoError(t, store.Delete(ctx, "user-1"))

	draft, err := store.Get(ctx, "user-1")
	assert.NoError(t, err)
	assert.Nil(t, draft)
}

func TestDraftStore_NextTokenIsMonotonicPerUser(t *testing.T) {
	store := NewDraftStore(setupRedisTest(t))
	ctx := context.Background()

	var last int64
	for i := 0; i < 5; i++ {
		token, err := store.NextToken(ctx, "user-1")
		require.NoError(t, err)
		assert.Greater(t, token, last)
		last = token
	}

	// Counters are independent per user.
	other, err := store.NextToken(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), other)
}

func TestDraftStore_FutureSchemaVersionRejected(t *testing.T) {
	client := setupRedisTest(t)
	store := NewDraftStore(client)
	ctx := context.Background()

	raw := `{"schemaVersion":99,"token":1,"formData":{}}`
	require.NoError(t, client.Set(ctx, redispkg.DraftKey("user-1"), raw, 0).Err())

	_, err := store.Get(ctx, "user-1")
	assert.Error(t, err)
}

func TestDraftStore_ListUserIDs(t *testing.T) {
	store := NewDraftStore(setupRedisTest(t))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "user-1", sampleDraft(1)))
	require.NoError(t, store.Save(ctx, "user-2", sampleDraft(1)))

	userIDs, err := store.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"user-1", "user-2"}, userIDs)
}
