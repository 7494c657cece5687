package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/brizzai/social-manager/internal/auth/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_UpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Upsert(ctx, models.TokenRecord{ProviderUserID: "u1", AccessToken: "tok1", Username: "alice", Provider: models.ProviderInstagram}))
	require.NoError(t, s.Upsert(ctx, models.TokenRecord{ProviderUserID: "u1", AccessToken: "tok2", Username: "alice2", Provider: models.ProviderTikTok}))

	assert.Equal(t, 1, s.Len())
	got, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	want := models.TokenRecord{ProviderUserID: "u1", AccessToken: "tok2", Username: "alice2", Provider: models.ProviderTikTok}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestMemoryStore_RejectsEmptyID(t *testing.T) {
	s := NewMemoryStore()
	assert.Error(t, s.Upsert(context.Background(), models.TokenRecord{AccessToken: "tok"}))
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStore_GetMissing(t *testing.T) {
	_, err := NewMemoryStore().Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ListIsSortedSnapshot(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Upsert(ctx, models.TokenRecord{ProviderUserID: "b", Provider: models.ProviderTikTok}))
	require.NoError(t, s.Upsert(ctx, models.TokenRecord{ProviderUserID: "z", Provider: models.ProviderInstagram}))
	require.NoError(t, s.Upsert(ctx, models.TokenRecord{ProviderUserID: "a", Provider: models.ProviderInstagram}))

	list, err := s.List(ctx)
	require.NoError(t, err)
	var ids []string
	for _, r := range list {
		ids = append(ids, r.ProviderUserID)
	}
	assert.Equal(t, []string{"a", "z", "b"}, ids)

	list[0].Username = "mutated"
	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, got.Username, "List must return a copy")
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Upsert(ctx, models.TokenRecord{ProviderUserID: "u1", Provider: models.ProviderInstagram}))

	require.NoError(t, s.Delete(ctx, "u1"))
	assert.ErrorIs(t, s.Delete(ctx, "u1"), ErrNotFound)
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStore_ConcurrentUpserts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Upsert(ctx, models.TokenRecord{
				ProviderUserID: fmt.Sprintf("u%d", i%5),
				AccessToken:    fmt.Sprintf("tok%d", i),
				Provider:       models.ProviderInstagram,
			})
			_, _ = s.List(ctx)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, s.Len())
}
