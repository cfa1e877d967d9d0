package store_test

import (
	"context"
	"testing"
	"time"

	"chatapp/server/internal/store"
	"chatapp/server/internal/store/memory"

	"github.com/stretchr/testify/require"
)

func TestSeed(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	seeded, err := store.Seed(ctx, s, now)
	require.NoError(t, err)
	require.True(t, seeded)

	sarah, err := s.GetUserByUsername(ctx, "sarah")
	require.NoError(t, err)
	require.Equal(t, int64(1), sarah.ID)

	lisa, err := s.GetUserByUsername(ctx, "lisa")
	require.NoError(t, err)
	require.Equal(t, now.Add(-7*24*time.Hour), lisa.LastSeen)

	contacts, err := s.ListContacts(ctx, sarah.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 4)

	counts, err := s.UnreadCounts(ctx, sarah.ID, []int64{2, 3, 4, 5})
	require.NoError(t, err)
	require.Equal(t, map[int64]int{2: 1}, counts)

	seeded, err = store.Seed(ctx, s, now)
	require.NoError(t, err)
	require.False(t, seeded)

	n, err := s.CountUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(5), n)
}
