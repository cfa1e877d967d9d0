package database

import (
	"context"
	"testing"

	"chatapp/server/internal/config"

	"github.com/stretchr/testify/require"
)

func TestOpen_MemorySeeded(t *testing.T) {
	cfg := &config.Config{StoreDriver: config.DriverMemory, Seed: true}

	s, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer Close(s)

	n, err := s.CountUsers(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(5), n)

	contacts, err := s.ListContacts(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, contacts, 4)
}

func TestOpen_MemoryEmpty(t *testing.T) {
	cfg := &config.Config{StoreDriver: config.DriverMemory}

	s, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer Close(s)

	n, err := s.CountUsers(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{StoreDriver: "sqlite"})
	require.Error(t, err)
}
