package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"chatapp/server/internal/store"
	"chatapp/server/internal/store/storetest"

	"github.com/stretchr/testify/require"
)

func TestStore_Contract(t *testing.T) {
	uri := os.Getenv("TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("TEST_MONGODB_URI not set")
	}

	storetest.Run(t, func(t *testing.T) store.Store {
		ctx := context.Background()
		name := fmt.Sprintf("chatapp_test_%d", time.Now().UnixNano())
		s, err := Connect(ctx, uri, name)
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = s.db.Drop(ctx)
			_ = s.Close(ctx)
		})
		return s
	})
}

func TestConnect_MissingURI(t *testing.T) {
	_, err := Connect(context.Background(), "", "chat")
	require.Error(t, err)
}
