package mongostore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-restaurant-pos/database"
	"go-restaurant-pos/store"
	"go-restaurant-pos/store/storetest"
)

// TestStore needs a replica set at TEST_MONGODB_URL. Each case gets a fresh
// database that is dropped afterwards.
func TestStore(t *testing.T) {
	url := os.Getenv("TEST_MONGODB_URL")
	if url == "" {
		t.Skip("TEST_MONGODB_URL not set")
	}
	ctx := context.Background()
	client, err := database.NewMongo(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { client.Disconnect(context.Background()) })

	n := 0
	storetest.Run(t, func(t *testing.T) store.Store {
		n++
		name := fmt.Sprintf("pos_test_%d_%d", time.Now().UnixNano(), n)
		s, err := New(ctx, client, name)
		require.NoError(t, err)
		t.Cleanup(func() { client.Database(name).Drop(context.Background()) })
		return s
	})
}
