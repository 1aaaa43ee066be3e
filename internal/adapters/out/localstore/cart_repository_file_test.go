package localstore_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"boutique/internal/adapters/out/localstore"
	cartdom "boutique/internal/domain/cart"
)

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := localstore.NewCartRepositoryFile(filepath.Join(t.TempDir(), "carts.json"))

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c, err := cartdom.New("uid-1", []string{"42", "42", "7"}, now)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, c))

	got, err := repo.Load(ctx, "uid-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	// persisting then reloading yields an identical multiset of ids
	require.Equal(t, c.Entries, got.Entries)
	require.Equal(t, cartdom.SchemaVersion, got.Version)
}

func TestFileStoreMissingKey(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := localstore.NewCartRepositoryFile(filepath.Join(t.TempDir(), "carts.json"))

	got, err := repo.Load(ctx, "nobody")
	require.NoError(t, err)
	require.Nil(t, got)

	// deleting an absent key is not an error
	require.NoError(t, repo.Delete(ctx, "nobody"))
}

func TestFileStoreDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := localstore.NewCartRepositoryFile(filepath.Join(t.TempDir(), "carts.json"))

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c, err := cartdom.New("uid-1", []string{"42"}, now)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, c))
	require.NoError(t, repo.Delete(ctx, "uid-1"))

	got, err := repo.Load(ctx, "uid-1")
	require.NoError(t, err)
	require.Nil(t, got)
}
