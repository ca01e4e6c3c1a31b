package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/budhitree/nexus-art-gallery/internal/store"
	"github.com/budhitree/nexus-art-gallery/internal/store/storetest"
	"github.com/budhitree/nexus-art-gallery/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnv(t *testing.T) (env, *storage.LocalStorage) {
	t.Helper()
	s, err := store.Open(context.Background(), storetest.NewMemoryBackend())
	require.NoError(t, err)
	blobs, err := storage.NewLocalStorage(filepath.Join(t.TempDir(), "uploads"), "/uploads")
	require.NoError(t, err)
	return env{
		openStore:   func(context.Context) (*store.Store, error) { return s, nil },
		openStorage: func(context.Context) (storage.ImageStorage, error) { return blobs, nil },
	}, blobs
}

func run(t *testing.T, e env, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand(e)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSeedAdminThenUsers(t *testing.T) {
	e, _ := testEnv(t)

	out, err := run(t, e, "seed-admin", "--password", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "admin account created")

	out, err = run(t, e, "seed-admin", "--password", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	out, err = run(t, e, "users")
	require.NoError(t, err)
	assert.Equal(t, "admin\n", out)
}

func TestSeedAdminRequiresPassword(t *testing.T) {
	e, _ := testEnv(t)
	_, err := run(t, e, "seed-admin")
	assert.Error(t, err)
}

func TestSweepRemovesOldOrphans(t *testing.T) {
	e, blobs := testEnv(t)

	orphan := blobs.Path("orphan.png")
	require.NoError(t, os.WriteFile(orphan, []byte("x"), 0o644))
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(orphan, old, old))

	_, err := run(t, e, "sweep", "--grace", "1h")
	require.NoError(t, err)
	_, statErr := os.Stat(orphan)
	assert.True(t, os.IsNotExist(statErr))
}
