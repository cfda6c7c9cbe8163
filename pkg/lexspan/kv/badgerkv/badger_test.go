package badgerkv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/lexspan/pkg/lexspan/kv"
	"github.com/cognicore/lexspan/pkg/lexspan/kv/kvtest"
)

func TestStoreContract(t *testing.T) {
	kvtest.Run(t, func(t *testing.T) kv.Store {
		s, err := Open(InMemoryConfig())
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	require.Error(t, err)
}

// TestPersistence verifies committed data survives a reopen and staged data
// does not.
func TestPersistence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(DefaultConfig(dir))
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, []byte("committed"), []byte("1")))
	require.NoError(t, s.Commit(ctx))
	require.NoError(t, s.Put(ctx, []byte("staged"), []byte("2")))
	require.NoError(t, s.Close())

	s2, err := Open(DefaultConfig(dir))
	require.NoError(t, err)
	defer s2.Close()

	_, ok, err := s2.Get(ctx, []byte("committed"))
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = s2.Get(ctx, []byte("staged"))
	require.NoError(t, err)
	assert.False(t, ok)
}
