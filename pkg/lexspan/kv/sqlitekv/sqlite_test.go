package sqlitekv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/lexspan/pkg/lexspan/kv"
	"github.com/cognicore/lexspan/pkg/lexspan/kv/kvtest"
)

func TestStoreContract(t *testing.T) {
	kvtest.Run(t, func(t *testing.T) kv.Store {
		s, err := Open(context.Background(), filepath.Join(t.TempDir(), "kv.db"))
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestCommitVisibleToOtherHandle(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	w, err := Open(ctx, path)
	require.NoError(t, err)
	defer w.Close()
	r, err := Open(ctx, path)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, w.Put(ctx, []byte("k"), []byte("v")))
	_, ok, err := r.Get(ctx, []byte("k"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, w.Commit(ctx))
	v, ok, err := r.Get(ctx, []byte("k"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)
}
