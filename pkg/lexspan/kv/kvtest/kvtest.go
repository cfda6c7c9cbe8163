// Package kvtest holds a conformance suite shared by the kv.Store backends.
package kvtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/lexspan/pkg/lexspan/kv"
)

// Run exercises the kv.Store contract against stores produced by open.
func Run(t *testing.T, open func(t *testing.T) kv.Store) {
	t.Run("StagedUntilCommit", func(t *testing.T) {
		ctx := context.Background()
		s := open(t)

		require.NoError(t, s.Put(ctx, []byte("a"), []byte("1")))
		_, ok, err := s.Get(ctx, []byte("a"))
		require.NoError(t, err)
		assert.False(t, ok, "staged write must not be visible before commit")

		require.NoError(t, s.Commit(ctx))
		v, ok, err := s.Get(ctx, []byte("a"))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("1"), v)
	})

	t.Run("Overwrite", func(t *testing.T) {
		ctx := context.Background()
		s := open(t)

		require.NoError(t, s.Put(ctx, []byte("k"), []byte("old")))
		require.NoError(t, s.Commit(ctx))
		require.NoError(t, s.Put(ctx, []byte("k"), []byte("new")))
		require.NoError(t, s.Commit(ctx))

		v, ok, err := s.Get(ctx, []byte("k"))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []byte("new"), v)
	})

	t.Run("SeekOrdered", func(t *testing.T) {
		ctx := context.Background()
		s := open(t)

		for _, k := range []string{"e/new york", "e/new", "m/meta", "e/paris", "e/new york city"} {
			require.NoError(t, s.Put(ctx, []byte(k), []byte(k)))
		}
		require.NoError(t, s.Commit(ctx))

		var got []string
		require.NoError(t, s.Seek(ctx, []byte("e/new "), func(k, v []byte) bool {
			got = append(got, string(k))
			return len(got) < 2
		}))
		assert.Equal(t, []string{"e/new york", "e/new york city"}, got)

		got = nil
		require.NoError(t, kv.ScanPrefix(ctx, s, []byte("e/"), func(k, v []byte) bool {
			got = append(got, string(k))
			return true
		}))
		assert.Equal(t, []string{"e/new", "e/new york", "e/new york city", "e/paris"}, got)
	})

	t.Run("MissingKey", func(t *testing.T) {
		ctx := context.Background()
		s := open(t)

		v, ok, err := s.Get(ctx, []byte("nope"))
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, v)
	})
}
