package memkv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cognicore/lexspan/pkg/lexspan/internalerr"
	"github.com/cognicore/lexspan/pkg/lexspan/kv"
	"github.com/cognicore/lexspan/pkg/lexspan/kv/kvtest"
)

func TestStoreContract(t *testing.T) {
	kvtest.Run(t, func(t *testing.T) kv.Store {
		return New()
	})
}

func TestClosedStore(t *testing.T) {
	s := New()
	require.NoError(t, s.Close())

	_, _, err := s.Get(context.Background(), []byte("a"))
	require.ErrorIs(t, err, internalerr.ErrStoreUnavailable)
	require.ErrorIs(t, s.Put(context.Background(), []byte("a"), nil), internalerr.ErrStoreUnavailable)
}
