package memkv

import (
	"fmt"

	"github.com/cognicore/lexspan/pkg/lexspan/internalerr"
)

var errClosed = fmt.Errorf("memkv: closed: %w", internalerr.ErrStoreUnavailable)
