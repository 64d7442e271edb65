package blob

import (
	"context"
	"io"
)

// Store is the narrow contract the item image upload relies on: given a
// byte payload and a name hint it returns a stable retrievable URL. Items
// persist only the returned URL, never the bytes.
type Store interface {
	Put(ctx context.Context, nameHint string, r io.Reader) (string, error)
}
