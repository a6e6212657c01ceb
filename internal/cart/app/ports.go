package app

import (
	"context"
)

// Bridge is the durable key-value store the cart is mirrored to. The whole
// cart lives under a single key and every save rewrites it.
type Bridge interface {
	Load(ctx context.Context, key string) (blob []byte, found bool, err error)
	Save(ctx context.Context, key string, blob []byte) error
}
