package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// Store persists each key as one file under dir. Saves are atomic: the blob
// is written and synced to a temp file, renamed over the target and the
// directory synced, so a crash never leaves half a cart.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create cart dir %q: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	blob, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return blob, true, nil
}

func (s *Store) Save(ctx context.Context, key string, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return renameio.WriteFile(s.path(key), blob, 0o600)
}

// path maps a key such as "@GoMarketplace:products" to a safe file name.
func (s *Store) path(key string) string {
	return filepath.Join(s.dir, url.QueryEscape(key)+".json")
}
