package tokenstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-admin-console/credentials"
	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var _ Store = (*FileStore)(nil)

// FileStore keeps the bundle in a small JSON document on disk. The document
// maps storage keys to serialized bundles so several consoles can share a file.
type FileStore struct {
	path string
	key  string
	lock sync.Mutex
}

// NewFileStore returns a store writing to path under key. An empty key uses DefaultKey.
func NewFileStore(path, key string) *FileStore {
	if key == "" {
		key = DefaultKey
	}
	return &FileStore{path: path, key: key}
}

func (fs *FileStore) Get(_ context.Context) (*credentials.Bundle, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	doc, err := fs.read()
	if err != nil {
		return nil, err
	}
	raw, ok := doc[fs.key]
	if !ok {
		return nil, nil
	}
	var bundle credentials.Bundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		log.Warn().Err(err).Str("key", fs.key).Msg("Discarding unreadable credential bundle")
		return nil, nil
	}
	return &bundle, nil
}

func (fs *FileStore) Set(_ context.Context, bundle *credentials.Bundle) error {
	if bundle == nil {
		return errors.New("[FileStore.Set] bundle is required")
	}
	fs.lock.Lock()
	defer fs.lock.Unlock()

	doc, err := fs.read()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(bundle)
	if err != nil {
		return errors.Wrap(err, "[FileStore.Set] marshal bundle")
	}
	doc[fs.key] = raw
	return fs.write(doc)
}

func (fs *FileStore) Clear(_ context.Context) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	doc, err := fs.read()
	if err != nil {
		return err
	}
	if _, ok := doc[fs.key]; !ok {
		return nil
	}
	delete(doc, fs.key)
	return fs.write(doc)
}

func (fs *FileStore) read() (map[string]json.RawMessage, error) {
	doc := make(map[string]json.RawMessage)
	data, err := os.ReadFile(fs.path)
	if apperrors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[FileStore] read")
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Warn().Err(err).Str("path", fs.path).Msg("Credential file is corrupt, starting empty")
		return make(map[string]json.RawMessage), nil
	}
	return doc, nil
}

// write replaces the file atomically so a crash never leaves half a document.
func (fs *FileStore) write(doc map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[FileStore] marshal")
	}
	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "[FileStore] mkdir")
	}
	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return errors.Wrap(err, "[FileStore] create temp")
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[FileStore] chmod")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[FileStore] write")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "[FileStore] close")
	}
	return errors.Wrap(os.Rename(tmp.Name(), fs.path), "[FileStore] rename")
}
