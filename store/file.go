package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zerorone/xtool-memory/model"
)

// FileStore keeps one JSON document per item under a per-layer directory:
// <root>/<layer>/<id>.json. Records stay externally readable and forward
// compatible: unknown fields in a document are ignored on load.
type FileStore struct {
	root string
}

// NewFileStore creates the per-layer directories under root if needed.
func NewFileStore(root string) (*FileStore, error) {
	for _, layer := range model.Layers {
		if err := os.MkdirAll(filepath.Join(root, string(layer)), 0o750); err != nil {
			return nil, fmt.Errorf("store: init layer dir %s: %w", layer, err)
		}
	}
	return &FileStore{root: root}, nil
}

func (fs *FileStore) pathFor(layer model.Layer, id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("store: empty item id")
	}
	if strings.ContainsAny(id, "/\\") {
		return "", fmt.Errorf("store: invalid item id %q (contains path separator)", id)
	}
	if _, err := model.ParseLayer(string(layer)); err != nil {
		return "", err
	}
	return filepath.Join(fs.root, string(layer), id+".json"), nil
}

// Put writes the record atomically via a temporary file and rename, so a
// crash mid-write leaves either the old record or the new one, never a
// truncated document.
func (fs *FileStore) Put(ctx context.Context, item *model.Item) error {
	path, err := fs.pathFor(item.Layer, item.ID)
	if err != nil {
		return err
	}
	b, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", item.ID, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("store: rename %s: %w", path, err)
	}
	return nil
}

// Delete removes the record file. A missing file is not an error.
func (fs *FileStore) Delete(ctx context.Context, layer model.Layer, id string) error {
	path, err := fs.pathFor(layer, id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("store: delete %s: %w", path, err)
	}
	return nil
}

// Load reads every record in the layer directory. Unreadable or unparseable
// files are skipped and counted.
func (fs *FileStore) Load(ctx context.Context, layer model.Layer) ([]*model.Item, int, error) {
	if _, err := model.ParseLayer(string(layer)); err != nil {
		return nil, 0, err
	}
	dir := filepath.Join(fs.root, string(layer))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list %s: %w", dir, err)
	}

	var items []*model.Item
	skipped := 0
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			skipped++
			continue
		}
		var it model.Item
		if err := json.Unmarshal(b, &it); err != nil || it.ID == "" {
			skipped++
			continue
		}
		it.Layer = layer
		items = append(items, &it)
	}
	return items, skipped, nil
}

// Close is a no-op for the file backend.
func (fs *FileStore) Close() error { return nil }
