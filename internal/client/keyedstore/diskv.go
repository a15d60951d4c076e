package keyedstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/peterbourgon/diskv/v3"
)

// DiskvBackend stores one file per key below a base directory. Key segments
// separated by "/" become directories.
type DiskvBackend struct {
	d *diskv.Diskv
}

func NewDiskvBackend(basePath string) *DiskvBackend {
	return &DiskvBackend{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	})}
}

func (b *DiskvBackend) Get(_ context.Context, key string) ([]byte, error) {
	val, err := b.d.Read(key)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("diskv read %s: %w", key, err)
	}
	return val, nil
}

func (b *DiskvBackend) Set(_ context.Context, key string, value []byte) error {
	if err := b.d.Write(key, value); err != nil {
		return fmt.Errorf("diskv write %s: %w", key, err)
	}
	return nil
}

func (b *DiskvBackend) Delete(_ context.Context, key string) error {
	if !b.d.Has(key) {
		return nil
	}
	if err := b.d.Erase(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("diskv erase %s: %w", key, err)
	}
	return nil
}

// Keys lists every stored key. Used by tests and diagnostics.
func (b *DiskvBackend) Keys(ctx context.Context) []string {
	var keys []string
	for k := range b.d.Keys(ctx.Done()) {
		keys = append(keys, k)
	}
	return keys
}

func keyToPathTransform(key string) *diskv.PathKey {
	parts := strings.Split(key, "/")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	if len(pathKey.Path) == 0 {
		return pathKey.FileName
	}
	return strings.Join(pathKey.Path, "/") + "/" + pathKey.FileName
}
