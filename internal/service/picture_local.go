package service

import (
	"io"
	"os"
	"path/filepath"
)

type localBackend struct {
	dir string
}

func (b *localBackend) Save(name string, data []byte) error {
	return os.WriteFile(filepath.Join(b.dir, name), data, 0o644)
}

func (b *localBackend) Open(name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(b.dir, name))
}

func (b *localBackend) Remove(name string) error {
	return os.Remove(filepath.Join(b.dir, name))
}
