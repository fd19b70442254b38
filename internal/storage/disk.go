package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

type DiskStorage struct {
	// BasePath is a directory writable by the current process
	BasePath  string
	dirs      map[string]bool
	dirsMutex sync.Mutex
}

func NewDiskStorage(basePath string) (*DiskStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, errors.Wrap(err, "create media root")
	}
	return &DiskStorage{
		BasePath: basePath,
		dirs:     make(map[string]bool, 10),
	}, nil
}

func (s *DiskStorage) createDir(dir string) error {
	s.dirsMutex.Lock()
	defer s.dirsMutex.Unlock()

	if ok := s.dirs[dir]; ok {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	s.dirs[dir] = true
	return nil
}

func (s *DiskStorage) getFullPath(p string) (string, error) {
	clean, err := CleanPath(p)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.BasePath, filepath.FromSlash(clean)), nil
}

func (s *DiskStorage) Save(_ context.Context, p string, reader io.Reader, _ string) error {
	fileName, err := s.getFullPath(p)
	if err != nil {
		return err
	}
	if err := s.createDir(filepath.Dir(fileName)); err != nil {
		return errors.Wrap(err, "create media dir")
	}
	file, err := os.Create(fileName)
	if err != nil {
		return errors.Wrap(err, "create media file")
	}
	_, err = io.Copy(file, reader)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return errors.Wrapf(err, "write %s", p)
}

func (s *DiskStorage) Open(_ context.Context, p string) (io.ReadCloser, error) {
	fileName, err := s.getFullPath(p)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fileName)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", p)
	}
	if info, err := file.Stat(); err == nil && info.IsDir() {
		file.Close()
		return nil, ErrNotFound
	}
	return file, nil
}

func (s *DiskStorage) Delete(_ context.Context, p string) error {
	fileName, err := s.getFullPath(p)
	if err != nil {
		return err
	}
	err = os.Remove(fileName)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return errors.Wrapf(err, "delete %s", p)
}
