package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/unkn0wn-root/restpad/internal/errdef"
)

// File keeps every key in one JSON object on disk. Each Set rewrites the file
// through a temp file and rename so readers never see a partial document.
type File struct {
	path string
	mu   sync.Mutex
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.readLocked()
	if err != nil {
		return "", false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.readLocked()
	if err != nil {
		// a corrupt file is replaced rather than blocking every write
		data = map[string]string{}
	}
	data[key] = value
	return f.persistLocked(data)
}

func (f *File) readLocked() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeFilesystem, err, "read store %q", f.path)
	}
	data := map[string]string{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, errdef.Wrap(errdef.CodeStorage, err, "decode store %q", f.path)
	}
	return data, nil
}

func (f *File) persistLocked(data map[string]string) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "create store dir")
	}

	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errdef.Wrap(errdef.CodeStorage, err, "encode store")
	}

	tmp, err := os.CreateTemp(dir, ".restpad-store-*.tmp")
	if err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "create store tmp")
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(payload); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, errors.Join(err, tmp.Close()), "write store tmp")
	}
	if err := tmp.Close(); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "close store tmp")
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "replace store file")
	}
	return nil
}
