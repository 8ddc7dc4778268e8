package export

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var ErrStorageDenied = errors.New("storage access denied")

// FileWriter persists exported bytes and returns where they ended up.
type FileWriter interface {
	WriteFile(name string, data []byte) (string, error)
}

// DirWriter writes exports into a single directory. Existing files are
// never overwritten; a numeric suffix is added instead.
type DirWriter struct {
	Dir string
}

func (w DirWriter) WriteFile(name string, data []byte) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", storageErr("create export dir", err)
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 0; ; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d%s", base, i, ext)
		}
		path := filepath.Join(w.Dir, candidate)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", storageErr("create "+candidate, err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(path)
			return "", storageErr("write "+candidate, err)
		}
		if err := f.Close(); err != nil {
			return "", storageErr("close "+candidate, err)
		}
		return filepath.Abs(path)
	}
}

// Check verifies that the directory exists or can be created and is writable.
func (w DirWriter) Check() error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return storageErr("create export dir", err)
	}
	f, err := os.CreateTemp(w.Dir, ".probe-*")
	if err != nil {
		return storageErr("probe export dir", err)
	}
	f.Close()
	return os.Remove(f.Name())
}

func storageErr(op string, err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%s: %w: %w", op, ErrStorageDenied, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// FileName builds the export file name for t, e.g. Sketch_1700000000.png.
func FileName(t time.Time, f Format) string {
	return fmt.Sprintf("Sketch_%d.%s", t.Unix(), f.Ext())
}
