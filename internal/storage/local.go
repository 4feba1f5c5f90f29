// Package storage persists uploaded media files.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileStore saves uploaded files and returns the public path they are
// served under.
type FileStore interface {
	Save(folder, filename string, r io.Reader) (string, error)
}

// Local writes uploads to a directory on disk, served statically under
// /uploads.
type Local struct {
	BaseDir string
}

func NewLocal(baseDir string) *Local { return &Local{BaseDir: baseDir} }

// Save stores the file under baseDir/folder with a random name that
// keeps the original extension. The folder segment is flattened to its
// base name so callers cannot climb out of the upload directory.
func (l *Local) Save(folder, filename string, r io.Reader) (string, error) {
	folder = filepath.Base(strings.TrimSpace(folder))
	if folder == "" || folder == "." || folder == string(filepath.Separator) {
		folder = "default"
	}
	dir := filepath.Join(l.BaseDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return "/uploads/" + folder + "/" + name, nil
}
