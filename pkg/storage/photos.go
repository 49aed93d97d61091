// Package storage persists photo attachments on the local filesystem. The
// returned path is what gets stored in the memory record's photo reference.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type PhotoStore struct {
	dir string
	now func() time.Time
}

func NewPhotoStore(dir string) *PhotoStore {
	return &PhotoStore{dir: dir, now: time.Now}
}

// SavePhoto writes the attachment under <dir>/<userID>_<unix>.jpg and returns
// the path.
func (p *PhotoStore) SavePhoto(userID int64, data []byte) (string, error) {
	if err := os.MkdirAll(p.dir, 0755); err != nil {
		return "", fmt.Errorf("create photos directory: %w", err)
	}

	path := filepath.Join(p.dir, fmt.Sprintf("%d_%d.jpg", userID, p.now().Unix()))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write photo: %w", err)
	}
	return path, nil
}
