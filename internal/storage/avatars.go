package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var allowedAvatarExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// AvatarStore writes uploaded avatar images to local disk and returns the
// public URL path they are served from.
type AvatarStore struct {
	dir     string
	urlBase string
}

func NewAvatarStore(dir, urlBase string) (*AvatarStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating avatar directory: %w", err)
	}
	return &AvatarStore{dir: dir, urlBase: strings.TrimRight(urlBase, "/")}, nil
}

// Save streams the upload to disk under a generated name. The original
// filename contributes only its extension; everything else is discarded so
// path traversal in the upload name is inert.
func (s *AvatarStore) Save(userID int64, originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedAvatarExtensions[ext] {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}

	name := fmt.Sprintf("avatar-%d-%d-%s%s", userID, time.Now().Unix(), uuid.NewString()[:8], ext)

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("creating avatar file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("writing avatar file: %w", err)
	}

	return s.urlBase + "/" + name, nil
}

// Remove deletes a previously saved avatar given its public URL path.
// Unknown or external paths are ignored.
func (s *AvatarStore) Remove(avatarURL string) error {
	if avatarURL == "" || !strings.HasPrefix(avatarURL, s.urlBase+"/") {
		return nil
	}

	name := filepath.Base(strings.TrimPrefix(avatarURL, s.urlBase+"/"))
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing avatar file: %w", err)
	}
	return nil
}
