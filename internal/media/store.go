package media

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ddproperty/ddproperty-api/internal/types"
	"github.com/google/uuid"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
	".pdf":  true,
}

// Store writes uploads into the staging directory and removes placed files.
type Store struct {
	relocator *Relocator
	maxBytes  int64
}

// NewStore stages uploads under the relocator's root. maxBytes <= 0 disables
// the size check.
func NewStore(relocator *Relocator, maxBytes int64) *Store {
	return &Store{relocator: relocator, maxBytes: maxBytes}
}

// SaveStaged copies an uploaded file into staging under a fresh name and
// returns the URL it is served at.
func (s *Store) SaveStaged(fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExtensions[ext] {
		return "", types.BadRequest(fmt.Sprintf("File type %q is not allowed", ext))
	}
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return "", types.BadRequest(fmt.Sprintf("File %s exceeds the %d byte limit", fh.Filename, s.maxBytes))
	}

	src, err := fh.Open()
	if err != nil {
		return "", types.Internal("Error reading upload", err)
	}
	defer src.Close()

	dir := filepath.Join(s.relocator.Root(), filepath.FromSlash(StagingDir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", types.Internal("Error preparing upload directory", err)
	}

	name := uuid.NewString() + ext
	dst, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", types.Internal("Error saving upload", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", types.Internal("Error saving upload", err)
	}
	if err := dst.Close(); err != nil {
		return "", types.Internal("Error saving upload", err)
	}

	return s.relocator.StagingURL(name), nil
}

// RemovePropertyDir deletes every file placed for a property.
func (s *Store) RemovePropertyDir(propertyID uint) error {
	return os.RemoveAll(s.relocator.PropertyDir(propertyID))
}

// RemoveByURL deletes the file a media URL points at. URLs outside the
// media prefix are ignored, as is a file that is already gone.
func (s *Store) RemoveByURL(url string) error {
	rel, ok := s.relativePath(url)
	if !ok {
		return nil
	}
	err := os.Remove(filepath.Join(s.relocator.Root(), filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Store) relativePath(url string) (string, bool) {
	marker := s.relocator.Prefix() + "/"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return "", false
	}
	rel := path.Clean("/" + url[idx+len(marker):])
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" || !strings.HasPrefix(rel, "properties/") {
		return "", false
	}
	return rel, true
}
