package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ytget/mucache/internal/model"
	"github.com/ytget/mucache/internal/platform"
)

// SidecarSuffix is appended to a video file name to form its metadata path
const SidecarSuffix = ".metadata.json"

// SidecarPath returns the metadata path for the video filename in dir
func SidecarPath(dir, filename string) string {
	return filepath.Join(dir, filename+SidecarSuffix)
}

// WriteSidecar stores metadata next to filename
func WriteSidecar(dir, filename string, meta model.Metadata) error {
	if err := platform.WriteJSONAtomic(SidecarPath(dir, filename), meta); err != nil {
		return fmt.Errorf("failed to write metadata for %s: %w", filename, err)
	}
	return nil
}

// ReadSidecar loads the metadata stored next to filename. The second result
// is false when no sidecar exists.
func ReadSidecar(dir, filename string) (model.Metadata, bool, error) {
	var meta model.Metadata
	if err := platform.ReadJSON(SidecarPath(dir, filename), &meta); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return meta, true, nil
}

// MoveSidecar renames the sidecar of from to belong to to, if one exists
func MoveSidecar(dir, from, to string) error {
	src := SidecarPath(dir, from)
	if !platform.FileExists(src) {
		return nil
	}
	return os.Rename(src, SidecarPath(dir, to))
}
