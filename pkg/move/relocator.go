package move

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ritzau/slnkit/pkg/logging"
)

// DiskRelocator moves a project's directory, or renames the project file
// when the directory stays the same.
type DiskRelocator struct{}

var _ Relocator = DiskRelocator{}

// Relocate moves the directory of oldPath to the directory of newPath and
// renames the project file if its name changes. An existing destination
// directory must be empty.
func (DiskRelocator) Relocate(oldPath, newPath string) error {
	oldDir, newDir := filepath.Dir(oldPath), filepath.Dir(newPath)

	if oldDir == newDir {
		logging.Debug("renaming project file", "from", oldPath, "to", newPath)
		return os.Rename(oldPath, newPath)
	}
	if isBelow(newDir, oldDir) {
		return fmt.Errorf("cannot move %s into its own subdirectory %s", oldDir, newDir)
	}

	entries, err := os.ReadDir(newDir)
	switch {
	case err == nil && len(entries) > 0:
		return fmt.Errorf("destination %s is not empty", newDir)
	case err == nil:
		if err := os.Remove(newDir); err != nil {
			return err
		}
	case !os.IsNotExist(err):
		return err
	}

	if err := os.MkdirAll(filepath.Dir(newDir), 0o755); err != nil {
		return err
	}
	logging.Debug("moving project directory", "from", oldDir, "to", newDir)
	if err := os.Rename(oldDir, newDir); err != nil {
		return err
	}

	moved := filepath.Join(newDir, filepath.Base(oldPath))
	if moved != newPath {
		return os.Rename(moved, newPath)
	}
	return nil
}
