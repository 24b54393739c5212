package vos

import (
	"path"

	"github.com/spf13/afero"
)

// VFS implements a virtual filesystem.
type VFS = afero.Fs

// NewMemFS creates an in-memory filesystem holding the given directories.
func NewMemFS(dirs ...string) (VFS, error) {
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/", 0755); err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := fs.MkdirAll(Resolve("/", dir), 0755); err != nil {
			return nil, err
		}
	}
	return fs, nil
}

// NewOverlayFS exposes a host directory read-only as the root of the
// filesystem, writes are kept in memory.
func NewOverlayFS(root string) VFS {
	base := afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), root))
	return afero.NewCopyOnWriteFs(base, afero.NewMemMapFs())
}

// Resolve returns the absolute, cleaned form of name relative to wd.
func Resolve(wd, name string) string {
	if path.IsAbs(name) {
		return path.Clean(name)
	}
	return path.Join("/", wd, name)
}
