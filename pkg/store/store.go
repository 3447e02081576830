// Package store persists per-code unit files: <svg_dir>/<code>.svg and
// <png_dir>/<code>.png. Reruns overwrite existing files.
package store

import (
	"os"
	"path/filepath"

	"github.com/matzehuels/qrsheet/pkg/errors"
)

// Store writes unit files below two directories.
type Store struct {
	svgDir string
	pngDir string
}

// New creates both directories (if missing) and returns a Store.
func New(svgDir, pngDir string) (*Store, error) {
	for _, dir := range []string{svgDir, pngDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(errors.ErrCodePersist, err, "create directory").For(dir)
		}
	}
	return &Store{svgDir: svgDir, pngDir: pngDir}, nil
}

// SVGPath returns where the SVG for code is written.
func (s *Store) SVGPath(code string) string { return filepath.Join(s.svgDir, code+".svg") }

// PNGPath returns where the PNG for code is written.
func (s *Store) PNGPath(code string) string { return filepath.Join(s.pngDir, code+".png") }

// Save writes both files for code. The code must be a safe file name.
func (s *Store) Save(code string, svg, png []byte) error {
	if err := errors.ValidateCode(code); err != nil {
		return err
	}
	if err := write(s.SVGPath(code), svg); err != nil {
		return errors.Wrap(errors.ErrCodePersist, err, "write svg").For(code)
	}
	if err := write(s.PNGPath(code), png); err != nil {
		return errors.Wrap(errors.ErrCodePersist, err, "write png").For(code)
	}
	return nil
}

func write(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}
