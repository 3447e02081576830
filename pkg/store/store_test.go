package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/qrsheet/pkg/errors"
)

func TestSave(t *testing.T) {
	root := t.TempDir()
	s, err := New(filepath.Join(root, "svg"), filepath.Join(root, "png", "nested"))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if err := s.Save("P0301", []byte("<svg/>"), []byte("png")); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if got, _ := os.ReadFile(filepath.Join(root, "svg", "P0301.svg")); string(got) != "<svg/>" {
		t.Errorf("svg file = %q", got)
	}
	if got, _ := os.ReadFile(s.PNGPath("P0301")); string(got) != "png" {
		t.Errorf("png file = %q", got)
	}

	// Reruns overwrite.
	if err := s.Save("P0301", []byte("<svg></svg>"), []byte("png2")); err != nil {
		t.Fatalf("second Save() error: %v", err)
	}
	if got, _ := os.ReadFile(s.SVGPath("P0301")); string(got) != "<svg></svg>" {
		t.Errorf("svg file after rerun = %q", got)
	}
}

func TestNewIdempotent(t *testing.T) {
	dir := t.TempDir()
	for range 2 {
		if _, err := New(dir, dir); err != nil {
			t.Fatalf("New() error: %v", err)
		}
	}
}

func TestNewPersistError(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := New(filepath.Join(file, "svg"), t.TempDir())
	if !errors.Is(err, errors.ErrCodePersist) {
		t.Errorf("New() error = %v, want PERSIST", err)
	}
}

func TestSaveRejectsUnsafeCode(t *testing.T) {
	s, _ := New(t.TempDir(), t.TempDir())
	for _, code := range []string{"", "../P0301", "a/b"} {
		if err := s.Save(code, nil, nil); !errors.Is(err, errors.ErrCodeInvalidCode) {
			t.Errorf("Save(%q) error = %v, want INVALID_CODE", code, err)
		}
	}
}
