package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOSFilesystem_EnsureDir(t *testing.T) {
	fsys := NewOSFilesystem()
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	if err := fsys.EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if !info.IsDir() {
		t.Errorf("%s is not a directory", dir)
	}

	if err := fsys.EnsureDir(dir); err != nil {
		t.Errorf("second EnsureDir() error = %v", err)
	}
}

func TestOSFilesystem_EnsureDirOverFile(t *testing.T) {
	fsys := NewOSFilesystem()
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if err := fsys.EnsureDir(file); err == nil {
		t.Error("EnsureDir() over a regular file should fail")
	}
}

func TestOSFilesystem_Join(t *testing.T) {
	got := NewOSFilesystem().Join("base", "snap", "pic.jpg")
	if want := filepath.Join("base", "snap", "pic.jpg"); got != want {
		t.Errorf("Join() = %q, want %q", got, want)
	}
}
