package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dfryer1193/pictures/api"
	"github.com/dfryer1193/pictures/picture/domain"
)

type env struct {
	pictureDir string
}

func setupEnv(t *testing.T) env {
	t.Helper()
	pictureDir := filepath.Join(t.TempDir(), "pictures")

	t.Setenv("PICTURE_CONFIG_FILE", "")
	t.Setenv("PICTURE_SAVE_DIRECTORY", pictureDir)
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("SQLITE_DB_PATH", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("PORT", "")

	return env{pictureDir: pictureDir}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runApp(t, args...)
	return out, err
}

func runApp(t *testing.T, args ...string) (string, *app, error) {
	t.Helper()
	root, a := newRootCommand()

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err := execute(root, a)
	return out.String(), a, err
}

func writeJPEG(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2)), nil); err != nil {
		t.Fatalf("jpeg.Encode() error = %v", err)
	}
	path := filepath.Join(t.TempDir(), "source.jpg")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestImportGetListExists(t *testing.T) {
	e := setupEnv(t)

	out, err := run(t, "import", "--snap", "S1", writeJPEG(t))
	if err != nil {
		t.Fatalf("import error = %v", err)
	}

	var saved []api.SavedPicture
	if err := json.Unmarshal([]byte(out), &saved); err != nil {
		t.Fatalf("import output %q: %v", out, err)
	}
	if len(saved) != 1 || saved[0].ID == "" || saved[0].Revision == "" {
		t.Fatalf("import output = %+v", saved)
	}
	id := saved[0].ID

	if _, err := os.Stat(filepath.Join(e.pictureDir, "S1", id+".jpg")); err != nil {
		t.Errorf("picture file not written: %v", err)
	}

	out, err = run(t, "get", id)
	if err != nil {
		t.Fatalf("get error = %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("get output %q: %v", out, err)
	}
	if doc["_id"] != id || doc["snap_id"] != "S1" || doc["type"] != "picture" {
		t.Errorf("get output = %v", doc)
	}

	out, err = run(t, "list", "--snap", "S1")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	var pictures map[string]any
	if err := json.Unmarshal([]byte(out), &pictures); err != nil {
		t.Fatalf("list output %q: %v", out, err)
	}
	if _, ok := pictures[id]; !ok || len(pictures) != 1 {
		t.Errorf("list output = %v", pictures)
	}

	out, err = run(t, "list", "--field", "snap_id=S2")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if strings.TrimSpace(out) != "{}" {
		t.Errorf("list for other snap = %q, want {}", out)
	}

	out, err = run(t, "exists", id)
	if err != nil {
		t.Fatalf("exists error = %v", err)
	}
	if strings.TrimSpace(out) != "true" {
		t.Errorf("exists = %q, want true", out)
	}

	out, err = run(t, "exists", "missing")
	if err != nil {
		t.Fatalf("exists error = %v", err)
	}
	if strings.TrimSpace(out) != "false" {
		t.Errorf("exists = %q, want false", out)
	}
}

func TestGetMissing(t *testing.T) {
	setupEnv(t)

	if _, err := run(t, "get", "missing"); err == nil {
		t.Error("get of a missing id should fail")
	}
}

func TestFailedCommandClosesStore(t *testing.T) {
	setupEnv(t)

	_, a, err := runApp(t, "get", "missing")
	if err == nil {
		t.Fatal("get of a missing id should fail")
	}
	if a.backend == nil {
		t.Fatal("backend was not opened")
	}

	_, err = a.backend.Store.Get(context.Background(), "missing")
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get() after the command error = %v, want closed database error", err)
	}
}

func TestPath(t *testing.T) {
	e := setupEnv(t)
	snapDir := filepath.Join(e.pictureDir, "S1")

	out, err := run(t, "path", "--snap", "S1", "abc")
	if err != nil {
		t.Fatalf("path error = %v", err)
	}
	var got api.PicturePath
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("path output %q: %v", out, err)
	}
	if got.FileName != "abc.jpg" || got.Path != filepath.Join(snapDir, "abc.jpg") {
		t.Errorf("path output = %+v", got)
	}
	if _, err := os.Stat(snapDir); !os.IsNotExist(err) {
		t.Error("path without --create should not create the snap directory")
	}

	if _, err := run(t, "path", "--snap", "S1", "--create", "abc"); err != nil {
		t.Fatalf("path --create error = %v", err)
	}
	if info, err := os.Stat(snapDir); err != nil || !info.IsDir() {
		t.Errorf("path --create did not create %s", snapDir)
	}
}

func TestPathOutsidePictureDirectory(t *testing.T) {
	e := setupEnv(t)

	if _, err := run(t, "path", "--snap", "../..", "--create", "abc"); err == nil {
		t.Error("path with a snap outside the picture directory should fail")
	}
	if _, err := os.Stat(e.pictureDir); !os.IsNotExist(err) {
		t.Error("rejected path should not create any directory")
	}
}

func TestInvalidConfig(t *testing.T) {
	setupEnv(t)
	t.Setenv("STORE_BACKEND", "couch")

	if _, err := run(t, "exists", "a"); err == nil {
		t.Error("unknown backend should fail")
	}
}
