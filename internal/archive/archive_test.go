package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ulikunitz/xz"
)

func writeZipFixture(t *testing.T, path string) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range map[string]string{"a.txt": "alpha", "sub/b.txt": "beta"} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestExtractZip(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "fixture.zip")
	writeZipFixture(t, archivePath)

	dest := filepath.Join(dir, "out")
	if err := Extract(context.Background(), archivePath, dest); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	for name, want := range map[string]string{"a.txt": "alpha", filepath.Join("sub", "b.txt"): "beta"} {
		data, err := os.ReadFile(filepath.Join(dest, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if string(data) != want {
			t.Errorf("%s = %q, want %q", name, data, want)
		}
	}

	var files []string
	err := filepath.WalkDir(dest, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(dest, path)
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Errorf("expected exactly 2 files, got %v", files)
	}
}

func writeTarXzFixture(t *testing.T, path string, tarBody []byte) {
	t.Helper()
	var buf bytes.Buffer
	xw, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := xw.Write(tarBody); err != nil {
		t.Fatal(err)
	}
	if err := xw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func tarFixture(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	body := []byte("hello")
	if err := tw.WriteHeader(&tar.Header{Name: "dir/hello.txt", Mode: 0o644, Size: int64(len(body)), Typeflag: tar.TypeReg}); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write(body); err != nil {
		t.Fatal(err)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtractTarXzRemovesIntermediateOnSuccess(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "fixture.tar.xz")
	writeTarXzFixture(t, archivePath, tarFixture(t))

	dest := filepath.Join(dir, "out")
	if err := Extract(context.Background(), archivePath, dest); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dest, "dir", "hello.txt"))
	if err != nil {
		t.Fatalf("read extracted file: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("extracted contents = %q", data)
	}

	if _, err := os.Stat(filepath.Join(dir, "fixture.tar")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("intermediate tar not removed")
	}
}

func TestExtractTarXzRemovesIntermediateOnFailure(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "fixture.tar.xz")
	// Valid xz stream wrapping bytes that are not a tar archive.
	writeTarXzFixture(t, archivePath, []byte("this is not a tar archive at all, not even close"))

	dest := filepath.Join(dir, "out")
	if err := Extract(context.Background(), archivePath, dest); err == nil {
		t.Fatalf("expected untar failure")
	}

	if _, err := os.Stat(filepath.Join(dir, "fixture.tar")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("intermediate tar not removed after failure")
	}
}

func TestExtractUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "fixture.rar")
	if err := os.WriteFile(archivePath, []byte("whatever"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := Extract(context.Background(), archivePath, filepath.Join(dir, "out"))
	var unsupported *UnsupportedFormatError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedFormatError, got %v", err)
	}
	if unsupported.Ext != ".rar" {
		t.Errorf("ext = %q, want .rar", unsupported.Ext)
	}
}

func TestExtractRejectsEscapingEntries(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "evil.zip")

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("../escape.txt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("nope")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(archivePath, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Extract(context.Background(), archivePath, filepath.Join(dir, "out")); err == nil {
		t.Fatalf("expected traversal rejection")
	}
}
