package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "letter.pdf")

	if got := UniquePath(target); got != target {
		t.Errorf("UniquePath(free) = %s, want %s", got, target)
	}

	write(t, target, "x")
	want2 := filepath.Join(dir, "letter-2.pdf")
	if got := UniquePath(target); got != want2 {
		t.Errorf("UniquePath(taken) = %s, want %s", got, want2)
	}

	write(t, want2, "x")
	want3 := filepath.Join(dir, "letter-3.pdf")
	if got := UniquePath(target); got != want3 {
		t.Errorf("UniquePath(taken twice) = %s, want %s", got, want3)
	}
}

func TestCopyFileCreatesParents(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.pdf")
	dst := filepath.Join(dir, "deep", "nested", "dst.pdf")
	write(t, src, "content")

	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "content" {
		t.Errorf("copied content = %q, err %v", data, err)
	}
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.pdf")
	dst := filepath.Join(dir, "sub", "dst.pdf")
	write(t, src, "content")

	if err := MoveFile(src, dst); err != nil {
		t.Fatalf("MoveFile: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source still exists after move")
	}
	if _, err := os.Stat(dst); err != nil {
		t.Errorf("destination missing after move: %v", err)
	}
}

func TestCopyTree(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "copy")
	if err := os.MkdirAll(filepath.Join(src, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	write(t, filepath.Join(src, "a.pdf"), "a")
	write(t, filepath.Join(src, "sub", "b.pdf"), "b")

	if err := CopyTree(src, dst); err != nil {
		t.Fatalf("CopyTree: %v", err)
	}
	for _, rel := range []string{"a.pdf", filepath.Join("sub", "b.pdf")} {
		if _, err := os.Stat(filepath.Join(dst, rel)); err != nil {
			t.Errorf("missing %s in copy: %v", rel, err)
		}
	}
}

func TestHashes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.pdf")
	write(t, path, "hello")

	// Known digests of "hello".
	sha256Want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got, err := Sha256File(path); err != nil || got != sha256Want {
		t.Errorf("Sha256File = %s, %v", got, err)
	}
	sha1Want := "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d"
	if got, err := Sha1File(path); err != nil || got != sha1Want {
		t.Errorf("Sha1File = %s, %v", got, err)
	}
}

func TestShortHash(t *testing.T) {
	a := ShortHash("one")
	b := ShortHash("two")
	if len(a) != 8 || len(b) != 8 {
		t.Errorf("ShortHash lengths = %d, %d, want 8", len(a), len(b))
	}
	if a == b {
		t.Error("distinct inputs produced the same tail")
	}
	if a != ShortHash("one") {
		t.Error("ShortHash is not deterministic")
	}
}
