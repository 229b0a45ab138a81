package projectfs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCreateDirectory(t *testing.T) {
	root := t.TempDir()
	pfs := New(root)

	created, err := pfs.CreateDirectory("order")
	if err != nil {
		t.Fatalf("CreateDirectory failed: %v", err)
	}
	if !created {
		t.Error("Expected the directory to be created")
	}

	created, err = pfs.CreateDirectory("order")
	if err != nil {
		t.Fatalf("CreateDirectory on existing directory failed: %v", err)
	}
	if created {
		t.Error("Existing directory should report created=false")
	}
}

func TestCreateDirectory_MissingParent(t *testing.T) {
	pfs := New(t.TempDir())

	if _, err := pfs.CreateDirectory("order/pkg/types"); err == nil {
		t.Error("Expected an error when the parent directory is missing")
	}
}

func TestCreateDirectory_FileInTheWay(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "order"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := New(root).CreateDirectory("order"); err == nil {
		t.Error("Expected an error when a file occupies the directory path")
	}
}

func TestEnsureRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "a", "b")
	pfs := New(root)

	created, err := pfs.EnsureRoot()
	if err != nil || !created {
		t.Fatalf("Expected root to be created, got created=%v err=%v", created, err)
	}

	created, err = pfs.EnsureRoot()
	if err != nil || created {
		t.Fatalf("Expected existing root, got created=%v err=%v", created, err)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	root := t.TempDir()
	pfs := New(root)

	if err := pfs.WriteFileAtomic("go.mod", []byte("module order\n"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	data, err := pfs.ReadFile("go.mod")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "module order\n" {
		t.Errorf("Unexpected content %q", data)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("Temp files should be cleaned up, found %d entries", len(entries))
	}
}

func TestWriteFileAtomic_NoClobber(t *testing.T) {
	pfs := New(t.TempDir())
	if err := pfs.WriteFileAtomic("README.md", []byte("mine"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := pfs.WriteFileAtomic("README.md", []byte("theirs"), 0o644)
	if !errors.Is(err, ErrExists) {
		t.Fatalf("Expected ErrExists, got %v", err)
	}

	data, _ := pfs.ReadFile("README.md")
	if string(data) != "mine" {
		t.Errorf("Existing file must stay untouched, got %q", data)
	}
}

func TestWriteFileAtomic_MissingDirectory(t *testing.T) {
	pfs := New(t.TempDir())

	if err := pfs.WriteFileAtomic("pkg/types/order.go", []byte("package types\n"), 0o644); err == nil {
		t.Error("Expected an error when the target directory is missing")
	}
}
