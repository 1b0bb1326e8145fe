// Package testutil provides fixtures shared by package tests: class file
// bytes, jar archives and local Maven repositories.
package testutil

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
)

// Entry is a single archive member. Names ending in "/" become directories.
type Entry struct {
	Name string
	Data []byte
}

// Class returns an entry holding a class file compiled for major.
func Class(name string, major uint16) Entry {
	return Entry{Name: name, Data: ClassBytes(major)}
}

// ClassBytes returns a minimal class file body: magic, minor 0, major and a
// few trailing bytes standing in for the constant pool.
func ClassBytes(major uint16) []byte {
	return HeaderBytes(0xCAFEBABE, 0, major)
}

// HeaderBytes returns an eight byte class header with arbitrary fields
// followed by filler.
func HeaderBytes(magic uint32, minor, major uint16) []byte {
	b := make([]byte, 8, 16)
	binary.BigEndian.PutUint32(b[0:4], magic)
	binary.BigEndian.PutUint16(b[4:6], minor)
	binary.BigEndian.PutUint16(b[6:8], major)
	return append(b, 0x00, 0x10, 0x0A, 0x00)
}

// WriteJar writes a jar holding entries to dir/name and returns its path.
func WriteJar(t *testing.T, dir, name string, entries ...Entry) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create jar directory: %v", err)
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create jar: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.Name, Method: zip.Deflate}
		if strings.HasSuffix(e.Name, "/") {
			hdr.Method = zip.Store
		}
		ew, err := w.CreateHeader(hdr)
		if err != nil {
			t.Fatalf("Failed to add %s: %v", e.Name, err)
		}
		if len(e.Data) > 0 {
			if _, err := ew.Write(e.Data); err != nil {
				t.Fatalf("Failed to write %s: %v", e.Name, err)
			}
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to finish jar: %v", err)
	}
	return path
}

// WriteFile writes raw bytes to dir/name and returns its path.
func WriteFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// RepoJar writes a jar into a local Maven repository rooted at repo using
// the standard group/artifact/version layout.
func RepoJar(t *testing.T, repo, groupID, artifactID, version string, entries ...Entry) string {
	t.Helper()

	rel := filepath.Join(strings.ReplaceAll(groupID, ".", string(filepath.Separator)),
		artifactID, version, artifactID+"-"+version+".jar")
	return WriteJar(t, repo, rel, entries...)
}
