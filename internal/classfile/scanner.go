package classfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/klauspost/compress/zip"

	"cffcheck/internal/slogutil"
)

const (
	// ClassSuffix marks archive entries holding compiled classes.
	ClassSuffix = ".class"

	// VersionedPrefix is where multi-release jars keep per-runtime overlays.
	VersionedPrefix = "META-INF/versions/"
)

var zipSignatures = [][]byte{
	[]byte("PK\x03\x04"), // local file header
	[]byte("PK\x05\x06"), // end of central directory (empty archive)
	[]byte("PK\x07\x08"), // spanned archive marker
}

// Header is the fixed-layout prefix of a class file.
type Header struct {
	Magic uint32
	Minor uint16
	Major uint16
}

// Valid reports whether the header carries the class file magic number.
func (h Header) Valid() bool {
	return h.Magic == Magic
}

// ReadHeader reads the eight byte class file header from r. When the magic
// number does not match, the version fields are left unread and zero.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	if err := binary.Read(r, binary.BigEndian, &h.Magic); err != nil {
		return h, err
	}
	if !h.Valid() {
		return h, nil
	}
	if err := binary.Read(r, binary.BigEndian, &h.Minor); err != nil {
		return h, err
	}
	if err := binary.Read(r, binary.BigEndian, &h.Major); err != nil {
		return h, err
	}
	return h, nil
}

// ArchiveError reports an archive that could not be read. It is never
// returned for archives that were read completely, whatever their content.
type ArchiveError struct {
	Path  string
	Entry string
	Err   error
}

func (e *ArchiveError) Error() string {
	if e.Entry != "" {
		return fmt.Sprintf("reading %s in archive %s: %v", e.Entry, e.Path, e.Err)
	}
	return fmt.Sprintf("reading archive %s: %v", e.Path, e.Err)
}

func (e *ArchiveError) Unwrap() error {
	return e.Err
}

// Scanner checks archives against a maximum class file format.
type Scanner struct {
	// IgnoreVersionedEntries skips classes under META-INF/versions/.
	IgnoreVersionedEntries bool

	logger *slog.Logger
}

// NewScanner creates a scanner logging to logger.
func NewScanner(logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &Scanner{logger: logger}
}

// Scan reports whether any class in the archive at path targets a major
// version above maxFormat. It stops at the first such class. Entries that
// are directories or do not end in ".class" are never read, and classes
// with a bad magic number are logged and skipped.
func (s *Scanner) Scan(path string, maxFormat int) (bool, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			zipped, sniffErr := hasZipSignature(path)
			if sniffErr != nil {
				return false, &ArchiveError{Path: path, Err: sniffErr}
			}
			if !zipped {
				// Not an archive at all (pom or other descriptor packaging):
				// there is nothing to inspect.
				s.logger.Debug("Skipping non-archive dependency file", "path", path)
				return false, nil
			}
		}
		return false, &ArchiveError{Path: path, Err: err}
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(f.Name, ClassSuffix) {
			continue
		}
		if s.IgnoreVersionedEntries && strings.HasPrefix(f.Name, VersionedPrefix) {
			continue
		}

		h, err := readEntryHeader(f)
		if err != nil {
			return false, &ArchiveError{Path: path, Entry: f.Name, Err: err}
		}
		if !h.Valid() {
			s.logger.Debug("Archive contains an invalid class",
				"path", path,
				"entry", f.Name,
				"magic", fmt.Sprintf("0x%08X", h.Magic),
			)
			continue
		}
		if int(h.Major) > maxFormat {
			s.logger.Debug("Class exceeds supported format",
				"path", path,
				"entry", f.Name,
				"major", h.Major,
				"max", maxFormat,
			)
			return true, nil
		}
	}

	return false, nil
}

func readEntryHeader(f *zip.File) (Header, error) {
	rc, err := f.Open()
	if err != nil {
		return Header{}, err
	}
	defer rc.Close()

	h, err := ReadHeader(rc)
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return h, err
}

func hasZipSignature(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, 4)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	for _, sig := range zipSignatures {
		if n == len(sig) && bytes.Equal(buf, sig) {
			return true, nil
		}
	}
	return false, nil
}
