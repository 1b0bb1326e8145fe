package classfile

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"cffcheck/internal/slogutil"
	"cffcheck/internal/testutil"
)

func newTestScanner() *Scanner {
	return NewScanner(slogutil.NewDiscardLogger())
}

func TestReadHeader(t *testing.T) {
	tests := []struct {
		name      string
		data      []byte
		wantValid bool
		wantMajor uint16
		wantErr   bool
	}{
		{"java 7 class", testutil.ClassBytes(Java7), true, Java7, false},
		{"java 8 class", testutil.HeaderBytes(0xCAFEBABE, 3, Java8), true, Java8, false},
		{"bad magic", testutil.HeaderBytes(0xDEADBEEF, 0, 99), false, 0, false},
		{"truncated magic", []byte{0xCA, 0xFE}, false, 0, true},
		{"truncated version", []byte{0xCA, 0xFE, 0xBA, 0xBE, 0x00}, true, 0, true},
		{"empty", nil, false, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ReadHeader(bytes.NewReader(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadHeader() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if h.Valid() != tt.wantValid {
				t.Errorf("Valid() = %v, want %v", h.Valid(), tt.wantValid)
			}
			if h.Major != tt.wantMajor {
				t.Errorf("Major = %d, want %d", h.Major, tt.wantMajor)
			}
		})
	}
}

func TestScan_Threshold(t *testing.T) {
	dir := t.TempDir()
	jar := testutil.WriteJar(t, dir, "a.jar",
		testutil.Entry{Name: "META-INF/"},
		testutil.Entry{Name: "META-INF/MANIFEST.MF", Data: []byte("Manifest-Version: 1.0\n")},
		testutil.Entry{Name: "com/"},
		testutil.Entry{Name: "com/example/"},
		testutil.Class("com/example/A.class", Java7),
	)
	s := newTestScanner()

	tests := []struct {
		max  int
		want bool
	}{
		{Java9, false},
		{Java8, false},
		{Java7, false},
		{Java6, true},
		{JDK1_1, true},
	}

	for _, tt := range tests {
		got, err := s.Scan(jar, tt.max)
		if err != nil {
			t.Fatalf("Scan(max=%d) error: %v", tt.max, err)
		}
		if got != tt.want {
			t.Errorf("Scan(max=%d) = %v, want %v", tt.max, got, tt.want)
		}
	}
}

func TestScan_Monotonic(t *testing.T) {
	dir := t.TempDir()
	jar := testutil.WriteJar(t, dir, "mixed.jar",
		testutil.Class("a/Old.class", JDK1_4),
		testutil.Class("a/Mid.class", Java6),
		testutil.Class("a/New.class", Java8),
	)
	s := newTestScanner()

	// Once a threshold passes, every higher threshold passes too.
	passed := false
	for max := JDK1_1; max <= Java9+2; max++ {
		got, err := s.Scan(jar, max)
		if err != nil {
			t.Fatalf("Scan(max=%d) error: %v", max, err)
		}
		if passed && got {
			t.Fatalf("Scan(max=%d) reported a violation after a lower threshold passed", max)
		}
		if !got {
			passed = true
		}
		if want := max < Java8; got != want {
			t.Errorf("Scan(max=%d) = %v, want %v", max, got, want)
		}
	}
}

func TestScan_IgnoresNonClassEntries(t *testing.T) {
	dir := t.TempDir()
	// Resource and directory entries would decode to a huge major version
	// if they were ever read as classes.
	huge := testutil.HeaderBytes(0xCAFEBABE, 0, 0xFFFF)
	jar := testutil.WriteJar(t, dir, "resources.jar",
		testutil.Entry{Name: "data/blob.bin", Data: huge},
		testutil.Entry{Name: "data/Fake.class.txt", Data: huge},
		testutil.Entry{Name: "weird.class/"},
		testutil.Class("ok/Fine.class", JDK1_2),
	)

	got, err := newTestScanner().Scan(jar, JDK1_2)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if got {
		t.Error("Scan() = true, non-class entries must not be inspected")
	}
}

func TestScan_BadMagicNeverViolates(t *testing.T) {
	dir := t.TempDir()
	jar := testutil.WriteJar(t, dir, "badmagic.jar",
		testutil.Entry{Name: "x/Broken.class", Data: testutil.HeaderBytes(0xCAFED00D, 0, 0xFFFF)},
		testutil.Class("x/Good.class", Java5),
	)

	got, err := newTestScanner().Scan(jar, Java5)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if got {
		t.Error("Scan() = true, entries with a bad magic number must be skipped")
	}
}

func TestScan_NoClasses(t *testing.T) {
	dir := t.TempDir()
	empty := testutil.WriteJar(t, dir, "empty.jar")
	resources := testutil.WriteJar(t, dir, "resources.jar",
		testutil.Entry{Name: "README.txt", Data: []byte("hello")},
	)

	for _, jar := range []string{empty, resources} {
		for _, max := range []int{JDK1_1, Java7, Java9} {
			got, err := newTestScanner().Scan(jar, max)
			if err != nil {
				t.Fatalf("Scan(%s) error: %v", jar, err)
			}
			if got {
				t.Errorf("Scan(%s, %d) = true, want false", jar, max)
			}
		}
	}
}

func TestScan_NonArchiveFile(t *testing.T) {
	dir := t.TempDir()
	pom := testutil.WriteFile(t, dir, "parent-1.0.pom", []byte("<project></project>\n"))
	blank := testutil.WriteFile(t, dir, "blank.jar", nil)

	for _, p := range []string{pom, blank} {
		got, err := newTestScanner().Scan(p, JDK1_1)
		if err != nil {
			t.Fatalf("Scan(%s) error: %v", p, err)
		}
		if got {
			t.Errorf("Scan(%s) = true, want false", p)
		}
	}
}

func TestScan_ReadFailures(t *testing.T) {
	dir := t.TempDir()
	corrupt := testutil.WriteFile(t, dir, "corrupt.jar", []byte("PK\x03\x04 this is not really a zip"))
	truncated := testutil.WriteJar(t, dir, "truncated.jar",
		testutil.Entry{Name: "t/Short.class", Data: []byte{0xCA, 0xFE}},
	)
	missing := dir + "/missing.jar"

	for _, p := range []string{corrupt, truncated, missing} {
		got, err := newTestScanner().Scan(p, Java7)
		if err == nil {
			t.Errorf("Scan(%s) expected an error", p)
			continue
		}
		if got {
			t.Errorf("Scan(%s) = true alongside an error", p)
		}
		var archiveErr *ArchiveError
		if !errors.As(err, &archiveErr) {
			t.Errorf("Scan(%s) error %T is not an *ArchiveError", p, err)
		}
	}

	_, err := newTestScanner().Scan(truncated, Java7)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("truncated class error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestScan_VersionedEntries(t *testing.T) {
	dir := t.TempDir()
	jar := testutil.WriteJar(t, dir, "mrjar.jar",
		testutil.Class("com/example/Api.class", Java8),
		testutil.Class("META-INF/versions/9/module-info.class", Java9),
	)

	s := newTestScanner()
	got, err := s.Scan(jar, Java8)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if !got {
		t.Error("Scan() = false, versioned entries are inspected by default")
	}

	s.IgnoreVersionedEntries = true
	got, err = s.Scan(jar, Java8)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if got {
		t.Error("Scan() = true with IgnoreVersionedEntries set")
	}
}
