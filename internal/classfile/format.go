// Package classfile inspects JVM archives for the class file format their
// compiled classes target.
package classfile

import (
	"fmt"
	"strconv"
	"strings"
)

// Class file major versions by the runtime that introduced them.
const (
	JDK1_1 = 45 // 0x2D
	JDK1_2 = 46 // 0x2E
	JDK1_3 = 47 // 0x2F
	JDK1_4 = 48 // 0x30
	Java5  = 49 // 0x31
	Java6  = 50 // 0x32
	Java7  = 51 // 0x33
	Java8  = 52 // 0x34
	Java9  = 53 // 0x35
)

// DefaultMaxFormat is the format enforced when none is configured.
const DefaultMaxFormat = Java7

// Magic is the four byte header every class file starts with.
const Magic uint32 = 0xCAFEBABE

var releaseNames = map[int]string{
	JDK1_1: "JDK 1.1",
	JDK1_2: "JDK 1.2",
	JDK1_3: "JDK 1.3",
	JDK1_4: "JDK 1.4",
	Java5:  "Java 5",
	Java6:  "Java 6",
	Java7:  "Java 7",
	Java8:  "Java 8",
	Java9:  "Java 9",
}

// ReleaseName returns a human name for a major version, e.g. "Java 8".
// Versions past the named constants follow the Java N = N+44 rule.
func ReleaseName(major int) string {
	if name, ok := releaseNames[major]; ok {
		return name
	}
	if major > Java9 {
		return fmt.Sprintf("Java %d", major-44)
	}
	return fmt.Sprintf("format %d", major)
}

// ParseTarget converts a user supplied target into a class file major
// version. Accepted forms are a raw major version ("52"), a Java release
// ("8", "1.8", "java8", "Java 11") or a JDK 1.x release ("1.4").
func ParseTarget(s string) (int, error) {
	t := strings.ToLower(strings.TrimSpace(s))
	t = strings.TrimPrefix(t, "java")
	t = strings.TrimPrefix(t, "jdk")
	t = strings.TrimSpace(t)
	if t == "" {
		return 0, fmt.Errorf("empty class file format target")
	}

	if strings.HasPrefix(t, "1.") {
		minor, err := strconv.Atoi(strings.TrimPrefix(t, "1."))
		if err != nil || minor < 1 {
			return 0, fmt.Errorf("invalid release %q", s)
		}
		return JDK1_1 + minor - 1, nil
	}

	n, err := strconv.Atoi(t)
	if err != nil {
		return 0, fmt.Errorf("invalid class file format target %q", s)
	}
	switch {
	case n >= JDK1_1:
		return n, nil
	case n >= 5:
		return n + 44, nil
	default:
		return 0, fmt.Errorf("class file format target %q is older than %s", s, ReleaseName(JDK1_1))
	}
}
