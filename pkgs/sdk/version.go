package sdk

import (
	"fmt"
	"slices"
	"strings"
)

// Version is a card SDK generation. The zero value is invalid.
type Version int

const (
	V211 Version = iota + 1
	V212
	V221
	V222
	V301
	V304
	V305
	V310
)

var versionNames = [...]string{
	V211: "2.1.1",
	V212: "2.1.2",
	V221: "2.2.1",
	V222: "2.2.2",
	V301: "3.0.1",
	V304: "3.0.4",
	V305: "3.0.5",
	V310: "3.1.0",
}

// Versions lists every supported generation, oldest first.
func Versions() []Version {
	return []Version{V211, V212, V221, V222, V301, V304, V305, V310}
}

func (v Version) String() string {
	if v < V211 || v > V310 {
		return fmt.Sprintf("Version(%d)", int(v))
	}
	return versionNames[v]
}

// IsV3 reports whether v belongs to the 3.x generation.
func (v Version) IsV3() bool {
	return v >= V301
}

// IsOneOf reports whether v is any of vs.
func (v Version) IsOneOf(vs ...Version) bool {
	return slices.Contains(vs, v)
}

// ParseVersion maps a version tag to a Version. Update suffixes are accepted
// and folded into the release they update: "3.0.1u2" and "3.0.5u3" map to
// V301 and V305.
func ParseVersion(s string) (Version, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	if s == "" {
		return 0, false
	}
	for _, v := range Versions() {
		name := v.String()
		if s == name {
			return v, true
		}
		if rest, ok := strings.CutPrefix(s, name); ok && isUpdateSuffix(rest) {
			return v, true
		}
	}
	return 0, false
}

// Closest returns the newest known generation that is not newer than the
// release string s, within the same major.minor line. It is used for version
// strings found in SDK metadata ("3.0.5u3", "3.1.0_b11").
func Closest(s string) (Version, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	var found Version
	for _, v := range Versions() {
		name := v.String()
		if !strings.HasPrefix(s, name[:3]) {
			continue
		}
		if compareReleases(name, s) <= 0 {
			found = v
		}
	}
	return found, found != 0
}

// JavaVersion returns the source and target language level the compiler must
// use for classes consumed by the converter of kit version v.
func JavaVersion(v Version) string {
	switch v {
	case V310:
		return "1.7"
	case V305, V304, V301:
		return "1.6"
	case V222:
		return "1.5"
	case V221:
		return "1.2"
	}
	return "1.1"
}

func isUpdateSuffix(s string) bool {
	if len(s) < 2 || s[0] != 'u' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}
