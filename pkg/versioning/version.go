package versioning

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidVersion is returned when a version string cannot be parsed.
var ErrInvalidVersion = errors.New("invalid api version")

// Version is a declared API version in major.minor[-status] form.
type Version struct {
	Major  int
	Minor  int
	Status string
}

// ParseVersion parses "1", "1.0", "2.1" or "2.0-beta". A leading "v" is accepted.
func ParseVersion(s string) (Version, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "v")
	if raw == "" {
		return Version{}, fmt.Errorf("%w: empty", ErrInvalidVersion)
	}

	var v Version

	if idx := strings.IndexByte(raw, '-'); idx >= 0 {
		v.Status = raw[idx+1:]
		raw = raw[:idx]

		if v.Status == "" || !isAlphaNumeric(v.Status) {
			return Version{}, fmt.Errorf("%w: bad status in %q", ErrInvalidVersion, s)
		}
	}

	major, minor, hasMinor := strings.Cut(raw, ".")

	n, err := strconv.Atoi(major)
	if err != nil || n < 0 {
		return Version{}, fmt.Errorf("%w: bad major in %q", ErrInvalidVersion, s)
	}

	v.Major = n

	if hasMinor {
		n, err = strconv.Atoi(minor)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("%w: bad minor in %q", ErrInvalidVersion, s)
		}

		v.Minor = n
	}

	return v, nil
}

// MustParseVersion is like ParseVersion but panics on error.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}

	return v
}

// String renders the full form, e.g. "1.0" or "2.0-beta".
func (v Version) String() string {
	s := strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor)
	if v.Status != "" {
		s += "-" + v.Status
	}

	return s
}

// URLSegment renders the short form used in URLs and group names: the minor
// part is omitted when zero, e.g. "1", "2.1", "2-beta".
func (v Version) URLSegment() string {
	s := strconv.Itoa(v.Major)
	if v.Minor != 0 {
		s += "." + strconv.Itoa(v.Minor)
	}

	if v.Status != "" {
		s += "-" + v.Status
	}

	return s
}

// GroupName returns the documentation group for the version ("v1", "v2.1").
func (v Version) GroupName() string {
	return "v" + v.URLSegment()
}

// Compare returns -1, 0 or 1. A version with a status sorts before the same
// version without one.
func Compare(a, b Version) int {
	switch {
	case a.Major != b.Major:
		return cmpInt(a.Major, b.Major)
	case a.Minor != b.Minor:
		return cmpInt(a.Minor, b.Minor)
	case a.Status == b.Status:
		return 0
	case a.Status == "":
		return 1
	case b.Status == "":
		return -1
	default:
		return strings.Compare(a.Status, b.Status)
	}
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}

	return 1
}

func isAlphaNumeric(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}

	return true
}
