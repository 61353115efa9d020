package versioning

import (
	"sort"
)

// Declaration is one controller's statement that it serves a version.
type Declaration struct {
	Version    Version
	Deprecated bool
}

// Descriptor describes one declared API version and its documentation group.
type Descriptor struct {
	Version    Version
	GroupName  string
	Deprecated bool
}

// VersionString returns the version as shown in the document info.
func (d Descriptor) VersionString() string {
	return d.Version.String()
}

// Source enumerates the declared API versions. It is computed once and never
// changes afterwards.
type Source struct {
	descriptors []Descriptor
	bySegment   map[string]Descriptor
}

// NewSource aggregates declarations into one descriptor per version. A version
// is deprecated only when every declaration of it is deprecated.
func NewSource(decls ...Declaration) *Source {
	type agg struct {
		version    Version
		deprecated bool
	}

	seen := make(map[Version]*agg, len(decls))
	order := make([]Version, 0, len(decls))

	for _, d := range decls {
		a, ok := seen[d.Version]
		if !ok {
			seen[d.Version] = &agg{version: d.Version, deprecated: d.Deprecated}
			order = append(order, d.Version)

			continue
		}

		a.deprecated = a.deprecated && d.Deprecated
	}

	sort.SliceStable(order, func(i, j int) bool {
		return Compare(order[i], order[j]) < 0
	})

	s := &Source{
		descriptors: make([]Descriptor, 0, len(order)),
		bySegment:   make(map[string]Descriptor, len(order)*2),
	}

	for _, v := range order {
		d := Descriptor{
			Version:    v,
			GroupName:  v.GroupName(),
			Deprecated: seen[v].deprecated,
		}

		s.descriptors = append(s.descriptors, d)
		s.bySegment[v.URLSegment()] = d
		s.bySegment[v.String()] = d
	}

	return s
}

// ListVersions returns the descriptors in ascending version order.
func (s *Source) ListVersions() []Descriptor {
	out := make([]Descriptor, len(s.descriptors))
	copy(out, s.descriptors)

	return out
}

// Lookup resolves a URL segment such as "1" or "1.0".
func (s *Source) Lookup(segment string) (Descriptor, bool) {
	if d, ok := s.bySegment[segment]; ok {
		return d, true
	}

	v, err := ParseVersion(segment)
	if err != nil {
		return Descriptor{}, false
	}

	d, ok := s.bySegment[v.URLSegment()]

	return d, ok
}

// Supported returns the versions that are not deprecated.
func (s *Source) Supported() []Version {
	return s.filter(false)
}

// Deprecated returns the deprecated versions.
func (s *Source) Deprecated() []Version {
	return s.filter(true)
}

func (s *Source) filter(deprecated bool) []Version {
	var out []Version

	for _, d := range s.descriptors {
		if d.Deprecated == deprecated {
			out = append(out, d.Version)
		}
	}

	return out
}
