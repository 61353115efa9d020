package versioning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    Version
		str     string
		segment string
	}{
		{in: "1", want: Version{Major: 1}, str: "1.0", segment: "1"},
		{in: "1.0", want: Version{Major: 1}, str: "1.0", segment: "1"},
		{in: "v2", want: Version{Major: 2}, str: "2.0", segment: "2"},
		{in: "2.1", want: Version{Major: 2, Minor: 1}, str: "2.1", segment: "2.1"},
		{in: "2.0-beta", want: Version{Major: 2, Status: "beta"}, str: "2.0-beta", segment: "2-beta"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := ParseVersion(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
			assert.Equal(t, tt.str, v.String())
			assert.Equal(t, tt.segment, v.URLSegment())
			assert.Equal(t, "v"+tt.segment, v.GroupName())
		})
	}

	t.Run("invalid", func(t *testing.T) {
		for _, in := range []string{"", "v", "x", "1.x", "-1", "1.0-", "1.0-b_eta"} {
			_, err := ParseVersion(in)
			assert.ErrorIs(t, err, ErrInvalidVersion, in)
		}
	})

	t.Run("must parse panics", func(t *testing.T) {
		assert.Panics(t, func() { MustParseVersion("nope") })
	})
}

func TestCompare(t *testing.T) {
	assert.Equal(t, 0, Compare(MustParseVersion("1.0"), MustParseVersion("1")))
	assert.Equal(t, -1, Compare(MustParseVersion("1.0"), MustParseVersion("2.0")))
	assert.Equal(t, 1, Compare(MustParseVersion("1.2"), MustParseVersion("1.1")))
	assert.Equal(t, -1, Compare(MustParseVersion("2.0-beta"), MustParseVersion("2.0")))
	assert.Equal(t, 1, Compare(MustParseVersion("2.0"), MustParseVersion("2.0-alpha")))
	assert.Equal(t, -1, Compare(MustParseVersion("2.0-alpha"), MustParseVersion("2.0-beta")))
}
