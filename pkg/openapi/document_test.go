package openapi

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/N1K0232/GlowingStoreApi/pkg/versioning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func descriptor(version string, deprecated bool) versioning.Descriptor {
	v := versioning.MustParseVersion(version)

	return versioning.Descriptor{Version: v, GroupName: v.GroupName(), Deprecated: deprecated}
}

func TestBuildDocument(t *testing.T) {
	info := AppInfo{Name: "Store API", Description: "Sells things."}

	t.Run("active version", func(t *testing.T) {
		doc := BuildDocument(descriptor("1.0", false), info)

		assert.Equal(t, "Store API", doc.Title)
		assert.Equal(t, "1.0", doc.Version)
		assert.Equal(t, "v1", doc.GroupName)
		assert.Equal(t, "Sells things.", doc.Description)
		assert.False(t, doc.Deprecated)
	})

	t.Run("deprecated version", func(t *testing.T) {
		doc := BuildDocument(descriptor("2.0", true), info)

		assert.Equal(t, "Sells things. This API version has been deprecated.", doc.Description)
		assert.True(t, strings.HasSuffix(doc.Description, DeprecatedSuffix))
		assert.True(t, doc.Deprecated)
	})

	t.Run("empty description", func(t *testing.T) {
		doc := BuildDocument(descriptor("2.0", true), AppInfo{Name: "x"})

		assert.Equal(t, DeprecatedSuffix, doc.Description)
	})

	t.Run("shell is not rendered", func(t *testing.T) {
		doc := BuildDocument(descriptor("1.0", false), info)

		assert.Nil(t, doc.OpenAPI())
		_, err := doc.MarshalJSON()
		assert.Error(t, err)
		assert.Empty(t, doc.ReadDoc())
	})
}

func TestDocumentEncodings(t *testing.T) {
	b := NewBuilder(testLogger(), BuilderConfig{Info: AppInfo{Name: "Store API", Description: "Sells things."}})

	doc, err := b.BuildVersion(t.Context(), descriptor("1.0", false), nil)
	require.NoError(t, err)

	t.Run("json", func(t *testing.T) {
		var v map[string]any
		require.NoError(t, json.Unmarshal([]byte(doc.ReadDoc()), &v))

		info, ok := v["info"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Store API", info["title"])
		assert.Equal(t, "1.0", info["version"])
	})

	t.Run("json is a private copy", func(t *testing.T) {
		first, err := doc.MarshalJSON()
		require.NoError(t, err)

		want := string(first)
		first[0] = 'X'

		second, err := doc.MarshalJSON()
		require.NoError(t, err)
		assert.Equal(t, want, string(second))
		assert.Equal(t, want, doc.ReadDoc())
	})

	t.Run("yaml", func(t *testing.T) {
		data, err := doc.YAML()
		require.NoError(t, err)

		var v map[string]any
		require.NoError(t, yaml.Unmarshal(data, &v))
		assert.Equal(t, "3.0.3", v["openapi"])

		info, ok := v["info"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "1.0", info["version"])
	})
}
