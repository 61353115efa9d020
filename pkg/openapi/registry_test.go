package openapi

import (
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestRegistry(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		reg := NewRegistry(testLogger())
		doc := &Document{GroupName: "v1"}

		require.NoError(t, reg.Register("v1", doc))

		got, err := reg.Get("v1")
		require.NoError(t, err)
		assert.Same(t, doc, got)

		_, err = reg.Get("v2")
		assert.ErrorIs(t, err, ErrDocumentNotFound)
	})

	t.Run("duplicate is logged and ignored", func(t *testing.T) {
		log, hook := logtest.NewNullLogger()
		reg := NewRegistry(log)
		first := &Document{GroupName: "v1"}

		require.NoError(t, reg.Register("v1", first))

		err := reg.Register("v1", &Document{GroupName: "v1"})
		assert.ErrorIs(t, err, ErrDuplicateGroup)

		got, err := reg.Get("v1")
		require.NoError(t, err)
		assert.Same(t, first, got)
		assert.Equal(t, 1, reg.Len())

		require.NotNil(t, hook.LastEntry())
		assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	})

	t.Run("frozen rejects writes", func(t *testing.T) {
		reg := NewRegistry(testLogger())
		require.NoError(t, reg.Register("v1", &Document{}))

		reg.Freeze()

		assert.ErrorIs(t, reg.Register("v2", &Document{}), ErrRegistryFrozen)
		_, err := reg.Get("v1")
		assert.NoError(t, err)
	})

	t.Run("groups keep registration order", func(t *testing.T) {
		reg := NewRegistry(testLogger())
		require.NoError(t, reg.Register("v2", &Document{Deprecated: true}))
		require.NoError(t, reg.Register("v1", &Document{}))

		assert.Equal(t, []Group{{Name: "v2", Deprecated: true}, {Name: "v1"}}, reg.Groups())
	})
}

func TestRegistryPublish(t *testing.T) {
	build := func(name string) *Registry {
		b := NewBuilder(testLogger(), BuilderConfig{Info: AppInfo{Name: name}})

		reg, err := b.Build(t.Context(), staticVersions{descriptor("1.0", false)}, staticOperations{})
		require.NoError(t, err)

		return reg
	}

	prefix := "registry-publish-test-"

	assert.Equal(t, []string{prefix + "v1"}, build("Store API").Publish(prefix))

	doc, err := swag.ReadDoc(prefix + "v1")
	require.NoError(t, err)
	assert.Contains(t, doc, `"title":"Store API"`)

	// Publishing again swaps the document behind the instance.
	assert.Equal(t, []string{prefix + "v1"}, build("Outlet API").Publish(prefix))

	doc, err = swag.ReadDoc(prefix + "v1")
	require.NoError(t, err)
	assert.Contains(t, doc, `"title":"Outlet API"`)
}

type foreignDoc struct{}

func (foreignDoc) ReadDoc() string { return "{}" }

func TestRegistryPublishSkipsForeignInstances(t *testing.T) {
	prefix := "registry-publish-foreign-"
	swag.Register(prefix+"v1", foreignDoc{})

	b := NewBuilder(testLogger(), BuilderConfig{Info: AppInfo{Name: "Store API"}})

	reg, err := b.Build(t.Context(), staticVersions{descriptor("1.0", false), descriptor("2.0", false)}, staticOperations{})
	require.NoError(t, err)

	assert.Equal(t, []string{prefix + "v2"}, reg.Publish(prefix))

	doc, err := swag.ReadDoc(prefix + "v1")
	require.NoError(t, err)
	assert.Equal(t, "{}", doc)
}
