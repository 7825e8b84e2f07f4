package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Uvecodes/daypool/internal/engine"
)

func TestLoadDir_CompilesCatalog(t *testing.T) {
	catalog, errs := LoadDir("testdata/catalog")
	require.Empty(t, errs)

	assert.Equal(t, engine.AllGroups, catalog.Groups())
	assert.Equal(t, 5, catalog.Size(engine.Group4to6))
	assert.Equal(t, 7, catalog.Size(engine.Group7to10))
	assert.Equal(t, 3, catalog.Size(engine.Group11to13))
	assert.Equal(t, 4, catalog.Size(engine.Group14to17))

	items, err := catalog.LoadPool(engine.Group7to10)
	require.NoError(t, err)
	assert.Equal(t, "river-walk", items[0].Ref)
	assert.Equal(t, "kite-days", items[6].Ref)
}

func TestLoadDir_MissingDirectory(t *testing.T) {
	_, errs := LoadDir("testdata/does-not-exist")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "not found")
}

func TestLoadDir_EmptyDirectory(t *testing.T) {
	_, errs := LoadDir(t.TempDir())
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "no CUE files")
}

func TestCatalog_LoadPoolUndeclaredBracket(t *testing.T) {
	catalog := &Catalog{pools: map[engine.GroupKey][]engine.Item{
		engine.Group7to10: {{Ref: "a"}},
	}}
	_, err := catalog.LoadPool(engine.Group14to17)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no pool declared")
}

func TestCatalog_SizeUndeclaredIsZero(t *testing.T) {
	catalog := &Catalog{pools: map[engine.GroupKey][]engine.Item{}}
	assert.Equal(t, 0, catalog.Size(engine.Group4to6))
}
