package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/everaidhq/everaid/internal/pack"
)

func newTestLocalStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(filepath.Join(t.TempDir(), "packs", "custom.json"), zap.NewNop())
	require.NoError(t, err)
	return store
}

func customPack(id string) (pack.Pack, []pack.Step) {
	return pack.Pack{
			ID:       id,
			Title:    "My Pack",
			Umbrella: pack.UmbrellaFix,
			Urgency:  pack.UrgencyInfo,
			Origin:   pack.OriginCustom,
		}, []pack.Step{
			{Title: "Do it", Desc: "carefully"},
		}
}

func TestLocalStorePutGetList(t *testing.T) {
	store := newTestLocalStore(t)
	p, steps := customPack("local_1_abc")

	require.NoError(t, store.Put(p, steps))

	got, gotSteps, err := store.Get("local_1_abc")
	require.NoError(t, err)
	assert.Equal(t, p, *got)
	assert.Equal(t, steps, gotSteps)

	list, err := store.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestLocalStorePutReplaces(t *testing.T) {
	store := newTestLocalStore(t)
	p, steps := customPack("local_1_abc")
	require.NoError(t, store.Put(p, steps))

	p.Title = "Renamed"
	require.NoError(t, store.Put(p, steps))

	list, err := store.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Renamed", list[0].Title)
}

func TestLocalStoreDelete(t *testing.T) {
	store := newTestLocalStore(t)
	p, steps := customPack("local_1_abc")
	require.NoError(t, store.Put(p, steps))

	require.NoError(t, store.Delete("local_1_abc"))

	_, _, err := store.Get("local_1_abc")
	assert.ErrorIs(t, err, ErrLocalNotFound)

	assert.ErrorIs(t, store.Delete("local_1_abc"), ErrLocalNotFound)
}

func TestLocalStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.json")
	first, err := NewLocalStore(path, zap.NewNop())
	require.NoError(t, err)

	p, steps := customPack("local_1_abc")
	require.NoError(t, first.Put(p, steps))

	second, err := NewLocalStore(path, zap.NewNop())
	require.NoError(t, err)
	list, err := second.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestLocalStoreRecoversFromCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.json")
	require.NoError(t, os.WriteFile(path, []byte("{{{ not json"), 0o600))

	store, err := NewLocalStore(path, zap.NewNop())
	require.NoError(t, err)

	list, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	p, steps := customPack("local_1_abc")
	assert.NoError(t, store.Put(p, steps))
}

func TestLocalStoreMissingFileIsEmpty(t *testing.T) {
	store := newTestLocalStore(t)

	list, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}
