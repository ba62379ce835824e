package packfile

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everaidhq/everaid/internal/pack"
)

func samplePack() (pack.Pack, []pack.Step) {
	p := pack.Pack{
		ID:       "pack_1700000000000_abcdef123",
		Title:    "Bleeding Control",
		OneLiner: "Stop severe bleeding fast",
		Umbrella: pack.UmbrellaHealth,
		Urgency:  pack.UrgencyEmergency,
		EtaMin:   3,
		CTA:      "Act Now",
		Origin:   pack.OriginRemote,
	}
	steps := []pack.Step{
		{Title: "Apply pressure", Desc: "Press firmly on the wound", TimerSec: 120},
		{Title: "Elevate", Desc: "Raise above heart level"},
	}
	return p, steps
}

func TestExportImportRoundTrip(t *testing.T) {
	p, steps := samplePack()

	data, err := Export(p, steps, "tester")
	require.NoError(t, err)

	var f File
	require.NoError(t, json.Unmarshal(data, &f))
	assert.Equal(t, Schema, f.Schema)
	assert.Equal(t, "tester", f.Author)
	assert.NotEmpty(t, f.Checksum)

	imported, importedSteps, err := Import(data)
	require.NoError(t, err)

	assert.Equal(t, p.Title, imported.Title)
	assert.Equal(t, p.Umbrella, imported.Umbrella)
	assert.Equal(t, steps, importedSteps)
	// imported packs get a fresh local identity
	assert.NotEqual(t, p.ID, imported.ID)
	assert.True(t, strings.HasPrefix(imported.ID, "local_"), "id %q", imported.ID)
	assert.Equal(t, pack.OriginCustom, imported.Origin)
}

func TestExportRejectsIncompletePack(t *testing.T) {
	p, steps := samplePack()

	t.Run("no title", func(t *testing.T) {
		blank := p
		blank.Title = "  "
		_, err := Export(blank, steps, "")
		assert.ErrorIs(t, err, ErrMissingFields)
	})

	t.Run("no steps", func(t *testing.T) {
		_, err := Export(p, nil, "")
		assert.ErrorIs(t, err, ErrMissingFields)
	})
}

func TestImportRejectsTamperedContent(t *testing.T) {
	p, steps := samplePack()
	data, err := Export(p, steps, "")
	require.NoError(t, err)

	tampered := strings.Replace(string(data), "Bleeding Control", "Totally Different", 1)

	_, _, err = Import([]byte(tampered))
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestImportRejectsBadSchema(t *testing.T) {
	p, steps := samplePack()
	data, err := Export(p, steps, "")
	require.NoError(t, err)

	var f File
	require.NoError(t, json.Unmarshal(data, &f))
	f.Schema = Schema + 1
	newer, err := json.Marshal(f)
	require.NoError(t, err)

	_, _, err = Import(newer)
	assert.ErrorIs(t, err, ErrUnsupportedSchema)
}

func TestImportRejectsGarbage(t *testing.T) {
	_, _, err := Import([]byte("not json at all"))
	assert.Error(t, err)

	_, _, err = Import([]byte(`{"schema":1,"pack":{},"steps":[]}`))
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestChecksumSensitivity(t *testing.T) {
	p, steps := samplePack()
	base := Checksum(p, steps)

	changedTitle := p
	changedTitle.Title = "Other Title"
	assert.NotEqual(t, base, Checksum(changedTitle, steps))

	changedSteps := append([]pack.Step{}, steps...)
	changedSteps[0].Desc = "different"
	assert.NotEqual(t, base, Checksum(p, changedSteps))

	// fields outside the checksum scope do not affect it
	changedCTA := p
	changedCTA.CTA = "Other"
	assert.Equal(t, base, Checksum(changedCTA, steps))
}

func TestChecksumKnownValues(t *testing.T) {
	// Fixed points of the rolling hash over UTF-16 code units; the emoji
	// title exercises the surrogate-pair path.
	assert.Equal(t, "ff63", Checksum(pack.Pack{Title: "A"}, []pack.Step{}))
	assert.Equal(t, "658f82dc", Checksum(pack.Pack{Title: "\U0001FA78"}, []pack.Step{}))
}

func TestTilesRoundTrip(t *testing.T) {
	p, steps := samplePack()
	data, err := Export(p, steps, "")
	require.NoError(t, err)

	tiles := Tiles(data)
	require.NotEmpty(t, tiles)
	for i, tile := range tiles {
		assert.Equal(t, i+1, tile.Index)
		assert.Equal(t, len(tiles), tile.Total)
		assert.LessOrEqual(t, len(tile.Data), TileDataSize)
	}

	// shuffle: reassembly must not depend on scan order
	shuffled := append([]Tile{}, tiles...)
	for i := range shuffled {
		j := (i * 7) % len(shuffled)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	restored, err := ReassembleTiles(shuffled)
	require.NoError(t, err)
	assert.Equal(t, data, restored)

	_, _, err = Import(restored)
	assert.NoError(t, err)
}

func TestTilesLargePayloadSplits(t *testing.T) {
	payload := []byte(strings.Repeat("x", TileDataSize*3+17))

	tiles := Tiles(payload)
	require.Len(t, tiles, 4)
	assert.Len(t, tiles[3].Data, 17)

	restored, err := ReassembleTiles(tiles)
	require.NoError(t, err)
	assert.Equal(t, payload, restored)
}

func TestReassembleTilesErrors(t *testing.T) {
	payload := []byte(strings.Repeat("y", TileDataSize*2))
	tiles := Tiles(payload)
	require.Len(t, tiles, 2)

	t.Run("empty set", func(t *testing.T) {
		_, err := ReassembleTiles(nil)
		assert.ErrorIs(t, err, ErrNoTiles)
	})

	t.Run("missing tile", func(t *testing.T) {
		_, err := ReassembleTiles(tiles[:1])
		assert.ErrorIs(t, err, ErrTileMissing)
	})

	t.Run("mixed exports", func(t *testing.T) {
		other := Tiles([]byte(strings.Repeat("z", TileDataSize*2)))
		_, err := ReassembleTiles([]Tile{tiles[0], other[1]})
		assert.ErrorIs(t, err, ErrTileSetInconsistent)
	})

	t.Run("duplicate tiles tolerated", func(t *testing.T) {
		restored, err := ReassembleTiles([]Tile{tiles[0], tiles[1], tiles[0]})
		require.NoError(t, err)
		assert.Equal(t, payload, restored)
	})
}
