package packfile

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf16"
)

// TileDataSize is the maximum payload per QR tile. Staying under ~1KB
// keeps each code scannable at phone camera resolution.
const TileDataSize = 800

var (
	// ErrNoTiles indicates an empty tile set.
	ErrNoTiles = errors.New("no tiles to reassemble")

	// ErrTileSetInconsistent indicates tiles from different exports were mixed.
	ErrTileSetInconsistent = errors.New("tiles disagree on total or checksum")

	// ErrTileMissing indicates the tile set has gaps.
	ErrTileMissing = errors.New("tile set incomplete")
)

// Tile is one QR code worth of an exported pack. Index is 1-based so a
// user scanning codes sees "3 of 7", not "2 of 7". Checksum is the
// checksum of the complete payload, repeated on every tile, so a stray
// tile from another export is detected before reassembly.
type Tile struct {
	Index    int    `json:"index"`
	Total    int    `json:"total"`
	Data     string `json:"data"`
	Checksum string `json:"checksum"`
}

// Tiles splits an exported document into QR-sized chunks.
func Tiles(data []byte) []Tile {
	payload := string(data)
	sum := payloadChecksum(payload)

	total := (len(payload) + TileDataSize - 1) / TileDataSize
	if total == 0 {
		total = 1
	}

	tiles := make([]Tile, 0, total)
	for i := 0; i < total; i++ {
		start := i * TileDataSize
		end := start + TileDataSize
		if end > len(payload) {
			end = len(payload)
		}
		tiles = append(tiles, Tile{
			Index:    i + 1,
			Total:    total,
			Data:     payload[start:end],
			Checksum: sum,
		})
	}
	return tiles
}

// ReassembleTiles reconstructs the exported document from scanned tiles.
// Tiles may arrive in any order; duplicates of the same index are
// tolerated.
func ReassembleTiles(tiles []Tile) ([]byte, error) {
	if len(tiles) == 0 {
		return nil, ErrNoTiles
	}

	total := tiles[0].Total
	sum := tiles[0].Checksum
	byIndex := make(map[int]Tile, total)
	for _, tile := range tiles {
		if tile.Total != total || tile.Checksum != sum {
			return nil, ErrTileSetInconsistent
		}
		if tile.Index < 1 || tile.Index > total {
			return nil, fmt.Errorf("%w: index %d out of range 1..%d", ErrTileSetInconsistent, tile.Index, total)
		}
		byIndex[tile.Index] = tile
	}

	if len(byIndex) != total {
		missing := make([]int, 0)
		for i := 1; i <= total; i++ {
			if _, ok := byIndex[i]; !ok {
				missing = append(missing, i)
			}
		}
		sort.Ints(missing)
		return nil, fmt.Errorf("%w: missing %v of %d", ErrTileMissing, missing, total)
	}

	var payload string
	for i := 1; i <= total; i++ {
		payload += byIndex[i].Data
	}

	if payloadChecksum(payload) != sum {
		return nil, ErrChecksumMismatch
	}
	return []byte(payload), nil
}

// payloadChecksum applies the same rolling hash used for pack content to
// the raw tile payload.
func payloadChecksum(payload string) string {
	var hash int32
	for _, u := range utf16.Encode([]rune(payload)) {
		hash = (hash << 5) - hash + int32(u)
	}
	abs := int64(hash)
	if abs < 0 {
		abs = -abs
	}
	return fmt.Sprintf("%x", abs)
}
