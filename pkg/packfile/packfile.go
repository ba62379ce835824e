// Package packfile implements the portable pack interchange format: a
// versioned JSON document carrying one pack and its steps, protected by a
// content checksum, plus chunked QR tiles for offline device-to-device
// transfer.
package packfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/google/uuid"

	"github.com/everaidhq/everaid/internal/pack"
)

// Schema is the interchange format version. Readers reject anything newer.
const Schema = 1

var (
	// ErrUnsupportedSchema indicates a file written by a newer format version.
	ErrUnsupportedSchema = errors.New("unsupported packfile schema")

	// ErrMissingFields indicates the file lacks a title or steps.
	ErrMissingFields = errors.New("packfile missing required fields")

	// ErrChecksumMismatch indicates the content does not match its checksum.
	ErrChecksumMismatch = errors.New("packfile checksum mismatch")
)

// File is the on-disk interchange document.
type File struct {
	Schema     int         `json:"schema"`
	Author     string      `json:"author,omitempty"`
	ExportedAt string      `json:"exportedAt"`
	Pack       pack.Pack   `json:"pack"`
	Steps      []pack.Step `json:"steps"`
	Checksum   string      `json:"checksum"`
}

// Checksum computes the content checksum over title, one-liner, and the
// JSON encoding of the steps. The rolling hash runs over UTF-16 code units
// in 32-bit arithmetic so every platform, including ones hashing native
// UTF-16 strings, yields the same value for the same content.
func Checksum(p pack.Pack, steps []pack.Step) string {
	encoded, err := json.Marshal(steps)
	if err != nil {
		encoded = []byte("[]")
	}
	content := p.Title + p.OneLiner + string(encoded)

	var hash int32
	for _, u := range utf16.Encode([]rune(content)) {
		hash = (hash << 5) - hash + int32(u)
	}
	abs := int64(hash)
	if abs < 0 {
		abs = -abs
	}
	return fmt.Sprintf("%x", abs)
}

// Export encodes the pack and its steps as an interchange document.
func Export(p pack.Pack, steps []pack.Step, author string) ([]byte, error) {
	if strings.TrimSpace(p.Title) == "" || len(steps) == 0 {
		return nil, ErrMissingFields
	}

	f := File{
		Schema:     Schema,
		Author:     author,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Pack:       p,
		Steps:      steps,
		Checksum:   Checksum(p, steps),
	}
	return json.MarshalIndent(f, "", "  ")
}

// Import decodes and validates an interchange document. The returned pack
// carries a fresh local id and custom origin: imported packs never collide
// with the id space of the device that exported them.
func Import(data []byte) (pack.Pack, []pack.Step, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return pack.Pack{}, nil, fmt.Errorf("decoding packfile: %w", err)
	}

	if f.Schema > Schema || f.Schema < 1 {
		return pack.Pack{}, nil, fmt.Errorf("%w: %d", ErrUnsupportedSchema, f.Schema)
	}
	if strings.TrimSpace(f.Pack.Title) == "" || len(f.Steps) == 0 {
		return pack.Pack{}, nil, ErrMissingFields
	}
	if f.Checksum != Checksum(f.Pack, f.Steps) {
		return pack.Pack{}, nil, ErrChecksumMismatch
	}

	p := f.Pack
	p.ID = NewLocalID()
	p.Origin = pack.OriginCustom
	p.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	return p, f.Steps, nil
}

// NewLocalID generates an id in the device-local namespace. Locally owned
// packs are distinguishable from server ids (pack_...) by prefix alone.
func NewLocalID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("local_%d_%s", time.Now().UTC().UnixMilli(), suffix)
}
