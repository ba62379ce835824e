// Package packsvc implements authoritative CRUD over pack records in the
// key-value store. Records live under pack:<id>; a parallel packs:index key
// holds the JSON array of all ids, since the store has no reliable
// list-by-prefix operation.
package packsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/everaidhq/everaid/internal/kvstore"
	"github.com/everaidhq/everaid/internal/pack"
)

const (
	packKeyPrefix = "pack:"
	indexKey      = "packs:index"
)

var (
	// ErrNotFound indicates the requested pack does not exist. It is
	// distinct from storage failures, which wrap the underlying error.
	ErrNotFound = errors.New("pack not found")

	// ErrValidation indicates required fields are missing from the input.
	ErrValidation = errors.New("missing required fields: title, category, steps")
)

// SeedResult reports the outcome of a seeding run.
type SeedResult struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Message string `json:"message"`
}

// CategoryDebug is the payload of the category debug endpoint.
type CategoryDebug struct {
	Total      int                   `json:"total"`
	Categories map[pack.Category]int `json:"categories"`
	Sample     []SamplePack          `json:"samplePacks"`
}

// SamplePack is a trimmed record used in debug output.
type SamplePack struct {
	ID       string             `json:"id"`
	Title    string             `json:"title"`
	Category pack.Category      `json:"category"`
	Urgency  pack.RecordUrgency `json:"urgency"`
}

// Service provides pack CRUD over a key-value store.
type Service struct {
	store  kvstore.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a pack service over the given store.
func NewService(store kvstore.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// newPackID generates a collision-resistant id with a time component,
// matching the stored id scheme pack_<unixms>_<suffix>.
func (s *Service) newPackID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("pack_%d_%s", s.now().UTC().UnixMilli(), suffix)
}

// GetAll returns every pack, newest first. A missing or malformed index
// yields an empty result rather than an error.
func (s *Service) GetAll(ctx context.Context) ([]pack.Record, error) {
	ids, err := s.readIndex(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []pack.Record{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = packKeyPrefix + id
	}

	values, err := s.store.MGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetching pack records: %w", err)
	}

	records := make([]pack.Record, 0, len(values))
	for i, value := range values {
		if value == nil {
			continue
		}
		var rec pack.Record
		if err := json.Unmarshal(value, &rec); err != nil {
			s.logger.Warn("skipping malformed pack record",
				zap.String("id", ids[i]), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return parseCreatedAt(records[i].CreatedAt).After(parseCreatedAt(records[j].CreatedAt))
	})
	return records, nil
}

// GetByCategory filters GetAll by exact category match, case-sensitive on
// the stored enum.
func (s *Service) GetByCategory(ctx context.Context, category pack.Category) ([]pack.Record, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]pack.Record, 0, len(all))
	for _, rec := range all {
		if rec.Category == category {
			filtered = append(filtered, rec)
		}
	}
	return filtered, nil
}

// GetByID performs a point lookup. A simple miss returns ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id string) (*pack.Record, error) {
	value, err := s.store.Get(ctx, packKeyPrefix+id)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching pack %s: %w", id, err)
	}

	var rec pack.Record
	if err := json.Unmarshal(value, &rec); err != nil {
		s.logger.Warn("malformed pack record", zap.String("id", id), zap.Error(err))
		return nil, ErrNotFound
	}
	return &rec, nil
}

// Save validates, assigns a fresh id and timestamps, writes the record and
// appends the id to the index. Returns the new id.
func (s *Service) Save(ctx context.Context, rec pack.Record) (string, error) {
	if rec.Title == "" || rec.Category == "" || len(rec.Steps) == 0 {
		return "", ErrValidation
	}

	rec.ID = s.newPackID()
	now := s.now().UTC().Format(time.RFC3339)
	rec.CreatedAt = now
	rec.UpdatedAt = now

	if err := s.writeRecord(ctx, rec); err != nil {
		return "", err
	}

	ids, err := s.readIndex(ctx)
	if err != nil {
		return "", err
	}
	ids = append(ids, rec.ID)
	if err := s.writeIndex(ctx, ids); err != nil {
		return "", err
	}

	s.logger.Info("pack saved", zap.String("id", rec.ID), zap.String("title", rec.Title))
	return rec.ID, nil
}

// Patch carries the updatable subset of a record. Nil fields are left
// unchanged; id and created_at can never be overwritten.
type Patch struct {
	Title      *string             `json:"title,omitempty"`
	OneLiner   *string             `json:"oneLiner,omitempty"`
	Category   *pack.Category      `json:"category,omitempty"`
	Urgency    *pack.RecordUrgency `json:"urgency,omitempty"`
	EstMinutes *int                `json:"estMinutes,omitempty"`
	CTA        *string             `json:"cta,omitempty"`
	Steps      *[]pack.RecordStep  `json:"steps,omitempty"`
}

// Update merges the patch over the existing record. Returns ErrNotFound if
// the id does not exist.
func (s *Service) Update(ctx context.Context, id string, patch Patch) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if patch.Title != nil {
		existing.Title = *patch.Title
	}
	if patch.OneLiner != nil {
		existing.OneLiner = *patch.OneLiner
	}
	if patch.Category != nil {
		existing.Category = *patch.Category
	}
	if patch.Urgency != nil {
		existing.Urgency = *patch.Urgency
	}
	if patch.EstMinutes != nil {
		existing.EstMinutes = *patch.EstMinutes
	}
	if patch.CTA != nil {
		existing.CTA = *patch.CTA
	}
	if patch.Steps != nil {
		existing.Steps = *patch.Steps
	}
	existing.UpdatedAt = s.now().UTC().Format(time.RFC3339)

	if err := s.writeRecord(ctx, *existing); err != nil {
		return err
	}
	s.logger.Info("pack updated", zap.String("id", id))
	return nil
}

// Delete removes the record and its index entry. Deleting an absent id
// returns ErrNotFound, mirroring the update contract.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, packKeyPrefix+id); err != nil {
		return fmt.Errorf("deleting pack %s: %w", id, err)
	}

	ids, err := s.readIndex(ctx)
	if err != nil {
		return err
	}
	filtered := ids[:0]
	for _, existing := range ids {
		if existing != id {
			filtered = append(filtered, existing)
		}
	}
	if err := s.writeIndex(ctx, filtered); err != nil {
		return err
	}

	s.logger.Info("pack deleted", zap.String("id", id))
	return nil
}

// Seed inserts the curated starter set. Idempotent: if any packs exist it
// reports the existing count and performs no writes. Per-item failures are
// logged and skipped rather than failing the batch.
func (s *Service) Seed(ctx context.Context) (SeedResult, error) {
	existing, err := s.GetAll(ctx)
	if err != nil {
		return SeedResult{Message: "seeding failed"}, err
	}
	if len(existing) > 0 {
		return SeedResult{
			Success: true,
			Count:   len(existing),
			Message: fmt.Sprintf("Database already contains %d packs", len(existing)),
		}, nil
	}

	saved := 0
	for _, rec := range seedRecords() {
		if _, err := s.Save(ctx, rec); err != nil {
			s.logger.Error("failed to save seed pack",
				zap.String("title", rec.Title), zap.Error(err))
			continue
		}
		saved++
	}

	s.logger.Info("seeding completed", zap.Int("saved", saved))
	return SeedResult{
		Success: true,
		Count:   saved,
		Message: fmt.Sprintf("Successfully seeded %d packs", saved),
	}, nil
}

// ForceReseed deletes every pack and seeds fresh. Destructive; only reached
// through an explicit operator action, never from normal initialization.
func (s *Service) ForceReseed(ctx context.Context) (SeedResult, error) {
	existing, err := s.GetAll(ctx)
	if err != nil {
		return SeedResult{Message: "force reseed failed"}, err
	}
	for _, rec := range existing {
		if err := s.Delete(ctx, rec.ID); err != nil {
			s.logger.Warn("failed to delete pack during reseed",
				zap.String("id", rec.ID), zap.Error(err))
		}
	}

	result, err := s.Seed(ctx)
	if err != nil {
		return result, err
	}
	result.Message = "Force reseed completed. " + result.Message
	return result, nil
}

// CategoryCounts reports per-category totals plus a small sample, for the
// debug endpoint.
func (s *Service) CategoryCounts(ctx context.Context) (CategoryDebug, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return CategoryDebug{}, err
	}

	debug := CategoryDebug{
		Total:      len(all),
		Categories: make(map[pack.Category]int),
	}
	for _, rec := range all {
		debug.Categories[rec.Category]++
	}
	for _, rec := range all {
		if len(debug.Sample) == 5 {
			break
		}
		debug.Sample = append(debug.Sample, SamplePack{
			ID:       rec.ID,
			Title:    rec.Title,
			Category: rec.Category,
			Urgency:  rec.Urgency,
		})
	}
	return debug, nil
}

func (s *Service) readIndex(ctx context.Context) ([]string, error) {
	value, err := s.store.Get(ctx, indexKey)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading pack index: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(value, &ids); err != nil {
		s.logger.Warn("invalid pack index format", zap.Error(err))
		return nil, nil
	}
	return ids, nil
}

func (s *Service) writeIndex(ctx context.Context, ids []string) error {
	value, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encoding pack index: %w", err)
	}
	if err := s.store.Set(ctx, indexKey, value); err != nil {
		return fmt.Errorf("writing pack index: %w", err)
	}
	return nil
}

func (s *Service) writeRecord(ctx context.Context, rec pack.Record) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding pack %s: %w", rec.ID, err)
	}
	if err := s.store.Set(ctx, packKeyPrefix+rec.ID, value); err != nil {
		return fmt.Errorf("writing pack %s: %w", rec.ID, err)
	}
	return nil
}

func parseCreatedAt(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
