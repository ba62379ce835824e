package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/everaidhq/everaid/internal/pack"
	"github.com/everaidhq/everaid/internal/packsvc"
	"github.com/everaidhq/everaid/pkg/packfile"
)

// Manager is the device-side pack facade. It merges server packs with
// locally owned ones behind a TTL cache, and routes reads and writes to
// whichever side owns the pack.
type Manager struct {
	api    *API
	local  *LocalStore
	cache  *Cache
	logger *zap.Logger
	now    func() time.Time
}

// NewManager creates a manager. ttl <= 0 uses DefaultCacheTTL.
func NewManager(api *API, local *LocalStore, ttl time.Duration, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		api:    api,
		local:  local,
		cache:  NewCache(ttl),
		logger: logger,
		now:    time.Now,
	}
}

// isLocalID reports whether an id belongs to the device-local namespace.
func isLocalID(id string) bool {
	return strings.HasPrefix(id, "local_")
}

// GetAllPacks returns locally owned packs followed by server packs.
// Results are cached; within the TTL no network call is made. When the
// server is unreachable, a stale cached list is served if one exists,
// otherwise just the local packs.
func (m *Manager) GetAllPacks(ctx context.Context) ([]pack.Pack, error) {
	if cached, ok := m.cache.Get(m.now()); ok {
		return cached, nil
	}

	localPacks, err := m.local.List()
	if err != nil {
		return nil, fmt.Errorf("reading local packs: %w", err)
	}

	records, err := m.api.ListPacks(ctx, "")
	if err != nil {
		m.logger.Warn("fetching remote packs failed", zap.Error(err))
		if stale, ok := m.cache.Stale(); ok {
			return stale, nil
		}
		return localPacks, nil
	}

	// Remote packs first, then locally owned ones. First occurrence wins on
	// an id collision; ids are namespaced by origin so this is only a
	// backstop.
	merged := make([]pack.Pack, 0, len(localPacks)+len(records))
	seen := make(map[string]struct{}, len(localPacks)+len(records))
	for i := range records {
		p := records[i].Pack()
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		merged = append(merged, p)
	}
	for _, p := range localPacks {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		merged = append(merged, p)
	}

	m.cache.Put(merged, m.now())
	return merged, nil
}

// GetPackSteps returns the step block for a pack, from the local store for
// locally owned ids and from the server otherwise.
func (m *Manager) GetPackSteps(ctx context.Context, id string) (*pack.StepsBlock, error) {
	if isLocalID(id) {
		p, steps, err := m.local.Get(id)
		if err != nil {
			return nil, err
		}
		return &pack.StepsBlock{
			Title:   p.Title,
			Urgency: p.Urgency,
			EtaMin:  p.EtaMin,
			Steps:   steps,
			Source:  "local",
		}, nil
	}

	rec, err := m.api.GetPack(ctx, id)
	if err != nil {
		return nil, err
	}
	return &pack.StepsBlock{
		Title:   rec.Title,
		Urgency: pack.UrgencyOf(rec.Urgency),
		EtaMin:  rec.EstMinutes,
		Steps:   rec.ClientSteps(),
		Source:  "remote",
	}, nil
}

// SaveCustomPack stores a pack in the local namespace and returns its id.
// Packs without a local id get a fresh one; origin and offline flags are
// forced so a custom pack can never masquerade as a server pack.
func (m *Manager) SaveCustomPack(p pack.Pack, steps []pack.Step) (string, error) {
	if !isLocalID(p.ID) {
		p.ID = packfile.NewLocalID()
	}
	p.Origin = pack.OriginCustom
	p.IsOffline = true
	if p.CreatedAt == "" {
		p.CreatedAt = m.now().UTC().Format(time.RFC3339)
	}

	if err := m.local.Put(p, steps); err != nil {
		return "", err
	}
	m.cache.Invalidate()
	m.logger.Info("custom pack saved", zap.String("id", p.ID), zap.String("title", p.Title))
	return p.ID, nil
}

// SaveDraft converts an AI draft into a custom pack and stores it.
func (m *Manager) SaveDraft(draft pack.Generated) (string, error) {
	p := pack.Pack{
		Title:               draft.Title,
		OneLiner:            draft.OneLiner,
		DetailedDescription: draft.DetailedDescription,
		Umbrella:            draft.Category,
		Urgency:             draft.Urgency,
		EtaMin:              draft.EtaMin,
		CTA:                 draft.CTA,
		Icon:                "default",
		Source:              "ai",
	}
	return m.SaveCustomPack(p, draft.Steps)
}

// DeleteCustomPack removes a locally owned pack and its steps. Deleting a
// pack that does not exist locally is a no-op.
func (m *Manager) DeleteCustomPack(id string) error {
	if err := m.local.Delete(id); err != nil {
		if errors.Is(err, ErrLocalNotFound) {
			return nil
		}
		return err
	}
	m.cache.Invalidate()
	return nil
}

// ExportPack serializes a pack (local or remote) into the interchange
// format.
func (m *Manager) ExportPack(ctx context.Context, id, author string) ([]byte, error) {
	if isLocalID(id) {
		p, steps, err := m.local.Get(id)
		if err != nil {
			return nil, err
		}
		return packfile.Export(*p, steps, author)
	}

	rec, err := m.api.GetPack(ctx, id)
	if err != nil {
		return nil, err
	}
	return packfile.Export(rec.Pack(), rec.ClientSteps(), author)
}

// ImportPack validates an interchange document and stores its pack
// locally. Returns the imported pack with its fresh local id.
func (m *Manager) ImportPack(data []byte) (pack.Pack, error) {
	p, steps, err := packfile.Import(data)
	if err != nil {
		return pack.Pack{}, err
	}
	if err := m.local.Put(p, steps); err != nil {
		return pack.Pack{}, err
	}
	m.cache.Invalidate()
	m.logger.Info("pack imported", zap.String("id", p.ID), zap.String("title", p.Title))
	return p, nil
}

// InitializeDatabase asks the server to seed its starter packs. Safe on
// every startup; the server only writes when empty.
func (m *Manager) InitializeDatabase(ctx context.Context) (packsvc.SeedResult, error) {
	if err := m.api.Health(ctx); err != nil {
		return packsvc.SeedResult{}, fmt.Errorf("server unreachable: %w", err)
	}
	return m.api.Seed(ctx)
}

// ForceReseed wipes and reseeds the server store, then drops the cache.
func (m *Manager) ForceReseed(ctx context.Context) (packsvc.SeedResult, error) {
	result, err := m.api.Reseed(ctx)
	if err != nil {
		return result, err
	}
	m.cache.Invalidate()
	return result, nil
}

// InvalidateCache drops the cached pack list. The next read refetches.
func (m *Manager) InvalidateCache() {
	m.cache.Invalidate()
}
