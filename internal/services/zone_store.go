package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"hazard-admin/internal/catalog"
	"hazard-admin/internal/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Persister stores the full ordered zone list under a fixed namespace.
// Load returns an empty list, not an error, when nothing usable is stored.
type Persister interface {
	Save(ctx context.Context, zones []models.HazardZone) error
	Load(ctx context.Context) ([]models.HazardZone, error)
}

type ChangeOp string

const (
	OpCreate  ChangeOp = "create"
	OpUpdate  ChangeOp = "update"
	OpDelete  ChangeOp = "delete"
	OpClear   ChangeOp = "clear"
	OpReplace ChangeOp = "replace"
)

// ZoneChange describes one committed mutation of the zone list.
type ZoneChange struct {
	Op     ChangeOp  `json:"op"`
	ZoneID string    `json:"zoneId,omitempty"` // empty for collection-wide ops
	Count  int       `json:"count"`
	At     time.Time `json:"at"`
}

// ChangeListener is told about every committed mutation so views can refresh.
type ChangeListener interface {
	ZonesChanged(ctx context.Context, change ZoneChange)
}

type pendingEdit struct {
	zoneID string
	draft  models.Draft
}

// ZoneStore owns the authoritative in-memory list of hazard zones and mirrors
// it into a Persister on every mutation.
type ZoneStore struct {
	mu    sync.Mutex
	zones []models.HazardZone
	edit  *pendingEdit
	seq   uint64 // committed mutations, guarded by mu

	// Listeners are called outside mu but strictly in commit order.
	notifyMu  sync.Mutex
	notified  uint64
	notifyCnd *sync.Cond

	persister Persister
	validator *ZoneValidator
	catalog   *catalog.Catalog
	clock     clockwork.Clock
	newID     func() string
	listeners []ChangeListener
	logr      *zap.Logger
}

type ZoneStoreOption func(*ZoneStore)

// WithClock is useful for tests.
func WithClock(c clockwork.Clock) ZoneStoreOption {
	return func(s *ZoneStore) { s.clock = c }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(fn func() string) ZoneStoreOption {
	return func(s *ZoneStore) { s.newID = fn }
}

// WithListeners registers change listeners, called in order after each mutation.
// Changes are delivered one at a time in commit order; a listener may read the
// store but must not mutate it.
func WithListeners(ls ...ChangeListener) ZoneStoreOption {
	return func(s *ZoneStore) { s.listeners = append(s.listeners, ls...) }
}

func NewZoneStore(p Persister, cat *catalog.Catalog, minRadius float64, logr *zap.Logger, opts ...ZoneStoreOption) *ZoneStore {
	s := &ZoneStore{
		persister: p,
		validator: NewZoneValidator(cat, minRadius),
		catalog:   cat,
		clock:     clockwork.NewRealClock(),
		newID:     uuid.NewString,
		logr:      logr,
	}
	s.notifyCnd = sync.NewCond(&s.notifyMu)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog exposes the severity and hazard type enumerations.
func (s *ZoneStore) Catalog() *catalog.Catalog {
	return s.catalog
}

// MinRadius is the smallest radius in meters a zone may have.
func (s *ZoneStore) MinRadius() float64 {
	return s.validator.MinRadius()
}

// Init replaces the in-memory list with whatever the persister holds.
func (s *ZoneStore) Init(ctx context.Context) error {
	zones, err := s.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("load hazard zones: %w", err)
	}

	if zones == nil {
		zones = []models.HazardZone{}
	}

	s.mu.Lock()
	s.zones = zones
	s.edit = nil
	s.mu.Unlock()

	s.logr.Info("hazard zones loaded", zap.Int("count", len(zones)))
	return nil
}

// Teardown drops in-memory state without touching the persister.
func (s *ZoneStore) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zones = nil
	s.edit = nil
}

// List returns a snapshot of all zones in insertion order.
func (s *ZoneStore) List() []models.HazardZone {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.HazardZone, len(s.zones))
	copy(out, s.zones)
	return out
}

// Filter returns the zones matching any of the given severities and any of
// the given types. An empty filter matches everything.
func (s *ZoneStore) Filter(severities, types []string) []models.HazardZone {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.HazardZone, 0, len(s.zones))
	for _, z := range s.zones {
		if len(severities) > 0 && !slices.Contains(severities, z.Severity) {
			continue
		}
		if len(types) > 0 && !slices.Contains(types, z.Type) {
			continue
		}
		out = append(out, z)
	}
	return out
}

func (s *ZoneStore) Get(id string) (models.HazardZone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.zones, id)
	if i < 0 {
		return models.HazardZone{}, &NotFoundError{ID: id}
	}
	return s.zones[i], nil
}

// Create validates d and appends a new zone with a fresh id and timestamp.
func (s *ZoneStore) Create(ctx context.Context, d models.Draft) (models.HazardZone, error) {
	var created models.HazardZone
	err := s.mutate(ctx, func(zones []models.HazardZone) ([]models.HazardZone, ZoneChange, error) {
		if problems := s.validator.Draft(d); len(problems) > 0 {
			return nil, ZoneChange{}, &ValidationError{Problems: problems}
		}
		created = s.fromDraft(d, s.newID(), s.clock.Now().UTC())

		next := make([]models.HazardZone, 0, len(zones)+1)
		next = append(next, zones...)
		next = append(next, created)
		return next, ZoneChange{Op: OpCreate, ZoneID: created.ID}, nil
	})
	if err != nil {
		return models.HazardZone{}, err
	}
	return created, nil
}

// Update replaces the mutable fields of zone id, keeping its id, creation time
// and position in the list.
func (s *ZoneStore) Update(ctx context.Context, id string, d models.Draft) (models.HazardZone, error) {
	var updated models.HazardZone
	err := s.mutate(ctx, func(zones []models.HazardZone) ([]models.HazardZone, ZoneChange, error) {
		next, z, err := s.applyUpdate(zones, id, d)
		updated = z
		return next, ZoneChange{Op: OpUpdate, ZoneID: id}, err
	})
	if err != nil {
		return models.HazardZone{}, err
	}
	return updated, nil
}

func (s *ZoneStore) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, func(zones []models.HazardZone) ([]models.HazardZone, ZoneChange, error) {
		i := indexOf(zones, id)
		if i < 0 {
			return nil, ZoneChange{}, &NotFoundError{ID: id}
		}
		next := make([]models.HazardZone, 0, len(zones)-1)
		next = append(next, zones[:i]...)
		next = append(next, zones[i+1:]...)
		return next, ZoneChange{Op: OpDelete, ZoneID: id}, nil
	})
}

// Clear empties the list unconditionally and persists the empty list.
func (s *ZoneStore) Clear(ctx context.Context) error {
	return s.mutate(ctx, func([]models.HazardZone) ([]models.HazardZone, ZoneChange, error) {
		return []models.HazardZone{}, ZoneChange{Op: OpClear}, nil
	})
}

// ReplaceAll swaps the whole list for records, typically from an import.
// Every record must pass the same checks as Create and carry a unique id;
// all problems are reported together and nothing changes if any is found.
func (s *ZoneStore) ReplaceAll(ctx context.Context, records []models.HazardZone) error {
	return s.mutate(ctx, func([]models.HazardZone) ([]models.HazardZone, ZoneChange, error) {
		var problems []string
		seen := make(map[string]int, len(records))
		next := make([]models.HazardZone, 0, len(records))

		for i, r := range records {
			for _, p := range s.validator.Record(r) {
				problems = append(problems, fmt.Sprintf("hazardZones[%d].%s", i, p))
			}
			if r.ID != "" {
				if first, dup := seen[r.ID]; dup {
					problems = append(problems, fmt.Sprintf("hazardZones[%d].id: duplicates hazardZones[%d]", i, first))
				} else {
					seen[r.ID] = i
				}
			}
			if len(problems) > 0 {
				continue
			}
			r.Name = strings.TrimSpace(r.Name)
			r.Color, _ = s.catalog.ColorFor(r.Severity)
			next = append(next, r)
		}

		if len(problems) > 0 {
			return nil, ZoneChange{}, &ValidationError{Problems: problems}
		}
		return next, ZoneChange{Op: OpReplace}, nil
	})
}

// mutate runs fn under the lock, persists its result and only then commits it
// in memory. Listeners are notified after the lock is released, in the order
// the changes were committed.
func (s *ZoneStore) mutate(ctx context.Context, fn func([]models.HazardZone) ([]models.HazardZone, ZoneChange, error)) error {
	s.mu.Lock()
	next, change, err := fn(s.zones)
	if err == nil {
		if err = s.persister.Save(ctx, next); err != nil {
			err = fmt.Errorf("persist hazard zones: %w", err)
		} else {
			s.zones = next
			s.seq++
			change.Count = len(next)
			change.At = s.clock.Now().UTC()
		}
	}
	ticket := s.seq
	s.mu.Unlock()

	if err != nil {
		return err
	}

	s.notifyMu.Lock()
	for s.notified+1 != ticket {
		s.notifyCnd.Wait()
	}
	s.notifyMu.Unlock()

	for _, l := range s.listeners {
		l.ZonesChanged(ctx, change)
	}

	s.notifyMu.Lock()
	s.notified = ticket
	s.notifyCnd.Broadcast()
	s.notifyMu.Unlock()
	return nil
}

func (s *ZoneStore) applyUpdate(zones []models.HazardZone, id string, d models.Draft) ([]models.HazardZone, models.HazardZone, error) {
	i := indexOf(zones, id)
	if i < 0 {
		return nil, models.HazardZone{}, &NotFoundError{ID: id}
	}
	if problems := s.validator.Draft(d); len(problems) > 0 {
		return nil, models.HazardZone{}, &ValidationError{Problems: problems}
	}

	updated := s.fromDraft(d, zones[i].ID, zones[i].CreatedAt)
	next := slices.Clone(zones)
	next[i] = updated
	return next, updated, nil
}

// fromDraft builds a zone from a validated draft. Color always comes from the
// severity table; any color hint on the draft is ignored.
func (s *ZoneStore) fromDraft(d models.Draft, id string, createdAt time.Time) models.HazardZone {
	color, _ := s.catalog.ColorFor(d.Severity)
	return models.HazardZone{
		ID:          id,
		Name:        strings.TrimSpace(d.Name),
		Type:        d.Type,
		Severity:    d.Severity,
		Color:       color,
		Center:      *d.Center,
		Radius:      d.Radius,
		Description: d.Description,
		CreatedAt:   createdAt,
	}
}

func indexOf(zones []models.HazardZone, id string) int {
	return slices.IndexFunc(zones, func(z models.HazardZone) bool { return z.ID == id })
}
