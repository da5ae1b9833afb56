package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"hazard-admin/internal/catalog"
	"hazard-admin/internal/models"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

var errDiskFull = errors.New("disk full")

// fakePersister records what was saved and can be told to fail.
type fakePersister struct {
	mu      sync.Mutex
	stored  []models.HazardZone
	saves   int
	failing bool
	loadErr error
}

func (p *fakePersister) Save(_ context.Context, zones []models.HazardZone) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failing {
		return errDiskFull
	}
	p.stored = append([]models.HazardZone{}, zones...)
	p.saves++
	return nil
}

func (p *fakePersister) Load(_ context.Context) ([]models.HazardZone, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loadErr != nil {
		return nil, p.loadErr
	}
	return append([]models.HazardZone(nil), p.stored...), nil
}

func (p *fakePersister) snapshot() []models.HazardZone {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.HazardZone{}, p.stored...)
}

type recordingListener struct {
	mu      sync.Mutex
	changes []ZoneChange
}

func (l *recordingListener) ZonesChanged(_ context.Context, c ZoneChange) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.changes = append(l.changes, c)
}

func (l *recordingListener) all() []ZoneChange {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ZoneChange(nil), l.changes...)
}

var testEpoch = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("zone-%d", n)
	}
}

type storeFixture struct {
	store     *ZoneStore
	persister *fakePersister
	clock     *clockwork.FakeClock
	listener  *recordingListener
}

func newStoreFixture(t *testing.T) *storeFixture {
	t.Helper()
	f := &storeFixture{
		persister: &fakePersister{},
		clock:     clockwork.NewFakeClockAt(testEpoch),
		listener:  &recordingListener{},
	}
	f.store = NewZoneStore(f.persister, catalog.Default(), 500, zap.NewNop(),
		WithClock(f.clock),
		WithIDGenerator(sequentialIDs()),
		WithListeners(f.listener),
	)
	if err := f.store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return f
}

func shelterDraft() models.Draft {
	return models.Draft{
		Name:        "Cyclone Shelter Area",
		Type:        "weather",
		Severity:    "high",
		Center:      &models.LatLng{Lat: -20.16, Lng: 57.5},
		Radius:      2000,
		Description: "Low-lying coastal strip",
	}
}
