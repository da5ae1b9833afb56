package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hazard-admin/internal/models"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// zoneSnapshot is one namespace's full zone list.
type zoneSnapshot struct {
	bun.BaseModel `bun:"table:hazard_zone_snapshots,alias:hzs"`

	Namespace string    `bun:"namespace,pk"`
	Payload   string    `bun:"payload,type:jsonb,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// PostgresStore keeps the list as a jsonb row keyed by namespace.
type PostgresStore struct {
	db        *bun.DB
	namespace string
	logr      *zap.Logger
}

func NewPostgresStore(db *bun.DB, namespace string, logr *zap.Logger) *PostgresStore {
	return &PostgresStore{db: db, namespace: namespace, logr: logr}
}

// Migrate creates the snapshot table when missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*zoneSnapshot)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create hazard_zone_snapshots: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, zones []models.HazardZone) error {
	b, err := encodeZones(zones)
	if err != nil {
		return err
	}

	snap := &zoneSnapshot{
		Namespace: s.namespace,
		Payload:   string(b),
		UpdatedAt: time.Now().UTC(),
	}
	_, err = s.db.NewInsert().
		Model(snap).
		On("CONFLICT (namespace) DO UPDATE").
		Set("payload = EXCLUDED.payload").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", s.namespace, err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) ([]models.HazardZone, error) {
	var snap zoneSnapshot
	err := s.db.NewSelect().
		Model(&snap).
		Where("namespace = ?", s.namespace).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []models.HazardZone{}, nil
		}
		return nil, fmt.Errorf("load snapshot %s: %w", s.namespace, err)
	}
	return decodeZones([]byte(snap.Payload), "postgres:"+s.namespace, s.logr), nil
}
