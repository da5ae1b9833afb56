// Package notify tells interested parties that the zone list changed.
package notify

import (
	"context"
	"time"

	"hazard-admin/internal/services"

	"go.uber.org/zap"
)

// LogListener writes one structured line per committed change.
type LogListener struct {
	logr *zap.Logger
}

func NewLogListener(logr *zap.Logger) *LogListener {
	return &LogListener{logr: logr}
}

func (l *LogListener) ZonesChanged(_ context.Context, c services.ZoneChange) {
	fields := []zap.Field{
		zap.String("op", string(c.Op)),
		zap.Int("count", c.Count),
		zap.String("at", c.At.Format(time.RFC3339)),
	}
	if c.ZoneID != "" {
		fields = append(fields, zap.String("zone_id", c.ZoneID))
	}
	l.logr.Info("hazard zones changed", fields...)
}
