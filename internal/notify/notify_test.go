package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"hazard-admin/internal/config"
	"hazard-admin/internal/services"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var changedAt = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestSerializeChange(t *testing.T) {
	msg, err := serializeChange(services.ZoneChange{Op: services.OpUpdate, ZoneID: "z1", Count: 3, At: changedAt})
	require.NoError(t, err)

	assert.Equal(t, []byte("z1"), msg.Key)
	assert.JSONEq(t, `{"op":"update","zoneId":"z1","count":3,"at":"2024-06-01T12:00:00Z"}`, string(msg.Value))
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "op", msg.Headers[0].Key)
	assert.Equal(t, []byte("update"), msg.Headers[0].Value)
	assert.Equal(t, []byte("2024-06-01T12:00:00Z"), msg.Headers[1].Value)
}

func TestSerializeChange_CollectionWide(t *testing.T) {
	msg, err := serializeChange(services.ZoneChange{Op: services.OpClear, At: changedAt})
	require.NoError(t, err)
	assert.Equal(t, []byte("*"), msg.Key)
	assert.JSONEq(t, `{"op":"clear","count":0,"at":"2024-06-01T12:00:00Z"}`, string(msg.Value))
}

func TestKafkaPublisher_Publishes(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, timeout: time.Second, logr: zap.NewNop()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.ZonesChanged(ctx, services.ZoneChange{Op: services.OpCreate, ZoneID: "z9", Count: 1, At: changedAt})

	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("z9"), w.msgs[0].Key)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_ErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	w := &fakeWriter{err: errors.New("broker down")}
	p := &KafkaPublisher{writer: w, timeout: time.Second, logr: zap.New(core)}

	p.ZonesChanged(context.Background(), services.ZoneChange{Op: services.OpDelete, ZoneID: "z1", At: changedAt})

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "publish zone change failed", logs.All()[0].Message)
}

func TestNewKafkaPublisher(t *testing.T) {
	p := NewKafkaPublisher(&config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "zones"}, zap.NewNop())
	w, ok := p.writer.(*kafkago.Writer)
	require.True(t, ok)
	assert.Equal(t, "zones", w.Topic)
	assert.Equal(t, 10*time.Millisecond, w.BatchTimeout)
	assert.Equal(t, kafkago.RequireAll, w.RequiredAcks)
	assert.NoError(t, p.Close())
}

func TestLogListener(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := NewLogListener(zap.New(core))

	l.ZonesChanged(context.Background(), services.ZoneChange{Op: services.OpReplace, Count: 4, At: changedAt})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "hazard zones changed", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "replace", fields["op"])
	assert.Equal(t, int64(4), fields["count"])
	assert.NotContains(t, fields, "zone_id")
}
