package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	skafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []skafka.Message
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...skafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	t.Parallel()

	fw := &fakeWriter{}
	p := NewKafkaPublisherWithWriter(fw)
	now := time.Now().UTC()
	p.Now = func() time.Time { return now }

	err := p.Publish(context.Background(), UserLogin, "account-1", map[string]string{"ip": "10.0.0.1"})
	require.NoError(t, err)
	require.Len(t, fw.msgs, 1)
	assert.Equal(t, []byte("account-1"), fw.msgs[0].Key)

	var ev Event
	require.NoError(t, json.Unmarshal(fw.msgs[0].Value, &ev))
	assert.Equal(t, UserLogin, ev.Name)
	assert.Equal(t, "account-1", ev.Subject)
	assert.Equal(t, now, ev.At)
	assert.Equal(t, "10.0.0.1", ev.Meta["ip"])
	assert.NotEmpty(t, ev.ID)
}

func TestKafkaPublisher_Close(t *testing.T) {
	t.Parallel()

	fw := &fakeWriter{}
	p := NewKafkaPublisherWithWriter(fw)
	require.NoError(t, p.Close())
	assert.True(t, fw.closed)
}
