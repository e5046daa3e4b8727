package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	c := NewClient(" a:9092, ,b:9092 ")
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.Brokers)
	assert.True(t, c.Enabled())

	assert.False(t, NewClient("").Enabled())
}

type recordingWriter struct {
	msgs []kafka.Message
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestPublishJSON(t *testing.T) {
	w := &recordingWriter{}
	require.NoError(t, PublishJSON(context.Background(), w, "k1", map[string]int{"n": 1}))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "k1", string(w.msgs[0].Key))
	var got map[string]int
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, 1, got["n"])
	assert.False(t, w.msgs[0].Time.IsZero())
}

func TestNewWriter(t *testing.T) {
	w := NewClient("localhost:9092").NewWriter("payment.simulated", nil)
	assert.Equal(t, "payment.simulated", w.Topic)
	assert.True(t, w.Async)
}
