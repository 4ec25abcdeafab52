package producer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresBrokers(t *testing.T) {
	_, err := New(Config{}, nil)
	require.Error(t, err)
}

func TestToRecordCopiesHeaders(t *testing.T) {
	rec := toRecord(&Message{
		Topic:   "claimchain.lifecycle",
		Key:     []byte("claim-7"),
		Value:   []byte(`{"type":"claim.submitted"}`),
		Headers: map[string]string{"event_type": "claim.submitted"},
	})

	assert.Equal(t, "claimchain.lifecycle", rec.Topic)
	assert.Equal(t, []byte("claim-7"), rec.Key)
	require.Len(t, rec.Headers, 1)
	assert.Equal(t, "event_type", rec.Headers[0].Key)
	assert.Equal(t, []byte("claim.submitted"), rec.Headers[0].Value)
}

func TestClosedProducerRejectsMessages(t *testing.T) {
	p, err := New(DefaultConfig("127.0.0.1:1"), nil)
	require.NoError(t, err)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	assert.ErrorIs(t, p.ProduceAsync(&Message{Topic: "t"}), ErrClosed)
	assert.ErrorIs(t, p.Produce(t.Context(), &Message{Topic: "t"}), ErrClosed)
	assert.ErrorIs(t, p.Ping(t.Context()), ErrClosed)
}
