package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestEmitDataChanged_RunsHandlersAndRecovers(t *testing.T) {
	reset()
	defer reset()

	var mu sync.Mutex
	var got []string
	OnDataChanged(func(_ context.Context, e DataChangeEvent) {
		mu.Lock()
		got = append(got, e.Operation+":"+e.DocumentID)
		mu.Unlock()
	})
	OnDataChanged(func(context.Context, DataChangeEvent) { panic("boom") })

	ctx, cancel := context.WithCancel(context.Background())
	EmitDataChanged(ctx, DataChangeEvent{CollectionName: "products", Operation: OpInsert, DocumentID: "p1"})
	cancel()
	Wait()

	assert.Equal(t, []string{"insert:p1"}, got)
}

func TestKafkaPublisher_PublishesWatchedCollections(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, "products")

	p.Handle(context.Background(), DataChangeEvent{CollectionName: "products", Operation: OpUpdate, DocumentID: "p1"})
	p.Handle(context.Background(), DataChangeEvent{CollectionName: "users", Operation: OpUpdate, DocumentID: "u1"})

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "p1", string(w.msgs[0].Key))

	var msg ChangeMessage
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &msg))
	assert.Equal(t, "products", msg.Collection)
	assert.Equal(t, OpUpdate, msg.Operation)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := newKafkaPublisher(w)

	err := p.Publish(context.Background(), DataChangeEvent{CollectionName: "products", Operation: OpDelete, DocumentID: "p9"})
	assert.EqualError(t, err, "broker down")

	// Handle chỉ log lỗi
	assert.NotPanics(t, func() {
		p.Handle(context.Background(), DataChangeEvent{CollectionName: "products", Operation: OpDelete})
	})
}
