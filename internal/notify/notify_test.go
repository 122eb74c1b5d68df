package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"farmacia/m/domain"

	"github.com/gorilla/websocket"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sale = domain.Sale{
	ID:       12,
	ClientID: 3,
	BranchID: 1,
	Total:    decimal.RequireFromString("25.00"),
	Items:    []domain.SaleLineItem{{ProductID: 1}, {ProductID: 2}},
}

type captureSink struct{ events []SaleCommitted }

func (c *captureSink) Publish(_ context.Context, e SaleCommitted) { c.events = append(c.events, e) }

func TestMultiFansOut(t *testing.T) {
	a, b := &captureSink{}, &captureSink{}
	Multi{a, nil, b}.SaleCommitted(context.Background(), sale)

	require.Len(t, a.events, 1)
	require.Len(t, b.events, 1)
	assert.Equal(t, int64(12), a.events[0].SaleID)
	assert.Equal(t, 2, a.events[0].Items)
	assert.Equal(t, "sale.committed", a.events[0].Type)
}

func TestHubBroadcastsToSubscribers(t *testing.T) {
	hub := NewHub("")
	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(context.Background(), NewSaleCommitted(sale))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got SaleCommitted
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, int64(12), got.SaleID)
	assert.True(t, got.Total.Equal(sale.Total))

	conn.Close()
	require.Eventually(t, func() bool { return hub.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHubDropsSubscriberThatFallsBehind(t *testing.T) {
	hub := NewHub("")
	stalled := &subscriber{send: make(chan []byte, 1)}
	stalled.send <- []byte("pending")
	hub.clients[stalled] = struct{}{}

	done := make(chan struct{})
	go func() {
		hub.Publish(context.Background(), NewSaleCommitted(sale))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}

	assert.Zero(t, hub.Len())
	<-stalled.send
	_, open := <-stalled.send
	assert.False(t, open, "send channel is closed so the writer exits")

	// Removing an already dropped subscriber is a no-op.
	hub.remove(stalled)
}

func TestHubRejectsForeignOrigin(t *testing.T) {
	hub := NewHub("http://localhost:5173")
	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := map[string][]string{"Origin": {"http://evil.test"}}
	_, _, err := websocket.DefaultDialer.Dial(url, header)
	assert.Error(t, err)
	assert.Zero(t, hub.Len())
}

type fakeChannel struct {
	key string
	msg amqp.Publishing
	err error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	f.key, f.msg = key, msg
	return f.err
}

func (f *fakeChannel) Close() error { return nil }

func TestQueuePublisherWritesPersistentJSON(t *testing.T) {
	ch := &fakeChannel{}
	p := &QueuePublisher{ch: ch, queue: "sales_committed"}

	p.Publish(context.Background(), NewSaleCommitted(sale))
	assert.Equal(t, "sales_committed", ch.key)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, "12", ch.msg.MessageId)

	var got SaleCommitted
	require.NoError(t, json.Unmarshal(ch.msg.Body, &got))
	assert.Equal(t, int64(3), got.ClientID)

	ch.err = errors.New("channel closed")
	p.Publish(context.Background(), NewSaleCommitted(sale))
	assert.NoError(t, p.Close())
}
