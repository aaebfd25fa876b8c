package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/jeremyjsx/creativelab/internal/events"
	"github.com/jeremyjsx/creativelab/internal/routes"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

type recordingAck struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *recordingAck) Ack(uint64, bool) error {
	a.acked = true
	return nil
}

func (a *recordingAck) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked, a.requeue = true, requeue
	return nil
}

func (a *recordingAck) Reject(_ uint64, requeue bool) error {
	a.nacked, a.requeue = true, requeue
	return nil
}

type fakeInvalidator struct {
	got []routes.Route
	err error
}

func (f *fakeInvalidator) Invalidate(_ context.Context, rs []routes.Route) error {
	f.got = append(f.got, rs...)
	return f.err
}

func delivery(t *testing.T, v any, ack *recordingAck) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return amqp.Delivery{Acknowledger: ack, Body: body}
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestHandleRoutesInvalidated(t *testing.T) {
	ack := &recordingAck{}
	inv := &fakeInvalidator{}
	e := events.NewRoutesInvalidated([]routes.Route{routes.Blog, routes.Post("hello")})

	handleRoutesInvalidated(context.Background(), discard, inv, delivery(t, e, ack))

	assert.True(t, ack.acked)
	assert.Equal(t, []routes.Route{routes.Blog, "/blog/hello"}, inv.got)
}

func TestHandleRoutesInvalidated_Failure(t *testing.T) {
	ack := &recordingAck{}
	inv := &fakeInvalidator{err: errors.New("redis down")}
	e := events.NewRoutesInvalidated([]routes.Route{routes.Sitemap})

	handleRoutesInvalidated(context.Background(), discard, inv, delivery(t, e, ack))
	assert.True(t, ack.nacked)
	assert.True(t, ack.requeue, "first failure is requeued")

	ack = &recordingAck{}
	d := delivery(t, e, ack)
	d.Redelivered = true
	handleRoutesInvalidated(context.Background(), discard, inv, d)
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeue, "redelivered failure is dropped")
}

func TestHandleRoutesInvalidated_BadBody(t *testing.T) {
	ack := &recordingAck{}
	inv := &fakeInvalidator{}
	handleRoutesInvalidated(context.Background(), discard, inv, amqp.Delivery{Acknowledger: ack, Body: []byte("{")})

	assert.True(t, ack.nacked)
	assert.False(t, ack.requeue)
	assert.Empty(t, inv.got)
}

func TestHandlePostPublished(t *testing.T) {
	ack := &recordingAck{}
	e := events.NewPostPublished(uuid.New(), "hello", "Hello", "An excerpt", "https://creativedevlab.com")
	handlePostPublished(discard, delivery(t, e, ack))
	assert.True(t, ack.acked)

	ack = &recordingAck{}
	handlePostPublished(discard, delivery(t, map[string]string{"type": "something.else"}, ack))
	assert.True(t, ack.acked, "unknown types are acked and skipped")
}
