package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ampplex/influencerflow/internal/model"
	"github.com/ampplex/influencerflow/internal/repository"
)

func newTestQueue() *InMemoryQueue {
	q := NewInMemoryQueue()
	q.RetryDelay = time.Millisecond
	return q
}

func TestInMemoryQueueRetriesUntilSuccess(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := newTestQueue()
	var mu sync.Mutex
	calls := 0
	require.NoError(t, q.Subscribe("t", func(payload any) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	}))

	require.NoError(t, q.Publish("t", 42))
	q.Wait()
	assert.Equal(t, 3, calls)
}

func TestInMemoryQueueGivesUp(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := newTestQueue()
	q.MaxRetries = 2
	calls := 0
	require.NoError(t, q.Subscribe("t", func(payload any) error {
		calls++
		return errors.New("always")
	}))

	require.NoError(t, q.Publish("t", "x"))
	q.Wait()
	assert.Equal(t, 3, calls)
}

func TestInMemoryQueueWithoutSubscribers(t *testing.T) {
	err := newTestQueue().Publish("nobody", 1)
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	id := uuid.New()
	want := model.DealAccepted{OutreachID: id}
	raw, _ := json.Marshal(want)

	for name, payload := range map[string]any{
		"value":   want,
		"pointer": &want,
		"raw":     json.RawMessage(raw),
		"bytes":   raw,
	} {
		t.Run(name, func(t *testing.T) {
			got, err := Decode[model.DealAccepted](payload)
			require.NoError(t, err)
			assert.Equal(t, id, got.OutreachID)
		})
	}

	_, err := Decode[model.DealAccepted](12)
	assert.Error(t, err)
}

type recordingDealHandler struct {
	mu    sync.Mutex
	deals []model.DealAccepted
}

func (h *recordingDealHandler) HandleDealAccepted(ctx context.Context, deal model.DealAccepted) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deals = append(h.deals, deal)
	return nil
}

func TestStartDealAcceptedSubscriber(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := newTestQueue()
	h := &recordingDealHandler{}
	require.NoError(t, StartDealAcceptedSubscriber(context.Background(), q, h))

	deal := model.DealAccepted{OutreachID: uuid.New(), CampaignID: uuid.New()}
	raw, _ := json.Marshal(deal)
	require.NoError(t, q.Publish(model.TopicDealAccepted, json.RawMessage(raw)))
	require.NoError(t, q.Publish(model.TopicDealAccepted, json.RawMessage(`{"outreach_id":`)))
	q.Wait()

	require.Len(t, h.deals, 1)
	assert.Equal(t, deal.OutreachID, h.deals[0].OutreachID)
}

type fakeOutbox struct {
	events    []model.OutboxEvent
	published map[uuid.UUID]bool
}

func (f *fakeOutbox) Add(ctx context.Context, topic string, payload any) error {
	body, _ := json.Marshal(payload)
	f.events = append(f.events, model.OutboxEvent{ID: uuid.New(), Topic: topic, Payload: body})
	return nil
}

func (f *fakeOutbox) FetchUnpublished(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	var out []model.OutboxEvent
	for _, e := range f.events {
		if !f.published[e.ID] && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeOutbox) MarkPublished(ctx context.Context, id uuid.UUID) error {
	f.published[id] = true
	return nil
}

type fakeTx struct{ repos repository.Repos }

func (f fakeTx) InTx(ctx context.Context, fn func(repository.Repos) error) error {
	return fn(f.repos)
}

type flakyQueue struct {
	failTopic string
	sent      []string
}

func (q *flakyQueue) Publish(topic string, payload any) error {
	if topic == q.failTopic {
		return errors.New("broker down")
	}
	q.sent = append(q.sent, topic)
	return nil
}

func (q *flakyQueue) Subscribe(string, func(any) error) error { return nil }

func TestRelayFlush(t *testing.T) {
	ctx := context.Background()
	outbox := &fakeOutbox{published: map[uuid.UUID]bool{}}
	require.NoError(t, outbox.Add(ctx, model.TopicDealAccepted, model.DealAccepted{}))
	require.NoError(t, outbox.Add(ctx, "broken.topic", map[string]string{}))
	require.NoError(t, outbox.Add(ctx, model.TopicDealAccepted, model.DealAccepted{}))

	q := &flakyQueue{failTopic: "broken.topic"}
	relay := &Relay{
		Store:     fakeTx{repos: repository.Repos{Outbox: outbox}},
		Queue:     q,
		BatchSize: 10,
		Log:       newTestQueue().Log,
	}

	n, err := relay.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{model.TopicDealAccepted, model.TopicDealAccepted}, q.sent)

	// the failed row stays pending for the next flush
	pending, _ := outbox.FetchUnpublished(ctx, 10)
	require.Len(t, pending, 1)
	assert.Equal(t, "broken.topic", pending[0].Topic)
}

func TestRelayRunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	outbox := &fakeOutbox{published: map[uuid.UUID]bool{}}
	relay := &Relay{
		Store:     fakeTx{repos: repository.Repos{Outbox: outbox}},
		Queue:     &flakyQueue{},
		Interval:  time.Millisecond,
		BatchSize: 10,
		Log:       newTestQueue().Log,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}
