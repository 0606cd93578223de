package dispatch_test

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"order-notifier/internal/dispatch"
	"order-notifier/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSender падает на токенах из failing и считает параллельные вызовы.
type fakeSender struct {
	failing map[string]bool
	delay   time.Duration

	mu       sync.Mutex
	sent     []string
	inFlight int32
	maxSeen  int32
}

func (f *fakeSender) Name() string { return "fake" }

func (f *fakeSender) Send(ctx context.Context, _ models.DispatchAuth, msg models.NotificationMessage) models.DispatchResult {
	n := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		old := atomic.LoadInt32(&f.maxSeen)
		if n <= old || atomic.CompareAndSwapInt32(&f.maxSeen, old, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.sent = append(f.sent, msg.TargetToken)
	f.mu.Unlock()

	if f.failing[msg.TargetToken] {
		return models.DispatchResult{Status: http.StatusNotFound, Body: "UNREGISTERED", Unregistered: true}
	}
	return models.DispatchResult{OK: true, Status: http.StatusOK, Body: `{"name":"x"}`}
}

// barrierSender отпускает отправки только когда все n уже в полете.
type barrierSender struct {
	n        int32
	inFlight atomic.Int32
	release  chan struct{}
	once     sync.Once
}

func newBarrierSender(n int) *barrierSender {
	return &barrierSender{n: int32(n), release: make(chan struct{})}
}

func (b *barrierSender) Name() string { return "barrier" }

func (b *barrierSender) Send(ctx context.Context, _ models.DispatchAuth, msg models.NotificationMessage) models.DispatchResult {
	if b.inFlight.Add(1) == b.n {
		b.once.Do(func() { close(b.release) })
	}
	select {
	case <-b.release:
		return models.DispatchResult{Token: msg.TargetToken, OK: true, Status: http.StatusOK}
	case <-ctx.Done():
		return models.DispatchResult{Token: msg.TargetToken, Body: ctx.Err().Error()}
	}
}

func messages(tokens ...string) []models.NotificationMessage {
	out := make([]models.NotificationMessage, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, testMessage(tok))
	}
	return out
}

func TestDispatcher_Dispatch(t *testing.T) {
	t.Run("Every message is attempted despite failures", func(t *testing.T) {
		sender := &fakeSender{failing: map[string]bool{"t2": true, "t4": true}}
		d := dispatch.NewDispatcher(sender, 0, time.Second, zap.NewNop())

		results := d.Dispatch(context.Background(), testAuth, messages("t1", "t2", "t3", "t4", "t5"))

		require.Len(t, results, 5)
		assert.ElementsMatch(t, []string{"t1", "t2", "t3", "t4", "t5"}, sender.sent)
		for i, tok := range []string{"t1", "t2", "t3", "t4", "t5"} {
			assert.Equal(t, tok, results[i].Token)
		}
		assert.False(t, results[1].OK)
		assert.False(t, results[3].OK)
		assert.True(t, results[0].OK)

		err := dispatch.Aggregate(results, true)
		var partial *models.PartialSendFailureError
		require.ErrorAs(t, err, &partial)
		assert.Equal(t, 2, partial.Failed)
		assert.Equal(t, 5, partial.Total)
		assert.ElementsMatch(t, []string{"t2", "t4"}, partial.FailedTokens)
		assert.ElementsMatch(t, []string{"t2", "t4"}, dispatch.UnregisteredTokens(results))
	})

	t.Run("Concurrency limit is respected", func(t *testing.T) {
		sender := &fakeSender{delay: 20 * time.Millisecond}
		d := dispatch.NewDispatcher(sender, 2, time.Second, zap.NewNop())

		results := d.Dispatch(context.Background(), testAuth, messages("a", "b", "c", "d", "e", "f"))

		require.Len(t, results, 6)
		assert.LessOrEqual(t, atomic.LoadInt32(&sender.maxSeen), int32(2))
	})

	t.Run("Broadcast sends are in flight together", func(t *testing.T) {
		tokens := []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8"}
		sender := newBarrierSender(len(tokens))
		d := dispatch.NewDispatcher(sender, 0, 2*time.Second, zap.NewNop())

		results := d.Dispatch(context.Background(), testAuth, messages(tokens...))

		require.Len(t, results, len(tokens))
		for _, r := range results {
			assert.True(t, r.OK, "send to %s was not released: %s", r.Token, r.Body)
		}
		assert.NoError(t, dispatch.Aggregate(results, true))
	})

	t.Run("Unlimited concurrency overlaps delayed sends", func(t *testing.T) {
		sender := &fakeSender{delay: 50 * time.Millisecond}
		d := dispatch.NewDispatcher(sender, 0, time.Second, zap.NewNop())

		results := d.Dispatch(context.Background(), testAuth, messages("a", "b", "c", "d", "e"))

		require.Len(t, results, 5)
		assert.Equal(t, int32(5), atomic.LoadInt32(&sender.maxSeen))
	})

	t.Run("No messages", func(t *testing.T) {
		d := dispatch.NewDispatcher(&fakeSender{}, 0, time.Second, zap.NewNop())
		assert.Empty(t, d.Dispatch(context.Background(), testAuth, nil))
	})
}

func TestAggregate(t *testing.T) {
	t.Run("Single success", func(t *testing.T) {
		assert.NoError(t, dispatch.Aggregate([]models.DispatchResult{{OK: true, Status: 200}}, false))
	})

	t.Run("Single failure carries provider status and body", func(t *testing.T) {
		err := dispatch.Aggregate([]models.DispatchResult{{Status: 400, Body: `{"error":"bad"}`}}, false)

		var sendErr *models.SendFailedError
		require.ErrorAs(t, err, &sendErr)
		assert.ErrorIs(t, err, models.ErrNotificationSendFailed)
		assert.Equal(t, 400, sendErr.Status)
		assert.Equal(t, `Failed to send notification: {"error":"bad"}`, err.Error())
	})

	t.Run("Broadcast all ok", func(t *testing.T) {
		assert.NoError(t, dispatch.Aggregate([]models.DispatchResult{{OK: true}, {OK: true}}, true))
	})

	t.Run("Broadcast total failure", func(t *testing.T) {
		err := dispatch.Aggregate([]models.DispatchResult{{Token: "a"}, {Token: "b"}}, true)

		assert.ErrorIs(t, err, models.ErrPartialOrTotalSendFailure)
		assert.Equal(t, "Failed to send some notifications: 2", err.Error())
	})
}

func TestStubSender(t *testing.T) {
	res := dispatch.NewStubSender(zap.NewNop()).Send(context.Background(), testAuth, testMessage("tok"))

	assert.True(t, res.OK)
	assert.Equal(t, "tok", res.Token)
	assert.Contains(t, res.Body, "projects/p1/messages/stub-")
}
