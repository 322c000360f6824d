package stream

import (
	"testing"
	"time"

	"procuredoc-be/internal/constant"
	"procuredoc-be/internal/dto"
	"procuredoc-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBroker() *Broker {
	return NewBroker(logger.NewNopLogger())
}

func TestEmitReachesConsumer(t *testing.T) {
	b := newTestBroker()
	ch := b.Create("job-1")

	b.Emit("job-1", dto.ProgressEvent{
		Phase:      constant.ProgressPhaseGeneration,
		Step:       2,
		TotalSteps: 4,
		Percentage: 90,
	})

	select {
	case envelope := <-ch:
		assert.Equal(t, "job-1-2", envelope.Id)
		assert.Equal(t, "progress", envelope.Type)
		assert.Equal(t, 90, envelope.Data.Percentage)
		assert.False(t, envelope.Data.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("expected an event on the stream")
	}
}

func TestCompleteClosesChannel(t *testing.T) {
	b := newTestBroker()
	ch := b.Create("job-1")

	b.Complete("job-1")

	_, open := <-ch
	assert.False(t, open)
	assert.False(t, b.HasStream("job-1"))
}

func TestEmitAfterCompleteIsNoop(t *testing.T) {
	b := newTestBroker()
	b.Create("job-1")
	b.Complete("job-1")

	// Must not panic on the closed channel.
	b.Emit("job-1", dto.ProgressEvent{Phase: constant.ProgressPhaseComplete})
}

func TestEmitWithoutStreamIsDropped(t *testing.T) {
	b := newTestBroker()

	b.Emit("nobody-listening", dto.ProgressEvent{Phase: constant.ProgressPhaseGeneration})
	assert.Equal(t, 0, b.ActiveCount())
}

func TestErrorEmitsTerminalEventThenCloses(t *testing.T) {
	b := newTestBroker()
	ch := b.Create("job-1")

	b.Error("job-1", assert.AnError)

	envelope, open := <-ch
	require.True(t, open)
	assert.Equal(t, constant.ProgressPhaseError, envelope.Data.Phase)
	assert.Equal(t, assert.AnError.Error(), envelope.Data.Message)

	_, open = <-ch
	assert.False(t, open)
	assert.False(t, b.HasStream("job-1"))
}

func TestAttachKeepsExistingConsumer(t *testing.T) {
	b := newTestBroker()
	primary := b.Create("job-1")
	tap := b.Attach("job-1")
	require.NotNil(t, tap)

	b.Emit("job-1", dto.ProgressEvent{Phase: constant.ProgressPhaseGeneration, Step: 2, Percentage: 90})

	// Both sides receive the event; attaching never tears the stream down.
	for _, ch := range []<-chan dto.ProgressEnvelope{primary, tap} {
		select {
		case envelope := <-ch:
			assert.Equal(t, constant.ProgressPhaseGeneration, envelope.Data.Phase)
			assert.Equal(t, 90, envelope.Data.Percentage)
		case <-time.After(time.Second):
			t.Fatal("expected the event on both receive sides")
		}
	}
	assert.Equal(t, 1, b.ActiveCount())
}

func TestAttachObservesTerminalClose(t *testing.T) {
	b := newTestBroker()
	primary := b.Create("job-1")
	tap := b.Attach("job-1")
	require.NotNil(t, tap)

	b.Error("job-1", assert.AnError)

	for _, ch := range []<-chan dto.ProgressEnvelope{primary, tap} {
		envelope, open := <-ch
		require.True(t, open)
		assert.Equal(t, constant.ProgressPhaseError, envelope.Data.Phase)

		_, open = <-ch
		assert.False(t, open)
	}
	assert.False(t, b.HasStream("job-1"))
}

func TestAttachWithoutStreamReturnsNil(t *testing.T) {
	b := newTestBroker()

	assert.Nil(t, b.Attach("finished-job"))
	assert.Equal(t, 0, b.ActiveCount(), "attaching must not register a stream")
}

func TestDuplicateCreateReplacesStream(t *testing.T) {
	b := newTestBroker()
	first := b.Create("job-1")
	second := b.Create("job-1")

	// Old consumer sees termination, new consumer gets the events.
	_, open := <-first
	assert.False(t, open)

	b.Emit("job-1", dto.ProgressEvent{Phase: constant.ProgressPhaseGeneration, Step: 1})
	select {
	case envelope := <-second:
		assert.Equal(t, constant.ProgressPhaseGeneration, envelope.Data.Phase)
	case <-time.After(time.Second):
		t.Fatal("replacement stream should receive events")
	}

	assert.Equal(t, 1, b.ActiveCount())
}

func TestFullBufferDropsInsteadOfBlocking(t *testing.T) {
	b := newTestBroker()
	b.Create("job-1")

	done := make(chan struct{})
	go func() {
		for i := 0; i < streamBuffer*3; i++ {
			b.Emit("job-1", dto.ProgressEvent{Step: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("emit blocked on a full buffer")
	}
}

func TestStreamExpiresAfterTTL(t *testing.T) {
	b := NewBrokerWithTTL(logger.NewNopLogger(), 20*time.Millisecond)
	ch := b.Create("job-1")

	select {
	case _, open := <-ch:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("stream should have expired")
	}
	assert.False(t, b.HasStream("job-1"))
}
