package tasksvc

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
)

type logRecorder struct {
	mu     sync.Mutex
	errors []string
}

func (*logRecorder) Debug(string, ...interface{}) {}
func (*logRecorder) Info(string, ...interface{})  {}
func (*logRecorder) Warn(string, ...interface{})  {}
func (l *logRecorder) Error(msg string, _ ...interface{}) {
	l.mu.Lock()
	l.errors = append(l.errors, msg)
	l.mu.Unlock()
}
func (*logRecorder) Fatal(string, ...interface{}) {}

func (l *logRecorder) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.errors...)
}

func TestRunner(t *testing.T) {
	logs := new(logRecorder)
	r := NewRunner(core.TasksConfig{Workers: 2, QueueSize: 10}, logs)
	r.Start()

	var wg sync.WaitGroup
	wg.Add(3)
	require.NoError(t, r.Enqueue("ok", func(context.Context) error {
		defer wg.Done()
		return nil
	}))
	require.NoError(t, r.Enqueue("failing", func(context.Context) error {
		defer wg.Done()
		return errors.New("boom")
	}))
	require.NoError(t, r.Enqueue("panicking", func(context.Context) error {
		defer wg.Done()
		panic("oops")
	}))
	wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, r.Stop(ctx))

	assert.ElementsMatch(t, []string{"task failing failed", "task panicking panicked: oops"}, logs.messages())
	assert.Equal(t, ErrStopped, r.Enqueue("late", func(context.Context) error { return nil }))
}

func TestRunner_QueueFull(t *testing.T) {
	r := NewRunner(core.TasksConfig{Workers: 1, QueueSize: 1}, new(logRecorder))

	// not started: the first task fills the queue
	noop := func(context.Context) error { return nil }
	require.NoError(t, r.Enqueue("first", noop))
	err := r.Enqueue("second", noop)
	assert.Equal(t, ErrQueueFull, errors.Cause(err))
}

func TestRunner_StopCancelsTasks(t *testing.T) {
	r := NewRunner(core.TasksConfig{Workers: 1, QueueSize: 1}, new(logRecorder))
	r.Start()

	started := make(chan struct{})
	require.NoError(t, r.Enqueue("long", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return nil
	}))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, r.Stop(ctx))
}

func TestSyncQueue(t *testing.T) {
	logs := new(logRecorder)
	q := NewSyncQueue(context.Background(), logs)

	ran := false
	require.NoError(t, q.Enqueue("ok", func(context.Context) error {
		ran = true
		return nil
	}))
	assert.True(t, ran)

	assert.EqualError(t, q.Enqueue("failing", func(context.Context) error { return errors.New("boom") }), "boom")
	assert.Equal(t, []string{"task failing failed"}, logs.messages())
}
