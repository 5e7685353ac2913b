package task

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-modcontrol/logger"
)

func newMockLogger() *logger.MockLogger {
	return logger.NewMockLogger().Ignore("Debug", "Error")
}

func TestManager_Start(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mgr := NewManager(ctx, newMockLogger())

	require.NoError(t, mgr.Start("loop", func() bool {
		time.Sleep(time.Millisecond)
		return true
	}))
	assert.Equal(t, 1, mgr.TaskCount())

	cancel()
	mgr.Wait()
	assert.Equal(t, 0, mgr.TaskCount())
}

func TestManager_StartReceiver_CancelFunc(t *testing.T) {
	mgr := NewManager(context.Background(), newMockLogger())

	var iterations atomic.Int32
	exited := make(chan struct{})

	require.NoError(t, mgr.StartReceiver("receiver", func() bool {
		return iterations.Add(1) < 3
	}, func() { close(exited) }))

	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("cancel func not called")
	}

	assert.Equal(t, int32(3), iterations.Load())
	mgr.Wait()
	assert.Equal(t, 0, mgr.TaskCount())
}

func TestManager_PanicEndsTask(t *testing.T) {
	l := newMockLogger()
	mgr := NewManager(context.Background(), l)

	require.NoError(t, mgr.Start("panicky", func() bool {
		panic("boom")
	}))
	mgr.Wait()

	assert.Equal(t, 0, mgr.TaskCount())
	l.AssertCalled(t, "Error", "panic in task", mock.Anything)
}

func TestManager_StartInterval(t *testing.T) {
	mgr := NewManager(context.Background(), newMockLogger())

	var runs atomic.Int32
	ticker, err := mgr.StartInterval("interval", func() bool {
		runs.Add(1)
		return true
	}, 10*time.Millisecond, true)
	require.NoError(t, err)
	require.NotNil(t, ticker)
	assert.Equal(t, int32(1), runs.Load(), "runNow executes immediately")

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)

	_, err = mgr.StartInterval("interval", func() bool { return true }, time.Second, false)
	require.Error(t, err, "duplicate name is rejected")

	mgr.Stop()
	mgr.Wait()
	assert.Equal(t, 0, mgr.TaskCount())
}

func TestManager_StartInterval_InvalidInterval(t *testing.T) {
	mgr := NewManager(context.Background(), newMockLogger())

	_, err := mgr.StartInterval("bad", func() bool { return true }, 0, false)
	require.Error(t, err)
}

func TestManager_ReusableAfterWait(t *testing.T) {
	mgr := NewManager(context.Background(), newMockLogger())

	mgr.Stop()
	require.ErrorIs(t, mgr.Start("late", func() bool { return false }), ErrStopped)

	mgr.Wait()
	require.NoError(t, mgr.Start("again", func() bool { return false }))
	mgr.Wait()
	assert.Equal(t, 0, mgr.TaskCount())
}
