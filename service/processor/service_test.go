package processor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/gokern/machine/coop"
	"github.com/viant/gokern/mem/memory"
	"github.com/viant/gokern/model/program"
	"github.com/viant/gokern/model/task"
	"github.com/viant/gokern/service/scheduler"
	"github.com/viant/gokern/service/scheduler/fifo"
)

func TestNew(t *testing.T) {
	_, err := New()
	assert.Error(t, err)

	_, err = New(WithQueue(fifo.NewQueue(fifo.DefaultConfig())))
	assert.Error(t, err)

	svc, err := New(
		WithQueue(fifo.NewQueue(fifo.DefaultConfig())),
		WithSwitcher(coop.New()),
		WithIdlePollInterval(5*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Millisecond, svc.config.IdlePollInterval)
}

func TestInstall(t *testing.T) {
	svc, err := New(WithQueue(fifo.NewQueue(fifo.DefaultConfig())), WithSwitcher(coop.New()))
	require.NoError(t, err)

	Install(svc)
	assert.Same(t, svc, Active())

	// later installs never replace the boot-time instance
	other, err := New(WithQueue(fifo.NewQueue(fifo.DefaultConfig())), WithSwitcher(coop.New()))
	require.NoError(t, err)
	Install(other)
	assert.Same(t, svc, Active())
}

func testImage(name string) *program.Image {
	return &program.Image{
		Name:         name,
		Instructions: []program.Instruction{{Op: program.OpExit, Args: []int64{0}}},
	}
}

func TestService_DispatchLifecycle(t *testing.T) {
	ctx := context.Background()
	queue := fifo.NewQueue(fifo.DefaultConfig())
	svc, err := New(WithQueue(queue), WithSwitcher(coop.New()))
	require.NoError(t, err)

	memService := memory.New(memory.DefaultConfig())
	kernel := memService.NewSpace()

	var observed struct {
		token    uint64
		infoMid  task.Info
		mapRC    int
		unmapRC  int
		badMapRC int
		breakRC  int64
	}
	entry := func(*task.ControlBlock) {
		svc.RecordSyscall(124)
		observed.token = svc.CurrentUserToken()
		observed.mapRC = svc.CurrentMapRegion(0x200000, 0x1000, 0x3)
		observed.badMapRC = svc.CurrentMapRegion(0x200001, 0x1000, 0x3)
		observed.unmapRC = svc.CurrentUnmapRegion(0x200000, 0x1000)
		observed.breakRC = svc.CurrentBreakChange(-1)
		observed.infoMid = svc.CurrentInfo()
		_ = svc.YieldCurrent(ctx)
		_ = svc.ExitCurrent(5)
	}
	block, err := task.New(testImage("demo"), 0, memService, kernel, entry)
	require.NoError(t, err)
	require.NoError(t, queue.Publish(ctx, block))

	// an empty slot before any dispatch
	assert.Nil(t, svc.Current())

	// first dispatch runs the task until its voluntary yield
	assert.True(t, svc.DispatchOnce(ctx))
	assert.Nil(t, svc.Current())
	assert.Equal(t, task.StatusReady, block.Status())
	assert.NotZero(t, block.StartTime())
	assert.Equal(t, 1, queue.Size())

	assert.Equal(t, block.UserToken(), observed.token)
	assert.Equal(t, 0, observed.mapRC)
	assert.Equal(t, -1, observed.badMapRC)
	assert.Equal(t, 0, observed.unmapRC)
	// a break below the heap bottom reports failure through the ABI
	assert.Equal(t, int64(-1), observed.breakRC)
	assert.Equal(t, task.StatusRunning, observed.infoMid.Status)
	assert.Equal(t, uint32(1), observed.infoMid.SyscallTimes[124])

	// second dispatch resumes the task; it exits for good
	assert.True(t, svc.DispatchOnce(ctx))
	assert.Eventually(t, func() bool {
		return block.Status() == task.StatusExited
	}, time.Second, time.Millisecond)
	assert.Equal(t, 5, block.ExitCode())
	assert.Nil(t, svc.Current())
	assert.Equal(t, 0, queue.Size())

	// an exited task is never selected again
	assert.False(t, svc.DispatchOnce(ctx))
}

func TestService_YieldWithFullQueue(t *testing.T) {
	ctx := context.Background()
	queue := fifo.NewQueue(fifo.Config{QueueBuffer: 1})
	svc, err := New(WithQueue(queue), WithSwitcher(coop.New()))
	require.NoError(t, err)

	memService := memory.New(memory.DefaultConfig())
	kernel := memService.NewSpace()
	waiter, err := task.New(testImage("waiter"), 1, memService, kernel, func(*task.ControlBlock) {})
	require.NoError(t, err)

	var observed struct {
		yieldErr   error
		current    *task.ControlBlock
		status     task.Status
		publishErr error
		exitErr    error
	}
	done := make(chan struct{})
	entry := func(c *task.ControlBlock) {
		// fill the only queue slot so the yield cannot requeue
		observed.publishErr = queue.Publish(ctx, waiter)
		observed.yieldErr = svc.YieldCurrent(ctx)
		observed.current = svc.Current()
		observed.status = c.Status()
		observed.exitErr = svc.ExitCurrent(5)
		close(done)
	}
	block, err := task.New(testImage("yielder"), 0, memService, kernel, entry)
	require.NoError(t, err)
	require.NoError(t, queue.Publish(ctx, block))

	assert.True(t, svc.DispatchOnce(ctx))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task never finished")
	}

	// the failed yield surfaces an error and leaves the task running and
	// current, so the follow-up exit succeeds instead of crashing the core
	require.NoError(t, observed.publishErr)
	require.Error(t, observed.yieldErr)
	assert.Same(t, block, observed.current)
	assert.Equal(t, task.StatusRunning, observed.status)
	assert.NoError(t, observed.exitErr)
	assert.Equal(t, task.StatusExited, block.Status())
	assert.Equal(t, 5, block.ExitCode())
	assert.Nil(t, svc.Current())

	// the task occupying the queue slot is untouched
	assert.Equal(t, 1, queue.Size())
	assert.Equal(t, task.StatusReady, waiter.Status())
}

func TestService_ExitEvictsSchedulerState(t *testing.T) {
	ctx := context.Background()
	queue := &recordingQueue{Queue: fifo.NewQueue(fifo.DefaultConfig())}
	svc, err := New(WithQueue(queue), WithSwitcher(coop.New()))
	require.NoError(t, err)

	memService := memory.New(memory.DefaultConfig())
	entry := func(*task.ControlBlock) {
		_ = svc.ExitCurrent(0)
	}
	block, err := task.New(testImage("oneshot"), 0, memService, memService.NewSpace(), entry)
	require.NoError(t, err)
	require.NoError(t, queue.Publish(ctx, block))

	assert.True(t, svc.DispatchOnce(ctx))
	assert.Equal(t, []string{block.ID()}, queue.evicted)
}

// recordingQueue records the ids the dispatcher asks to evict.
type recordingQueue struct {
	scheduler.Queue
	evicted []string
}

func (q *recordingQueue) Evict(id string) {
	q.evicted = append(q.evicted, id)
}

func TestService_DropsNonReadyTask(t *testing.T) {
	ctx := context.Background()
	queue := fifo.NewQueue(fifo.DefaultConfig())
	svc, err := New(WithQueue(queue), WithSwitcher(coop.New()))
	require.NoError(t, err)

	memService := memory.New(memory.DefaultConfig())
	block, err := task.New(testImage("rogue"), 0, memService, memService.NewSpace(), func(*task.ControlBlock) {})
	require.NoError(t, err)

	// force the task out of Ready before the queue hands it out
	_, err = block.MarkRunning(1)
	require.NoError(t, err)
	require.NoError(t, queue.Publish(ctx, block))

	// the iteration consumes the queue entry without installing the task
	assert.True(t, svc.DispatchOnce(ctx))
	assert.Nil(t, svc.Current())
	assert.Equal(t, 0, queue.Size())
}

func TestService_Run(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	queue := fifo.NewQueue(fifo.DefaultConfig())
	svc, err := New(WithQueue(queue), WithSwitcher(coop.New()), WithIdlePollInterval(time.Millisecond))
	require.NoError(t, err)

	memService := memory.New(memory.DefaultConfig())
	exited := make(chan struct{})
	entry := func(*task.ControlBlock) {
		close(exited)
		_ = svc.ExitCurrent(0)
	}
	block, err := task.New(testImage("oneshot"), 0, memService, memService.NewSpace(), entry)
	require.NoError(t, err)
	require.NoError(t, queue.Publish(ctx, block))

	done := make(chan error, 1)
	go func() {
		done <- svc.Run(ctx)
	}()

	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("task never dispatched")
	}
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("run loop never stopped")
	}
}
