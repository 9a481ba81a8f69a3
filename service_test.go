package gokern

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/gokern/model/program"
	"github.com/viant/gokern/model/task"
	aclock "github.com/viant/gokern/service/action/clock"
	aproc "github.com/viant/gokern/service/action/proc"
	"github.com/viant/gokern/service/executor"
	"github.com/viant/gokern/service/scheduler"
	"github.com/viant/gokern/service/syscall"
)

type capture struct {
	mux     sync.Mutex
	outputs map[string][]interface{}
}

func (c *capture) listener() executor.Listener {
	return func(t *task.ControlBlock, instruction program.Instruction, output interface{}) {
		c.mux.Lock()
		defer c.mux.Unlock()
		c.outputs[instruction.Op] = append(c.outputs[instruction.Op], output)
	}
}

func uploadPrograms(t *testing.T, programs map[string]string) {
	t.Helper()
	ctx := context.Background()
	fs := afs.New()
	for URL, listing := range programs {
		require.NoError(t, fs.Upload(ctx, URL, file.DefaultFileOsMode, strings.NewReader(listing)))
	}
}

func TestService_EndToEnd(t *testing.T) {
	ctx := context.Background()
	uploadPrograms(t, map[string]string{
		"mem://localhost/e2e/hello.prog": `
.name hello
print "hello"
time
yield
print "again"
exit 3
`,
		"mem://localhost/e2e/memops.prog": `
.name memops
mmap 0x200000 0x2000 3
sbrk 4096
sbrk -4096
munmap 0x200000 0x2000
info
exit 0
`,
	})

	captured := &capture{outputs: map[string][]interface{}{}}
	config := DefaultConfig()
	config.Scheduler.Policy = string(scheduler.PolicyStride)
	srv := New(
		WithConfig(config),
		WithProgramBaseURL("mem://localhost/e2e"),
		WithExecutorOptions(executor.WithListener(captured.listener())),
	)
	runtime := srv.Runtime()

	hello, err := runtime.Spawn(ctx, "hello.prog")
	require.NoError(t, err)
	memops, err := runtime.Spawn(ctx, "memops.prog")
	require.NoError(t, err)

	require.NoError(t, runtime.Start(ctx))
	defer runtime.Shutdown(ctx)

	code, err := runtime.WaitForTask(ctx, hello, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 3, code)

	code, err = runtime.WaitForTask(ctx, memops, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	// per-task accounting survives exit
	helloInfo := hello.Accounting(time.Now().UnixMilli())
	assert.Equal(t, task.StatusExited, helloInfo.Status)
	assert.Equal(t, uint32(2), helloInfo.SyscallTimes[syscall.SysWrite])
	assert.Equal(t, uint32(1), helloInfo.SyscallTimes[syscall.SysYield])
	assert.Equal(t, uint32(1), helloInfo.SyscallTimes[syscall.SysGetTime])
	assert.Equal(t, uint32(1), helloInfo.SyscallTimes[syscall.SysExit])

	captured.mux.Lock()
	defer captured.mux.Unlock()

	timeOutputs := captured.outputs[program.OpTime]
	require.Len(t, timeOutputs, 1)
	assert.Greater(t, timeOutputs[0].(*aclock.TimeOutput).Ms, int64(0))

	infoOutputs := captured.outputs[program.OpInfo]
	require.Len(t, infoOutputs, 1)
	snapshot := infoOutputs[0].(*aproc.InfoOutput)
	assert.Equal(t, task.StatusRunning.String(), snapshot.Status)
	assert.Equal(t, uint32(1), snapshot.SyscallTimes[syscall.SysMmap])
	assert.Equal(t, uint32(2), snapshot.SyscallTimes[syscall.SysSbrk])
	assert.Equal(t, uint32(1), snapshot.SyscallTimes[syscall.SysMunmap])
	assert.Equal(t, uint32(1), snapshot.SyscallTimes[syscall.SysTaskInfo])

	// exited tasks stay in the table
	terminal, err := runtime.Tasks(ctx, task.StatusExited)
	require.NoError(t, err)
	assert.Len(t, terminal, 2)
}

func TestService_HandlerFailureKillsTask(t *testing.T) {
	ctx := context.Background()
	srv := New()
	runtime := srv.Runtime()

	image := &program.Image{
		Name: "rogue",
		Instructions: []program.Instruction{
			{Op: "teleport", Args: []int64{1}},
			{Op: program.OpExit, Args: []int64{0}},
		},
	}
	block, err := runtime.SpawnImage(ctx, image)
	require.NoError(t, err)

	require.NoError(t, runtime.Start(ctx))
	defer runtime.Shutdown(ctx)

	code, err := runtime.WaitForTask(ctx, block, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, -1, code)
}

func TestService_ImplicitExit(t *testing.T) {
	ctx := context.Background()
	srv := New()
	runtime := srv.Runtime()

	image := &program.Image{
		Name: "fallsoff",
		Instructions: []program.Instruction{
			{Op: program.OpPrint, Text: "last words"},
		},
	}
	block, err := runtime.SpawnImage(ctx, image)
	require.NoError(t, err)

	require.NoError(t, runtime.Start(ctx))
	defer runtime.Shutdown(ctx)

	code, err := runtime.WaitForTask(ctx, block, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, task.StatusExited, block.Status())
}

func TestLoadConfig(t *testing.T) {
	ctx := context.Background()
	uploadPrograms(t, map[string]string{
		"mem://localhost/config/kernel.yaml": `
processor:
  idlePollIntervalMs: 2
scheduler:
  policy: stride
memory:
  frameCapacity: 512
`,
		"mem://localhost/config/broken.yaml": `
scheduler:
  policy: lottery
`,
	})

	config, err := LoadConfig(ctx, "mem://localhost/config/kernel.yaml")
	require.NoError(t, err)
	assert.Equal(t, 2, config.Processor.IdlePollIntervalMs)
	assert.Equal(t, string(scheduler.PolicyStride), config.Scheduler.Policy)
	assert.Equal(t, 512, config.Memory.FrameCapacity)

	_, err = LoadConfig(ctx, "mem://localhost/config/broken.yaml")
	assert.Error(t, err)

	_, err = LoadConfig(ctx, "mem://localhost/config/missing.yaml")
	assert.Error(t, err)
}
