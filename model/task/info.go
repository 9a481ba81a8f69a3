package task

// MaxSyscallNum bounds the per-task syscall counter array. Syscall ids at or
// above the bound are silently dropped, never recorded.
const MaxSyscallNum = 500

// Info is the per-task accounting record: a status mirror, per-syscall-id
// invocation counters and the elapsed wall-clock time since first dispatch.
// It is mutated only while the owning control block is locked and is returned
// to callers by value.
type Info struct {
	Status       Status
	SyscallTimes [MaxSyscallNum]uint32
	ElapsedMs    int64
}

// SetStatus updates the status mirror.
func (i *Info) SetStatus(status Status) {
	i.Status = status
}

// RecordSyscall increments the counter for the given syscall id. Out-of-range
// ids are a deliberate no-op.
func (i *Info) RecordSyscall(id int) {
	if id < 0 || id >= MaxSyscallNum {
		return
	}
	i.SyscallTimes[id]++
}

// SetElapsed stores the recomputed elapsed time in milliseconds.
func (i *Info) SetElapsed(ms int64) {
	i.ElapsedMs = ms
}
