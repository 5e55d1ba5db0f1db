package naglfar

import (
	"container/list"
	"os"
	"sync"
)

// Runtime is the explicit handle for the scheduler, ready queue, and I/O
// pump. A package-level default instance backs the top-level convenience
// functions (Spawn, Run, NewDefaultChannel) for callers who don't need more than
// one runtime.
type Runtime struct {
	cfg   runtimeConfig
	ready *list.List // FIFO of func() resume handles; strict FIFO
	cur   *Task      // the task currently executing, nil when the scheduler loop itself is in control
	p     *pump
}

// NewRuntime constructs a Runtime. The readiness notifier backend is
// opened lazily on first I/O use, so constructing a Runtime that never
// touches the network or a file descriptor never opens an epoll/kqueue
// fd.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	cfg := defaultRuntimeConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Runtime{cfg: cfg, ready: list.New()}
}

func (rt *Runtime) enqueue(resume func()) {
	rt.ready.PushBack(resume)
}

// pendingWork reports whether the ready queue holds anything besides the
// pump's own (already-removed) entry. Used by pump.run to decide between
// a zero-timeout poll and blocking indefinitely.
func (rt *Runtime) pendingWork() bool {
	return rt.ready.Len() > 0
}

// currentTask returns the task presently executing, if any.
func (rt *Runtime) currentTask() (*Task, bool) {
	return rt.cur, rt.cur != nil
}

// requireCurrentTask panics with ErrNotATask if called outside a running
// task. Channel.Read and a blocking Channel.ReadWaiting require this;
// write paths do not.
func (rt *Runtime) requireCurrentTask() *Task {
	t, ok := rt.currentTask()
	if !ok {
		panic(ErrNotATask)
	}
	return t
}

// resume hands control to t and blocks until t either yields back to the
// scheduler or completes. Exactly one goroutine is ever unblocked across
// all tasks sharing this Runtime, because resume is only ever called
// from the single goroutine executing Run.
func (rt *Runtime) resume(t *Task) {
	prev := rt.cur
	rt.cur = t
	t.resumeC <- struct{}{}
	<-t.ackC
	rt.cur = prev
}

// Spawn creates a task whose body is f and appends its resume handle to
// the ready queue. It returns nothing; callers synchronize through
// channels.
func (rt *Runtime) Spawn(f func()) {
	t := newTask(rt, f)
	rt.enqueue(t.resumeHandle())
}

// Run drains the ready queue, invoking each item until it yields or
// completes, until the queue is empty. If the I/O pump re-enqueues
// itself, Run keeps going: the queue is only "empty" once neither tasks
// nor pending interests remain.
func (rt *Runtime) Run() {
	for rt.ready.Len() > 0 {
		front := rt.ready.Front()
		rt.ready.Remove(front)
		resume := front.Value.(func())
		resume()
	}
}

// fatalf logs a fatal diagnostic and terminates the process with a
// distinguished nonzero status. Unrecoverable failures have no
// task-level recovery path.
func (rt *Runtime) fatalf(format string, args ...interface{}) {
	rt.cfg.Logger.Errorf(format, args...)
	os.Exit(2)
}

// ioPump lazily opens the platform readiness notifier on first use.
func (rt *Runtime) ioPump() *pump {
	if rt.p == nil {
		n, err := openNotifier()
		if err != nil {
			rt.fatalf("failed to open readiness notifier: %v", err)
		}
		rt.p = newPump(rt, n)
	}
	return rt.p
}

var (
	defaultRuntimeOnce sync.Once
	defaultRuntimeInst *Runtime
)

// defaultRuntime lazily constructs the package-level Runtime backing
// Spawn/Run/NewDefaultChannel.
func defaultRuntime() *Runtime {
	defaultRuntimeOnce.Do(func() {
		defaultRuntimeInst = NewRuntime()
	})
	return defaultRuntimeInst
}

// Spawn creates a task on the default Runtime.
func Spawn(f func()) { defaultRuntime().Spawn(f) }

// Run drains the default Runtime's ready queue.
func Run() { defaultRuntime().Run() }
