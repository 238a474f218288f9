package pathbind

// TaskLoop is the cooperative, single-threaded scheduler the whole update
// path runs on. Posting a task while the loop is idle drains the queue on
// the caller's goroutine; posting from inside a running task appends to
// the queue, which the same outer drain picks up. Tasks are never invoked
// recursively.
//
// The loop carries no lock: all producers are required to run on the same
// goroutine, which is the concurrency model of the binding core.
type TaskLoop struct {
	tasks   []func()
	running bool
}

// NewTaskLoop creates an idle task loop.
func NewTaskLoop() *TaskLoop {
	return &TaskLoop{}
}

// Post enqueues task. If the loop is idle it drains the queue before
// returning, so a top-level Post runs task (and everything task posts)
// to completion.
func (l *TaskLoop) Post(task func()) {
	l.tasks = append(l.tasks, task)
	if l.running {
		return
	}

	l.running = true
	// The running flag resets even when a task panics; tasks queued
	// behind the panicking one stay queued for the next Post.
	defer func() { l.running = false }()

	for len(l.tasks) > 0 {
		next := l.tasks[0]
		l.tasks = l.tasks[1:]
		next()
	}
}

// Pending returns the number of queued tasks.
func (l *TaskLoop) Pending() int {
	return len(l.tasks)
}

// Running reports whether the loop is currently draining.
func (l *TaskLoop) Running() bool {
	return l.running
}
