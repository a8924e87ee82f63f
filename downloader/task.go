package downloader

import (
	"context"
	"sync"

	"github.com/josueBarretogit/manga-tui/archive"
)

// Progress is a snapshot of resolved pages. Completed counts successful and failed pages.
type Progress struct {
	Completed int
	Failed    int
	Expected  int
}

// Done reports whether every expected page was resolved.
func (p Progress) Done() bool {
	return p.Expected > 0 && p.Completed >= p.Expected
}

// PageFailure is a page whose attempts were exhausted.
type PageFailure struct {
	Index int
	Err   error
}

// Task tracks one Job from Enqueue to a terminal state.
type Task struct {
	Job Job

	mu       sync.Mutex
	state    State
	progress Progress
	failures []PageFailure
	archive  *archive.Archive
	err      error

	// serializes progress callbacks
	report sync.Mutex

	cancel context.CancelFunc
	done   chan struct{}
}

func newTask(job Job, cancel context.CancelFunc) *Task {
	return &Task{
		Job:    job,
		state:  Pending,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// State returns the current state.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Progress returns the current progress.
func (t *Task) Progress() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress
}

// Failures lists the failed pages ordered by index. Only meaningful once terminal.
func (t *Task) Failures() []PageFailure {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]PageFailure(nil), t.failures...)
}

// Archive is the published artifact of a Completed task.
func (t *Task) Archive() *archive.Archive {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.archive
}

// Err is the terminal error of a task that did not complete.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Done is closed when the task reaches a terminal state.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task is terminal or ctx is done.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel stops scheduling pages of the task. A Pending task is aborted immediately.
func (t *Task) Cancel() {
	t.cancel()
	t.finish(Aborted, context.Canceled, nil)
}

// move performs a non-terminal transition. Illegal transitions are ignored.
func (t *Task) move(to State) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.state.canMove(to) {
		return false
	}
	t.state = to
	return true
}

// finish performs a terminal transition and releases waiters.
func (t *Task) finish(to State, err error, artifact *archive.Archive) bool {
	t.mu.Lock()
	if !t.state.canMove(to) {
		t.mu.Unlock()
		return false
	}

	t.state = to
	t.err = err
	t.archive = artifact
	t.mu.Unlock()

	t.cancel()
	close(t.done)
	return true
}

func (t *Task) expect(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.progress.Expected = n
}

// resolve counts one page and returns the new snapshot.
func (t *Task) resolve(failure *PageFailure) Progress {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.progress.Completed++
	if failure != nil {
		t.progress.Failed++
		t.failures = append(t.failures, *failure)
	}
	return t.progress
}
