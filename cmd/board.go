package cmd

import (
	"fmt"
	"io"
	"sync"

	"github.com/josueBarretogit/manga-tui/downloader"
	"github.com/josueBarretogit/manga-tui/fault"
	"github.com/josueBarretogit/manga-tui/icon"
	"github.com/josueBarretogit/manga-tui/style"
	"github.com/josueBarretogit/manga-tui/util"
)

// board prints one line per download task. On a terminal the lines are redrawn in place,
// otherwise a line is printed once its task is terminal.
type board struct {
	mu    sync.Mutex
	out   io.Writer
	live  bool
	bar   *style.Bar
	tasks func() []*downloader.Task
	drawn int
}

func newBoard(out io.Writer, tasks func() []*downloader.Task) *board {
	b := &board{
		out:   out,
		live:  util.IsTerminal(),
		tasks: tasks,
	}

	width := 40
	if w, _, err := util.TerminalSize(); err == nil {
		width = w / 3
	}
	b.bar = style.NewBar(width)

	return b
}

func (b *board) progress(*downloader.Task, downloader.Progress) {
	if !b.live {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.redraw()
}

func (b *board) done(task *downloader.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.live {
		b.redraw()
		return
	}

	_, _ = fmt.Fprintln(b.out, b.line(task))
}

func (b *board) redraw() {
	if b.drawn > 0 {
		_, _ = fmt.Fprintf(b.out, "\033[%dA", b.drawn)
	}

	tasks := b.tasks()
	for _, task := range tasks {
		_, _ = fmt.Fprintf(b.out, "\033[2K%s\n", b.line(task))
	}
	b.drawn = len(tasks)
}

func (b *board) line(task *downloader.Task) string {
	label := task.Job.Chapter.String()
	state := task.State()
	progress := task.Progress()

	switch state {
	case downloader.Completed:
		return fmt.Sprintf("%s %s %s", icon.Get(icon.Success), label, style.Faint(task.Archive().Path))
	case downloader.PartiallyFailed, downloader.Aborted:
		err := task.Err()
		return fmt.Sprintf("%s %s %s %s (%s)",
			icon.Get(icon.Fail),
			label,
			style.State(state.String(), true, true),
			err,
			fault.KindOf(err),
		)
	default:
		return fmt.Sprintf("%s %s %s", icon.Get(icon.Progress), label, b.bar.Render(progress.Completed, progress.Expected))
	}
}
