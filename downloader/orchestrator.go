// Package downloader schedules chapter downloads under one global page concurrency bound.
//
// Every page of every enqueued chapter is an independent unit of work. Units acquire
// a slot of a shared semaphore before they start, so the number of pages in flight
// never exceeds Options.Concurrency regardless of how many chapters are queued.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/josueBarretogit/manga-tui/archive"
	"github.com/josueBarretogit/manga-tui/fault"
	"github.com/josueBarretogit/manga-tui/imaging"
	"github.com/josueBarretogit/manga-tui/log"
	"github.com/josueBarretogit/manga-tui/source"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Pages lists the pages of a chapter, usually the provider façade.
type Pages interface {
	Name() string
	PagesOf(ctx context.Context, chapterID string) ([]*source.Page, error)
}

// Fetcher retrieves the bytes of one page, retrying transient failures itself.
type Fetcher interface {
	Fetch(ctx context.Context, page *source.Page) ([]byte, error)
}

// Options configures an Orchestrator.
type Options struct {
	Source  Pages
	Fetcher Fetcher

	// Concurrency is the maximum number of pages fetched at once across all tasks.
	Concurrency int

	MaxWidth    int
	JPEGQuality int
	ComicInfo   bool

	Recorders []Recorder

	// OnProgress is called after each page resolves, never concurrently for the same task.
	OnProgress func(task *Task, progress Progress)
	// OnDone is called once per task after it reached a terminal state.
	OnDone func(task *Task)

	Now func() time.Time
}

// Orchestrator runs download tasks.
type Orchestrator struct {
	options Options
	slots   *semaphore.Weighted
	build   func(archive.Format, archive.Options) archive.Builder
	wg      sync.WaitGroup

	mu    sync.Mutex
	tasks []*Task
}

// New creates an Orchestrator.
func New(options Options) *Orchestrator {
	if options.Concurrency < 1 {
		options.Concurrency = 1
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	return &Orchestrator{
		options: options,
		slots:   semaphore.NewWeighted(int64(options.Concurrency)),
		build:   archive.New,
	}
}

// Enqueue starts job in the background and returns its task.
// Cancelling ctx aborts the task.
func (o *Orchestrator) Enqueue(ctx context.Context, job Job) *Task {
	ctx, cancel := context.WithCancel(ctx)
	task := newTask(job, cancel)

	o.mu.Lock()
	o.tasks = append(o.tasks, task)
	o.mu.Unlock()

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.run(ctx, task)

		if o.options.OnDone != nil {
			o.options.OnDone(task)
		}
	}()

	return task
}

// Tasks returns every task enqueued so far, in Enqueue order.
func (o *Orchestrator) Tasks() []*Task {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.tasks)
}

// Wait blocks until every enqueued task is terminal.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) run(ctx context.Context, task *Task) {
	if !task.move(InProgress) {
		// cancelled before it started
		return
	}

	job := task.Job
	fields := log.Fields{
		"provider": o.options.Source.Name(),
		"manga":    job.Chapter.MangaID,
		"chapter":  job.Chapter.ID,
	}

	pages, err := o.options.Source.PagesOf(ctx, job.Chapter.ID)
	if err != nil {
		log.WithFields(fields).WithField("kind", fault.KindOf(err)).Error(err)
		task.finish(Aborted, err, nil)
		return
	}

	task.expect(len(pages))

	builder := o.build(job.Format, archive.Options{ComicInfo: o.options.ComicInfo})
	normalizer := imaging.New(job.Quality)
	if o.options.MaxWidth > 0 {
		normalizer.MaxWidth = o.options.MaxWidth
	}
	if o.options.JPEGQuality > 0 {
		normalizer.JPEGQuality = o.options.JPEGQuality
	}

	results := make([]*archive.Page, len(pages))

	var g errgroup.Group
	for i, page := range pages {
		if err := o.slots.Acquire(ctx, 1); err != nil {
			break
		}

		g.Go(func() error {
			defer o.slots.Release(1)

			image, err := o.page(ctx, normalizer, builder.Accepts, page)
			if ctx.Err() != nil {
				// aborted, the result is discarded
				return nil
			}

			var failure *PageFailure
			if err != nil {
				failure = &PageFailure{Index: page.Index, Err: err}
				log.WithFields(fields).WithFields(log.Fields{
					"page": page.Index,
					"kind": fault.KindOf(err),
				}).Error(err)
			} else {
				results[i] = &archive.Page{Index: page.Index, Image: image}
			}

			task.report.Lock()
			defer task.report.Unlock()

			progress := task.resolve(failure)
			if o.options.OnProgress != nil {
				o.options.OnProgress(task, progress)
			}
			return nil
		})
	}

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		task.finish(Aborted, err, nil)
		return
	}

	if failures := task.Failures(); len(failures) > 0 {
		slices.SortFunc(failures, func(a, b PageFailure) int { return a.Index - b.Index })

		task.mu.Lock()
		task.failures = failures
		task.mu.Unlock()

		task.finish(PartiallyFailed, &IncompleteError{Failed: len(failures), Expected: len(pages), First: failures[0]}, nil)
		return
	}

	artifact, err := builder.Build(ctx, job.Chapter, results, job.Dir)
	if err != nil {
		if ctx.Err() != nil {
			task.finish(Aborted, ctx.Err(), nil)
			return
		}

		log.WithFields(fields).WithField("kind", fault.KindOf(err)).Error(err)
		task.finish(PartiallyFailed, err, nil)
		return
	}

	if !task.finish(Completed, nil, artifact) {
		// cancelled while publishing
		if err := archive.Discard(artifact); err != nil {
			log.WithFields(fields).WithField("kind", fault.KindOf(err)).Warn(err)
		}
		return
	}

	log.WithFields(fields).WithField("path", artifact.Path).Info("chapter downloaded")
	o.record(job, artifact)
}

func (o *Orchestrator) page(ctx context.Context, normalizer *imaging.Normalizer, accepts imaging.Accepts, page *source.Page) (*imaging.Image, error) {
	data, err := o.options.Fetcher.Fetch(ctx, page)
	if err != nil {
		return nil, err
	}

	image, err := normalizer.Normalize(data, accepts)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page.Index, err)
	}

	return image, nil
}

func (o *Orchestrator) record(job Job, artifact *archive.Archive) {
	completion := Completion{
		Provider:  job.Chapter.Provider,
		MangaID:   job.Chapter.MangaID,
		ChapterID: job.Chapter.ID,
		Number:    job.Chapter.Number,
		Format:    artifact.Format,
		Path:      artifact.Path,
		At:        o.options.Now(),
	}

	for _, recorder := range o.options.Recorders {
		if err := recorder.Record(completion); err != nil {
			log.WithField("chapter", job.Chapter.ID).Warnf("recording completion: %v", err)
		}
	}
}

// IncompleteError is the error of a PartiallyFailed task whose pages could not all be fetched.
type IncompleteError struct {
	Failed   int
	Expected int
	First    PageFailure
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%d of %d pages failed, page %d: %v", e.Failed, e.Expected, e.First.Index, e.First.Err)
}

func (e *IncompleteError) Unwrap() error {
	return e.First.Err
}

// Is lets errors.Is(err, ErrIncomplete) match any IncompleteError.
func (e *IncompleteError) Is(target error) bool {
	return target == ErrIncomplete
}

// ErrIncomplete matches the error of a task with failed pages.
var ErrIncomplete = errors.New("incomplete chapter")
