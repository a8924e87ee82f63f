package downloader

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/josueBarretogit/manga-tui/archive"
	"github.com/josueBarretogit/manga-tui/fault"
	"github.com/josueBarretogit/manga-tui/fetcher"
	"github.com/josueBarretogit/manga-tui/filesystem"
	"github.com/josueBarretogit/manga-tui/imaging"
	"github.com/josueBarretogit/manga-tui/source"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func pagePNG(index int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: uint8(index), G: 10, B: 20, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// catalog serves page lists by chapter id.
type catalog struct {
	pages map[string][]*source.Page
	err   error
}

func (*catalog) Name() string { return "Test" }

func (c *catalog) PagesOf(_ context.Context, chapterID string) ([]*source.Page, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.pages[chapterID], nil
}

type fetchFunc func(ctx context.Context, page *source.Page) ([]byte, error)

func (f fetchFunc) Fetch(ctx context.Context, page *source.Page) ([]byte, error) {
	return f(ctx, page)
}

func pngFetcher() fetchFunc {
	return func(_ context.Context, page *source.Page) ([]byte, error) {
		return pagePNG(page.Index), nil
	}
}

func pagesFor(chapterID, base string, n int) []*source.Page {
	urls := make([]string, n)
	for i := range urls {
		urls[i] = fmt.Sprintf("%s/%s/%d.png", base, chapterID, i+1)
	}
	return source.NewPages(chapterID, urls, nil)
}

func chapter(id string) *source.Chapter {
	return &source.Chapter{
		ID:         id,
		MangaID:    "manga",
		MangaTitle: "Test Manga",
		Number:     1,
		Language:   "en",
		Provider:   source.ScrapedSiteA,
	}
}

func job(id string, format archive.Format) Job {
	return Job{
		Chapter: chapter(id),
		Format:  format,
		Quality: imaging.High,
		Dir:     "/downloads/" + id,
	}
}

func zipNames(path string) []string {
	data, err := filesystem.API().ReadFile(path)
	So(err, ShouldBeNil)

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	So(err, ShouldBeNil)

	var names []string
	for _, f := range reader.File {
		names = append(names, f.Name)
	}
	return names
}

func wait(task *Task) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	So(task.Wait(ctx), ShouldBeNil)
}

func TestStateMachine(t *testing.T) {
	Convey("Given a pending task", t, func() {
		_, cancel := context.WithCancel(context.Background())
		task := newTask(job("c", archive.CBZ), cancel)

		Convey("Cancel aborts it before start", func() {
			task.Cancel()
			So(task.State(), ShouldEqual, Aborted)
			So(task.move(InProgress), ShouldBeFalse)
			So(errors.Is(task.Err(), context.Canceled), ShouldBeTrue)

			select {
			case <-task.Done():
			default:
				t.Fatal("done is not closed")
			}
		})

		Convey("Terminal states are final", func() {
			So(task.move(InProgress), ShouldBeTrue)
			So(task.finish(Completed, nil, nil), ShouldBeTrue)
			So(task.finish(PartiallyFailed, errors.New("late"), nil), ShouldBeFalse)
			So(task.State(), ShouldEqual, Completed)
			So(task.Err(), ShouldBeNil)
		})

		Convey("Pending cannot complete directly", func() {
			So(task.finish(Completed, nil, nil), ShouldBeFalse)
			So(task.State(), ShouldEqual, Pending)
		})
	})

	Convey("Only the resolved states are terminal", t, func() {
		So(Pending.Terminal(), ShouldBeFalse)
		So(InProgress.Terminal(), ShouldBeFalse)
		So(Completed.Terminal(), ShouldBeTrue)
		So(PartiallyFailed.Terminal(), ShouldBeTrue)
		So(Aborted.Terminal(), ShouldBeTrue)
	})
}

func TestDir(t *testing.T) {
	Convey("Chapters are grouped by provider and manga", t, func() {
		So(Dir("/downloads", "MangaDex", chapter("c")), ShouldEqual, "/downloads/mangadex/Test_Manga_manga")
	})
}

func TestDownload(t *testing.T) {
	Convey("Given a chapter of 28 pages", t, func() {
		src := &catalog{pages: map[string][]*source.Page{"a": pagesFor("a", "mem://", 28)}}

		var (
			mu        sync.Mutex
			reported  []int
			completed []Completion
		)

		at := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
		o := New(Options{
			Source:      src,
			Fetcher:     pngFetcher(),
			Concurrency: 4,
			Recorders: []Recorder{RecorderFunc(func(c Completion) error {
				mu.Lock()
				defer mu.Unlock()
				completed = append(completed, c)
				return nil
			})},
			OnProgress: func(_ *Task, p Progress) {
				mu.Lock()
				defer mu.Unlock()
				reported = append(reported, p.Completed)
			},
			Now: func() time.Time { return at },
		})

		Convey("It is archived as a cbz with ordered entries", func() {
			task := o.Enqueue(context.Background(), job("a", archive.CBZ))
			wait(task)

			So(task.State(), ShouldEqual, Completed)
			So(task.Err(), ShouldBeNil)

			artifact := task.Archive()
			So(artifact.Pages, ShouldEqual, 28)
			So(artifact.Path, ShouldEqual, archive.Path(archive.CBZ, task.Job.Chapter, "/downloads/a"))

			var pages []string
			for _, name := range zipNames(artifact.Path) {
				if strings.HasSuffix(name, ".png") {
					pages = append(pages, name)
				}
			}
			So(pages, ShouldHaveLength, 28)
			for i, name := range pages {
				So(name, ShouldEqual, fmt.Sprintf("%04d.png", i+1))
			}

			Convey("Progress is monotonic up to the page count", func() {
				o.Wait()
				mu.Lock()
				defer mu.Unlock()

				So(reported, ShouldHaveLength, 28)
				for i, n := range reported {
					So(n, ShouldEqual, i+1)
				}
				So(task.Progress().Done(), ShouldBeTrue)
			})

			Convey("The completion is recorded once", func() {
				o.Wait()
				mu.Lock()
				defer mu.Unlock()

				So(completed, ShouldHaveLength, 1)
				So(completed[0].ChapterID, ShouldEqual, "a")
				So(completed[0].Path, ShouldEqual, artifact.Path)
				So(completed[0].Format, ShouldEqual, archive.CBZ)
				So(completed[0].At, ShouldEqual, at)
			})
		})

		Convey("Raw downloads end with the sentinel", func() {
			task := o.Enqueue(context.Background(), job("a", archive.Raw))
			wait(task)

			So(task.State(), ShouldEqual, Completed)
			So(archive.IsComplete(task.Archive().Path), ShouldBeTrue)
		})
	})
}

// flaky serves PNG pages over HTTP. failures maps a page index to the statuses returned before
// it succeeds; a single negative status is returned on every request.
func flaky(failures map[int][]int) (*httptest.Server, *sync.Map) {
	var hits sync.Map

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		index, _ := strconv.Atoi(strings.TrimSuffix(name, ".png"))

		counter, _ := hits.LoadOrStore(index, new(atomic.Int32))
		n := int(counter.(*atomic.Int32).Add(1))

		statuses := failures[index]
		switch {
		case len(statuses) == 1 && statuses[0] < 0:
			w.WriteHeader(-statuses[0])
			return
		case n <= len(statuses):
			w.WriteHeader(statuses[n-1])
			return
		}

		_, _ = w.Write(pagePNG(index))
	}))

	return server, &hits
}

func hitsOf(hits *sync.Map, index int) int32 {
	counter, ok := hits.Load(index)
	if !ok {
		return 0
	}
	return counter.(*atomic.Int32).Load()
}

func TestRetries(t *testing.T) {
	Convey("Given pages served over HTTP", t, func() {
		noSleep := func(context.Context, time.Duration) error { return nil }

		orchestrator := func(server *httptest.Server, chapterID string, attempts int) *Orchestrator {
			return New(Options{
				Source: &catalog{pages: map[string][]*source.Page{chapterID: pagesFor(chapterID, server.URL, 28)}},
				Fetcher: fetcher.New(fetcher.Options{
					Client:      server.Client(),
					MaxAttempts: attempts,
					Backoff:     fetcher.ExponentialPolicy(time.Millisecond, time.Millisecond),
					Sleep:       noSleep,
				}),
				Concurrency: 4,
			})
		}

		Convey("A page failing twice then succeeding is retried into a complete chapter", func() {
			server, hits := flaky(map[int][]int{15: {500, 503}})
			defer server.Close()

			task := orchestrator(server, "c", 3).Enqueue(context.Background(), job("c", archive.CBZ))
			wait(task)

			So(task.State(), ShouldEqual, Completed)
			So(hitsOf(hits, 15), ShouldEqual, int32(3))
			So(hitsOf(hits, 14), ShouldEqual, int32(1))

			names := zipNames(task.Archive().Path)
			So(names, ShouldContain, "0015.png")
			So(names, ShouldContain, "0028.png")
		})

		Convey("A page failing on every attempt leaves the chapter partially failed", func() {
			server, hits := flaky(map[int][]int{15: {-500}})
			defer server.Close()

			task := orchestrator(server, "d", 3).Enqueue(context.Background(), job("d", archive.CBZ))
			wait(task)

			So(task.State(), ShouldEqual, PartiallyFailed)
			So(hitsOf(hits, 15), ShouldEqual, int32(3))
			So(errors.Is(task.Err(), ErrIncomplete), ShouldBeTrue)
			So(fault.KindOf(task.Err()), ShouldEqual, fault.KindNetwork)

			failures := task.Failures()
			So(failures, ShouldHaveLength, 1)
			So(failures[0].Index, ShouldEqual, 15)
			So(task.Progress().Failed, ShouldEqual, 1)
			So(task.Progress().Completed, ShouldEqual, 28)

			So(task.Archive(), ShouldBeNil)
			exists, err := filesystem.Exists(archive.Path(archive.CBZ, task.Job.Chapter, task.Job.Dir))
			So(err, ShouldBeNil)
			So(exists, ShouldBeFalse)
		})

		Convey("A missing page is not retried", func() {
			server, hits := flaky(map[int][]int{3: {-404}})
			defer server.Close()

			task := orchestrator(server, "e", 5).Enqueue(context.Background(), job("e", archive.CBZ))
			wait(task)

			So(task.State(), ShouldEqual, PartiallyFailed)
			So(hitsOf(hits, 3), ShouldEqual, int32(1))
		})
	})
}

func TestConcurrencyBound(t *testing.T) {
	Convey("Given three chapters sharing a bound of 4", t, func() {
		var inFlight, peak atomic.Int32

		fetch := fetchFunc(func(_ context.Context, page *source.Page) ([]byte, error) {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)

			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}

			time.Sleep(2 * time.Millisecond)
			return pagePNG(page.Index), nil
		})

		src := &catalog{pages: map[string][]*source.Page{
			"x": pagesFor("x", "mem://", 10),
			"y": pagesFor("y", "mem://", 10),
			"z": pagesFor("z", "mem://", 10),
		}}

		o := New(Options{Source: src, Fetcher: fetch, Concurrency: 4})

		Convey("No more than 4 pages are ever fetched at once", func() {
			tasks := []*Task{
				o.Enqueue(context.Background(), job("x", archive.Raw)),
				o.Enqueue(context.Background(), job("y", archive.Raw)),
				o.Enqueue(context.Background(), job("z", archive.Raw)),
			}
			o.Wait()

			So(peak.Load(), ShouldBeLessThanOrEqualTo, int32(4))
			for _, task := range tasks {
				So(task.State(), ShouldEqual, Completed)
			}
			So(o.Tasks(), ShouldHaveLength, 3)
		})
	})
}

func TestFailures(t *testing.T) {
	Convey("A chapter whose page list cannot be fetched is aborted without fetching pages", t, func() {
		var fetched atomic.Int32
		o := New(Options{
			Source: &catalog{err: fault.Missing("Test", "https://example.com", "img", 1, 0)},
			Fetcher: fetchFunc(func(context.Context, *source.Page) ([]byte, error) {
				fetched.Add(1)
				return nil, nil
			}),
			Concurrency: 2,
		})

		task := o.Enqueue(context.Background(), job("m", archive.CBZ))
		wait(task)

		So(task.State(), ShouldEqual, Aborted)
		So(fault.KindOf(task.Err()), ShouldEqual, fault.KindParse)
		So(fetched.Load(), ShouldEqual, int32(0))
	})

	Convey("A failing chapter does not affect its sibling", t, func() {
		src := &catalog{pages: map[string][]*source.Page{
			"good": pagesFor("good", "mem://", 5),
			"bad":  pagesFor("bad", "mem://", 5),
		}}

		o := New(Options{
			Source: src,
			Fetcher: fetchFunc(func(_ context.Context, page *source.Page) ([]byte, error) {
				if page.ChapterID == "bad" && page.Index == 2 {
					return []byte("<html>not an image</html>"), nil
				}
				return pagePNG(page.Index), nil
			}),
			Concurrency: 2,
		})

		good := o.Enqueue(context.Background(), job("good", archive.CBZ))
		bad := o.Enqueue(context.Background(), job("bad", archive.CBZ))
		o.Wait()

		So(good.State(), ShouldEqual, Completed)
		So(bad.State(), ShouldEqual, PartiallyFailed)

		var unsupported *imaging.UnsupportedError
		So(errors.As(bad.Err(), &unsupported), ShouldBeTrue)
	})

	Convey("Cancelling a running task aborts it without output", t, func() {
		started := make(chan struct{}, 8)
		o := New(Options{
			Source: &catalog{pages: map[string][]*source.Page{"slow": pagesFor("slow", "mem://", 8)}},
			Fetcher: fetchFunc(func(ctx context.Context, _ *source.Page) ([]byte, error) {
				started <- struct{}{}
				<-ctx.Done()
				return nil, ctx.Err()
			}),
			Concurrency: 2,
		})

		task := o.Enqueue(context.Background(), job("slow", archive.CBZ))
		<-started
		task.Cancel()
		o.Wait()

		So(task.State(), ShouldEqual, Aborted)
		So(task.Progress().Completed, ShouldEqual, 0)

		exists, err := filesystem.Exists(archive.Path(archive.CBZ, task.Job.Chapter, task.Job.Dir))
		So(err, ShouldBeNil)
		So(exists, ShouldBeFalse)
	})

	Convey("Cancelling the context aborts the task", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		started := make(chan struct{}, 8)
		o := New(Options{
			Source: &catalog{pages: map[string][]*source.Page{"ctx": pagesFor("ctx", "mem://", 4)}},
			Fetcher: fetchFunc(func(ctx context.Context, _ *source.Page) ([]byte, error) {
				started <- struct{}{}
				<-ctx.Done()
				return nil, ctx.Err()
			}),
			Concurrency: 1,
		})

		task := o.Enqueue(ctx, job("ctx", archive.Raw))
		<-started
		cancel()
		o.Wait()

		So(task.State(), ShouldEqual, Aborted)
		So(errors.Is(task.Err(), context.Canceled), ShouldBeTrue)
	})
}

// cancelAfterBuild publishes through the wrapped builder and then cancels the task.
type cancelAfterBuild struct {
	archive.Builder
	task *atomic.Pointer[Task]
}

func (b cancelAfterBuild) Build(ctx context.Context, chapter *source.Chapter, pages []*archive.Page, destDir string) (*archive.Archive, error) {
	artifact, err := b.Builder.Build(ctx, chapter, pages, destDir)
	b.task.Load().Cancel()
	return artifact, err
}

func TestCancelNearCompletion(t *testing.T) {
	Convey("Cancelling while the last page resolves leaves no artifact", t, func() {
		o := New(Options{
			Source:      &catalog{pages: map[string][]*source.Page{"last": pagesFor("last", "mem://", 3)}},
			Fetcher:     pngFetcher(),
			Concurrency: 1,
			OnProgress: func(task *Task, p Progress) {
				if p.Completed == p.Expected {
					task.Cancel()
				}
			},
		})

		task := o.Enqueue(context.Background(), job("last", archive.CBZ))
		o.Wait()

		So(task.State(), ShouldEqual, Aborted)
		So(task.Archive(), ShouldBeNil)

		exists, err := filesystem.Exists(archive.Path(archive.CBZ, task.Job.Chapter, task.Job.Dir))
		So(err, ShouldBeNil)
		So(exists, ShouldBeFalse)
	})

	Convey("Cancelling after the artifact was published removes it", t, func() {
		var current atomic.Pointer[Task]

		o := New(Options{
			Source:      &catalog{pages: map[string][]*source.Page{"late": pagesFor("late", "mem://", 2)}},
			Fetcher:     pngFetcher(),
			Concurrency: 1,
			OnProgress: func(task *Task, _ Progress) {
				current.Store(task)
			},
		})
		o.build = func(format archive.Format, options archive.Options) archive.Builder {
			return cancelAfterBuild{Builder: archive.New(format, options), task: &current}
		}

		task := o.Enqueue(context.Background(), job("late", archive.CBZ))
		o.Wait()

		So(task.State(), ShouldEqual, Aborted)

		exists, err := filesystem.Exists(archive.Path(archive.CBZ, task.Job.Chapter, task.Job.Dir))
		So(err, ShouldBeNil)
		So(exists, ShouldBeFalse)
	})
}
