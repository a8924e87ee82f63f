package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/josueBarretogit/manga-tui/config"
	"github.com/josueBarretogit/manga-tui/downloader"
	"github.com/josueBarretogit/manga-tui/fetcher"
	"github.com/josueBarretogit/manga-tui/history"
	"github.com/josueBarretogit/manga-tui/integration"
	"github.com/josueBarretogit/manga-tui/network"
	"github.com/josueBarretogit/manga-tui/provider"
	"github.com/josueBarretogit/manga-tui/source"
)

// pipeline is what the acquisition commands build from the configuration.
type pipeline struct {
	settings *config.Settings
	facade   *provider.Facade
	fetcher  *fetcher.Fetcher
}

func newPipeline() (*pipeline, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}

	facade, err := provider.New(provider.OptionsFrom(settings))
	if err != nil {
		return nil, err
	}

	return &pipeline{
		settings: settings,
		facade:   facade,
		fetcher: fetcher.New(fetcher.Options{
			Client:      network.New(network.Options{Timeout: settings.Timeout}),
			MaxAttempts: settings.MaxAttempts,
			Backoff:     fetcher.ExponentialPolicy(settings.BackoffInitial, settings.BackoffMax),
		}),
	}, nil
}

// recorders are the collaborators told about every completed chapter.
func (p *pipeline) recorders() []downloader.Recorder {
	var recorders []downloader.Recorder
	if p.settings.SaveHistory {
		recorders = append(recorders, history.Recorder)
	}
	if p.settings.CountAsRead {
		recorders = append(recorders, integration.SyncQueue())
	}
	return recorders
}

func (p *pipeline) orchestrator(onProgress func(*downloader.Task, downloader.Progress), onDone func(*downloader.Task)) *downloader.Orchestrator {
	return downloader.New(downloader.Options{
		Source:      p.facade,
		Fetcher:     p.fetcher,
		Concurrency: p.settings.Concurrency,
		MaxWidth:    p.settings.MaxWidth,
		JPEGQuality: p.settings.JPEGQuality,
		ComicInfo:   p.settings.ComicInfo,
		Recorders:   p.recorders(),
		OnProgress:  onProgress,
		OnDone:      onDone,
	})
}

func (p *pipeline) job(chapter *source.Chapter) downloader.Job {
	return downloader.Job{
		Chapter: chapter,
		Format:  p.settings.Format,
		Quality: p.settings.Quality,
		Dir:     downloader.Dir(p.settings.DownloadDir, p.facade.Name(), chapter),
	}
}

// interruptible returns a context cancelled on the first interrupt signal.
func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
