// Package integration hands downloaded chapters over to the reading progress sync service.
//
// The service runs out of process. Completions are appended to a JSON lines queue which the
// service reconciles on its own schedule, so a download never waits for it.
package integration

import (
	"github.com/josueBarretogit/manga-tui/downloader"
)

// Integrator receives chapters that should be marked as read.
type Integrator interface {
	downloader.Recorder
}

// SyncQueue is the queue at where.SyncQueue, opened on first use.
func SyncQueue() Integrator {
	return defaultQueue()
}
