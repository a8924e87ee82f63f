// Package history records which chapters were downloaded, and where.
package history

import (
	"github.com/josueBarretogit/manga-tui/downloader"
	"github.com/josueBarretogit/manga-tui/filesystem"
	"github.com/josueBarretogit/manga-tui/source"
	"github.com/josueBarretogit/manga-tui/where"
	"github.com/metafates/gache"
)

var cacher = gache.New[map[string]*SavedChapter](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns every saved chapter keyed by provider and chapter id.
func Get() (map[string]*SavedChapter, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*SavedChapter), nil
	}
	return cached, nil
}

// Save records a completed download, replacing an earlier download of the same chapter.
func Save(completion downloader.Completion) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	record := newSavedChapter(completion)
	saved[record.encode()] = record

	return cacher.Set(saved)
}

// IsDownloaded reports whether the chapter was downloaded before.
func IsDownloaded(provider source.Kind, chapterID string) (bool, error) {
	saved, err := Get()
	if err != nil {
		return false, err
	}

	_, ok := saved[encode(provider, chapterID)]
	return ok, nil
}

// Remove deletes a chapter from the history. The archive is left in place.
func Remove(chapter *SavedChapter) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, chapter.encode())
	return cacher.Set(saved)
}

// Recorder saves the completions of an orchestrator.
var Recorder downloader.Recorder = downloader.RecorderFunc(Save)
