// Package where resolves the filesystem locations used by the application.
package where

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/josueBarretogit/manga-tui/constant"
	"github.com/josueBarretogit/manga-tui/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath overrides the configuration directory.
const EnvConfigPath = "MANGA_TUI_CONFIG_PATH"

// EnvDownloadsPath overrides the default downloads directory.
const EnvDownloadsPath = "MANGA_TUI_DOWNLOADS_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config is the configuration directory, $XDG_CONFIG_HOME/manga-tui or its platform equivalent.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.App))
}

// Cache is the persistent cache directory.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.App))
}

// Logs is the directory holding daily log files.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// History is the file recording downloaded chapters.
func History() string {
	return filepath.Join(Config(), "history.json")
}

// Queries is the file backing search query suggestions.
func Queries() string {
	return filepath.Join(Cache(), "queries.json")
}

// SyncQueue is the append-only file consumed by the reading progress sync service.
func SyncQueue() string {
	return filepath.Join(Config(), "sync_queue.jsonl")
}

// Downloads is the default root of downloaded manga.
func Downloads() string {
	if custom, ok := os.LookupEnv(EnvDownloadsPath); ok {
		return ensureDir(custom)
	}

	if runtime.GOOS == constant.Android {
		return ensureDir(filepath.Join("/sdcard", "Download", constant.App))
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ensureDir(filepath.Join(Cache(), "downloads"))
	}

	return ensureDir(filepath.Join(home, "Downloads", constant.App))
}

// Temp is a scratch directory for transient artifacts.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.App))
}
