package config

import (
	"fmt"
	"regexp"
	"time"

	"github.com/josueBarretogit/manga-tui/archive"
	"github.com/josueBarretogit/manga-tui/fault"
	"github.com/josueBarretogit/manga-tui/imaging"
	"github.com/josueBarretogit/manga-tui/key"
	"github.com/josueBarretogit/manga-tui/source"
	"github.com/josueBarretogit/manga-tui/where"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

var languagePattern = regexp.MustCompile(`^[a-z]{2}(-[a-z]{2})?$`)

// Settings is a validated snapshot of everything the acquisition pipeline reads from configuration.
// It is handed to constructors explicitly; pipeline packages never read viper themselves.
type Settings struct {
	Format      archive.Format
	Quality     imaging.Quality
	AmountPages uint8
	Provider    source.Kind

	DownloadDir    string
	Concurrency    int
	MaxAttempts    int
	BackoffInitial time.Duration
	BackoffMax     time.Duration
	Language       string
	CountAsRead    bool
	ComicInfo      bool

	PrefetchConcurrency int

	MaxWidth    int
	JPEGQuality int

	BrowserTLS        bool
	RequestsPerSecond int
	Timeout           time.Duration

	PreferredGroups []string
	ContentRating   []string

	SaveHistory bool
	PageSize    int
}

// Load reads the current configuration and validates it.
// The returned error is always a *fault.ConfigError.
func Load() (*Settings, error) {
	format, err := archive.ParseFormat(viper.GetString(key.DownloadFormat))
	if err != nil {
		return nil, invalid(key.DownloadFormat, viper.Get(key.DownloadFormat), err.Error())
	}

	quality, err := imaging.ParseQuality(viper.GetString(key.ImageQuality))
	if err != nil {
		return nil, invalid(key.ImageQuality, viper.Get(key.ImageQuality), err.Error())
	}

	kind, err := source.ParseKind(viper.GetString(key.Provider))
	if err != nil {
		return nil, invalid(key.Provider, viper.Get(key.Provider), err.Error())
	}

	var r reader

	amount := r.int(key.AmountPages)
	if r.err == nil && (amount < 0 || amount > 255) {
		return nil, invalid(key.AmountPages, amount, "must be between 0 and 255")
	}

	s := &Settings{
		Format:              format,
		Quality:             quality,
		AmountPages:         uint8(amount),
		Provider:            kind,
		DownloadDir:         viper.GetString(key.DownloaderPath),
		Concurrency:         r.int(key.DownloaderConcurrency),
		MaxAttempts:         r.int(key.DownloaderMaxAttempts),
		BackoffInitial:      r.duration(key.DownloaderBackoffInitial),
		BackoffMax:          r.duration(key.DownloaderBackoffMax),
		Language:            viper.GetString(key.DownloaderLanguage),
		CountAsRead:         r.bool(key.DownloaderCountAsRead),
		ComicInfo:           r.bool(key.DownloaderComicInfo),
		PrefetchConcurrency: r.int(key.PrefetchConcurrency),
		MaxWidth:            r.int(key.ImagingMaxWidth),
		JPEGQuality:         r.int(key.ImagingJPEGQuality),
		BrowserTLS:          r.bool(key.NetworkBrowserTLS),
		RequestsPerSecond:   r.int(key.NetworkRequestsPerSecond),
		Timeout:             r.duration(key.NetworkTimeout),
		PreferredGroups:     viper.GetStringSlice(key.MangadexPreferredGroups),
		ContentRating:       viper.GetStringSlice(key.MangadexContentRating),
		SaveHistory:         r.bool(key.HistorySaveOnDownload),
		PageSize:            r.int(key.SearchPageSize),
	}

	if r.err != nil {
		return nil, r.err
	}

	if err := s.validate(); err != nil {
		return nil, err
	}

	if s.DownloadDir == "" {
		s.DownloadDir = where.Downloads()
	}

	return s, nil
}

func (s *Settings) validate() error {
	positive := []struct {
		key   string
		value int
	}{
		{key.DownloaderConcurrency, s.Concurrency},
		{key.DownloaderMaxAttempts, s.MaxAttempts},
		{key.PrefetchConcurrency, s.PrefetchConcurrency},
		{key.ImagingMaxWidth, s.MaxWidth},
		{key.NetworkRequestsPerSecond, s.RequestsPerSecond},
		{key.SearchPageSize, s.PageSize},
	}

	for _, p := range positive {
		if p.value < 1 {
			return invalid(p.key, p.value, "must be greater than 0")
		}
	}

	if s.JPEGQuality < 1 || s.JPEGQuality > 100 {
		return invalid(key.ImagingJPEGQuality, s.JPEGQuality, "must be between 1 and 100")
	}

	if s.BackoffInitial <= 0 {
		return invalid(key.DownloaderBackoffInitial, s.BackoffInitial, "must be a positive duration")
	}

	if s.BackoffMax < s.BackoffInitial {
		return invalid(key.DownloaderBackoffMax, s.BackoffMax, fmt.Sprintf("must not be lower than %s", key.DownloaderBackoffInitial))
	}

	if s.Timeout <= 0 {
		return invalid(key.NetworkTimeout, s.Timeout, "must be a positive duration")
	}

	if !languagePattern.MatchString(s.Language) {
		return invalid(key.DownloaderLanguage, s.Language, "must be an ISO 639-1 code, optionally with a region such as pt-br")
	}

	return nil
}

func invalid(k string, value any, reason string) *fault.ConfigError {
	return &fault.ConfigError{Key: k, Value: value, Reason: reason}
}

// reader converts raw configuration values and keeps the first one that does not convert.
// viper's typed getters turn such values into zero silently.
type reader struct {
	err error
}

func (r *reader) int(k string) int {
	v, err := cast.ToIntE(viper.Get(k))
	r.check(k, err, "must be an integer")
	return v
}

func (r *reader) duration(k string) time.Duration {
	v, err := cast.ToDurationE(viper.Get(k))
	r.check(k, err, "must be a duration such as 500ms or 2s")
	return v
}

func (r *reader) bool(k string) bool {
	v, err := cast.ToBoolE(viper.Get(k))
	r.check(k, err, "must be true or false")
	return v
}

func (r *reader) check(k string, err error, reason string) {
	if err != nil && r.err == nil {
		r.err = invalid(k, viper.Get(k), reason)
	}
}
