// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Pipeline options. These four are the recognized options of the acquisition pipeline
// and keep their flat names.
const (
	DownloadFormat = "download_format"
	ImageQuality   = "image_quality"
	AmountPages    = "amount_pages"
	Provider       = "provider"
)

// Downloader - scheduling, retry and destination of chapter downloads.
const (
	DownloaderPath           = "downloader.path"
	DownloaderConcurrency    = "downloader.concurrency"
	DownloaderMaxAttempts    = "downloader.max_attempts"
	DownloaderBackoffInitial = "downloader.backoff_initial"
	DownloaderBackoffMax     = "downloader.backoff_max"
	DownloaderLanguage       = "downloader.language"
	DownloaderCountAsRead    = "downloader.count_as_read"
	DownloaderComicInfo      = "downloader.comic_info"
)

// Prefetch - sliding window used while reading.
const (
	PrefetchConcurrency = "prefetch.concurrency"
)

// Reader - external viewer of read pages and downloaded chapters.
const (
	ReaderApp = "reader.app"
)

// Imaging - low quality re-encoding parameters.
const (
	ImagingMaxWidth    = "imaging.max_width"
	ImagingJPEGQuality = "imaging.jpeg_quality"
)

// Network - transport behaviour shared by the source adapters.
const (
	NetworkBrowserTLS        = "network.browser_tls"
	NetworkRequestsPerSecond = "network.requests_per_second"
	NetworkTimeout           = "network.timeout"
)

// MangaDex - structured API adapter.
const (
	MangadexPreferredGroups = "mangadex.preferred_groups"
	MangadexContentRating   = "mangadex.content_rating"
)

// History Tracking - persistence of downloaded chapters.
const (
	HistorySaveOnDownload = "history.save_on_download"
)

// Search Interaction - these keys define the parameters for search discovery.
const (
	SearchShowQuerySuggestions = "search.show_query_suggestions"
	SearchPageSize             = "search.page_size"
)

// Iconography - these keys manage the visual rendering of CLI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
