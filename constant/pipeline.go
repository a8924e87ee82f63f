package constant

// Download formats accepted by the download_format option.
const (
	FormatCBZ  = "cbz"
	FormatRaw  = "raw"
	FormatEPUB = "epub"
)

// Image qualities accepted by the image_quality option.
const (
	QualityLow  = "low"
	QualityHigh = "high"
)

// Provider identifiers accepted by the provider option.
const (
	ProviderStructuredAPI = "structured-api"
	ProviderScrapedSiteA  = "scraped-site-a"
	ProviderScrapedSiteB  = "scraped-site-b"
)

// CompletionSentinel marks a raw chapter directory whose pages were all written.
const CompletionSentinel = ".complete"

// PageIndexWidth is the minimum number of digits used for page file names.
const PageIndexWidth = 4
