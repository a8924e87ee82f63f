// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/josueBarretogit/manga-tui/color"
	"github.com/josueBarretogit/manga-tui/constant"
	"github.com/josueBarretogit/manga-tui/key"
	"github.com/josueBarretogit/manga-tui/style"
	"github.com/muesli/reflow/wordwrap"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.EnvPrefix + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []int:
		return "[]int"
	case time.Duration:
		return "duration"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.DownloadFormat, constant.FormatCBZ, "Archive format of downloaded chapters.\nAvailable options are: cbz, raw, epub")
	register(key.ImageQuality, constant.QualityLow, "Quality of downloaded pages.\nlow re-encodes pages to a smaller size, high keeps the original bytes")
	register(key.AmountPages, 5, "Prefetch window radius while reading. From 0 to 255")
	register(key.Provider, constant.ProviderStructuredAPI, "Source to search and download from.\nAvailable options are: structured-api (mangadex), scraped-site-a (weebcentral), scraped-site-b (manganato)")

	register(key.DownloaderPath, "", "Directory where chapters are downloaded.\nEmpty means the downloads directory of the current user")
	register(key.DownloaderConcurrency, 8, "Maximum number of pages fetched at the same time across all chapters")
	register(key.DownloaderMaxAttempts, 4, "Maximum number of attempts for a single page")
	register(key.DownloaderBackoffInitial, 500*time.Millisecond, "Delay before the first retry of a page")
	register(key.DownloaderBackoffMax, 15*time.Second, "Upper bound of the delay between retries")
	register(key.DownloaderLanguage, "en", "Language of the chapters to list, as an ISO 639-1 code")
	register(key.DownloaderCountAsRead, false, "Queue downloaded chapters for reading progress sync")
	register(key.DownloaderComicInfo, true, "Add a ComicInfo.xml entry to cbz archives")

	register(key.PrefetchConcurrency, 2, "Maximum number of pages prefetched at the same time while reading")

	register(key.ReaderApp, "", "Application used by --open to show pages and chapters.\nEmpty means the default application of the system")

	register(key.ImagingMaxWidth, 1080, "Maximum page width in pixels when image_quality is low")
	register(key.ImagingJPEGQuality, 70, "JPEG quality used when image_quality is low. From 1 to 100")

	register(key.NetworkBrowserTLS, true, "Use a browser TLS fingerprint when talking to scraped sites")
	register(key.NetworkRequestsPerSecond, 4, "Maximum metadata requests per second sent to a single source")
	register(key.NetworkTimeout, 30*time.Second, "Timeout of a single HTTP request")

	register(key.MangadexPreferredGroups, []string{}, "Scanlation groups preferred when a chapter is released by several groups")
	register(key.MangadexContentRating, []string{"safe", "suggestive"}, "Content ratings included in mangadex searches")

	register(key.HistorySaveOnDownload, true, "Record downloaded chapters in the history")
	register(key.SearchShowQuerySuggestions, true, "Show query suggestions when searching")
	register(key.SearchPageSize, 20, "Number of search results requested per page")

	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, false, "Enable automatic version check")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"wrap":     func(s string) string { return wordwrap.String(s, 72) },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint (wrap .Description) }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
