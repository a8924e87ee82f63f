// Package imaging normalizes fetched page bytes according to the configured image quality.
package imaging

import (
	"fmt"

	"github.com/josueBarretogit/manga-tui/constant"
)

// Quality selects how pages are normalized.
type Quality uint8

const (
	// Low downsamples and re-encodes pages as JPEG.
	Low Quality = iota + 1
	// High keeps the original bytes.
	High
)

// ParseQuality parses the configuration spelling of a quality.
func ParseQuality(s string) (Quality, error) {
	switch s {
	case constant.QualityLow:
		return Low, nil
	case constant.QualityHigh:
		return High, nil
	default:
		return 0, fmt.Errorf("unknown image quality %q, expected %s or %s", s, constant.QualityLow, constant.QualityHigh)
	}
}

func (q Quality) String() string {
	switch q {
	case Low:
		return constant.QualityLow
	case High:
		return constant.QualityHigh
	default:
		return fmt.Sprintf("quality(%d)", uint8(q))
	}
}

func (q Quality) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}
