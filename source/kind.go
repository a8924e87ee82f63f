package source

import (
	"fmt"
	"strings"

	"github.com/josueBarretogit/manga-tui/constant"
)

// Kind enumerates the closed set of provider adapters.
type Kind uint8

const (
	// StructuredAPI is the JSON API adapter (MangaDex).
	StructuredAPI Kind = iota + 1
	// ScrapedSiteA is the first HTML adapter (Weebcentral).
	ScrapedSiteA
	// ScrapedSiteB is the second HTML adapter (Manganato).
	ScrapedSiteB
)

var kindNames = map[Kind]string{
	StructuredAPI: constant.ProviderStructuredAPI,
	ScrapedSiteA:  constant.ProviderScrapedSiteA,
	ScrapedSiteB:  constant.ProviderScrapedSiteB,
}

// kindAliases are the site names accepted wherever a kind is configured.
var kindAliases = map[string]Kind{
	"mangadex":    StructuredAPI,
	"weebcentral": ScrapedSiteA,
	"manganato":   ScrapedSiteB,
}

// Kinds lists every adapter kind.
func Kinds() []Kind {
	return []Kind{StructuredAPI, ScrapedSiteA, ScrapedSiteB}
}

// ParseKind parses the configuration spelling of a kind, or the name of its site.
func ParseKind(s string) (Kind, error) {
	if k, ok := kindAliases[strings.ToLower(s)]; ok {
		return k, nil
	}

	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}

	return 0, fmt.Errorf("unknown provider %q, expected one of %s, %s, %s",
		s, constant.ProviderStructuredAPI, constant.ProviderScrapedSiteA, constant.ProviderScrapedSiteB)
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
