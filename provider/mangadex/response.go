package mangadex

import (
	"sort"
	"strconv"
	"time"
)

type relationship struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Attributes *struct {
		FileName string `json:"fileName"`
		Name     string `json:"name"`
	} `json:"attributes,omitempty"`
}

type mangaData struct {
	ID         string `json:"id"`
	Attributes struct {
		Title     map[string]string   `json:"title"`
		AltTitles []map[string]string `json:"altTitles"`
	} `json:"attributes"`
	Relationships []relationship `json:"relationships"`
}

type mangaResponse struct {
	Result string    `json:"result"`
	Data   mangaData `json:"data"`
}

type searchResponse struct {
	Result string      `json:"result"`
	Data   []mangaData `json:"data"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
	Total  int         `json:"total"`
}

type chapterData struct {
	ID         string `json:"id"`
	Attributes struct {
		Volume             *string   `json:"volume"`
		Chapter            *string   `json:"chapter"`
		Title              *string   `json:"title"`
		TranslatedLanguage string    `json:"translatedLanguage"`
		ExternalURL        *string   `json:"externalUrl"`
		Pages              int       `json:"pages"`
		ReadableAt         time.Time `json:"readableAt"`
	} `json:"attributes"`
	Relationships []relationship `json:"relationships"`
}

type feedResponse struct {
	Result string        `json:"result"`
	Data   []chapterData `json:"data"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
	Total  int           `json:"total"`
}

type atHomeResponse struct {
	Result  string `json:"result"`
	BaseURL string `json:"baseUrl"`
	Chapter struct {
		Hash      string   `json:"hash"`
		Data      []string `json:"data"`
		DataSaver []string `json:"dataSaver"`
	} `json:"chapter"`
}

// title prefers the English title, then any title in a stable order, then an English alternative.
func (m *mangaData) title() string {
	if t := m.Attributes.Title["en"]; t != "" {
		return t
	}

	for _, alt := range m.Attributes.AltTitles {
		if t := alt["en"]; t != "" {
			return t
		}
	}

	langs := make([]string, 0, len(m.Attributes.Title))
	for lang := range m.Attributes.Title {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	for _, lang := range langs {
		if t := m.Attributes.Title[lang]; t != "" {
			return t
		}
	}

	return m.ID
}

func (m *mangaData) coverFile() string {
	for _, r := range m.Relationships {
		if r.Type == "cover_art" && r.Attributes != nil {
			return r.Attributes.FileName
		}
	}
	return ""
}

func (c *chapterData) number() float64 {
	if c.Attributes.Chapter == nil {
		return 0
	}

	n, err := strconv.ParseFloat(*c.Attributes.Chapter, 64)
	if err != nil {
		return 0
	}
	return n
}

func (c *chapterData) groups() []string {
	var groups []string
	for _, r := range c.Relationships {
		if r.Type == "scanlation_group" && r.Attributes != nil && r.Attributes.Name != "" {
			groups = append(groups, r.Attributes.Name)
		}
	}
	return groups
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
