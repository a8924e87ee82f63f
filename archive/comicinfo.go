package archive

import (
	"encoding/xml"
	"strings"

	"github.com/josueBarretogit/manga-tui/source"
	"github.com/josueBarretogit/manga-tui/util"
)

const comicInfoName = "ComicInfo.xml"

// comicInfo is the subset of the ComicRack schema readers use for chapter metadata.
type comicInfo struct {
	XMLName     xml.Name `xml:"ComicInfo"`
	XMLNSXsd    string   `xml:"xmlns:xsd,attr"`
	XMLNSXsi    string   `xml:"xmlns:xsi,attr"`
	Title       string   `xml:"Title,omitempty"`
	Series      string   `xml:"Series,omitempty"`
	Number      string   `xml:"Number"`
	Volume      string   `xml:"Volume,omitempty"`
	Translator  string   `xml:"Translator,omitempty"`
	Web         string   `xml:"Web,omitempty"`
	LanguageISO string   `xml:"LanguageISO,omitempty"`
	PageCount   int      `xml:"PageCount"`
	Manga       string   `xml:"Manga"`
}

func newComicInfo(chapter *source.Chapter, pages int) *comicInfo {
	return &comicInfo{
		XMLNSXsd:    "http://www.w3.org/2001/XMLSchema",
		XMLNSXsi:    "http://www.w3.org/2001/XMLSchema-instance",
		Title:       chapter.Title,
		Series:      chapter.MangaTitle,
		Number:      util.FormatNumber(chapter.Number),
		Volume:      chapter.Volume,
		Translator:  strings.Join(chapter.Scanlators, ", "),
		Web:         chapter.URL,
		LanguageISO: chapter.Language,
		PageCount:   pages,
		Manga:       "YesAndRightToLeft",
	}
}

func (c *comicInfo) marshal() ([]byte, error) {
	data, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), data...), nil
}
