// Package archive assembles the normalized pages of one chapter into its final artifact.
//
// Every builder writes into a temporary path next to the destination and publishes it
// with a rename once all pages are written, so the destination holds either the complete
// artifact or nothing.
package archive

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/josueBarretogit/manga-tui/constant"
	"github.com/josueBarretogit/manga-tui/fault"
	"github.com/josueBarretogit/manga-tui/filesystem"
	"github.com/josueBarretogit/manga-tui/imaging"
	"github.com/josueBarretogit/manga-tui/source"
	"github.com/josueBarretogit/manga-tui/util"
	"github.com/samber/lo"
)

// Format enumerates the artifact variants.
type Format uint8

const (
	CBZ Format = iota + 1
	EPUB
	Raw
)

// ParseFormat parses the configuration spelling of a format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case constant.FormatCBZ:
		return CBZ, nil
	case constant.FormatEPUB:
		return EPUB, nil
	case constant.FormatRaw:
		return Raw, nil
	default:
		return 0, fmt.Errorf("unknown download format %q, expected one of %s, %s, %s",
			s, constant.FormatCBZ, constant.FormatEPUB, constant.FormatRaw)
	}
}

func (f Format) String() string {
	switch f {
	case CBZ:
		return constant.FormatCBZ
	case EPUB:
		return constant.FormatEPUB
	case Raw:
		return constant.FormatRaw
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Extension of the artifact file, empty for raw directories.
func (f Format) Extension() string {
	switch f {
	case CBZ, EPUB:
		return "." + f.String()
	default:
		return ""
	}
}

// Page is a normalized page ready to be stored.
type Page struct {
	Index int
	Image *imaging.Image
}

// Archive is a published artifact.
type Archive struct {
	Format Format `json:"format"`
	// Path is the archive file, or the chapter directory for raw.
	Path  string `json:"path"`
	Pages int    `json:"pages"`
}

// Builder produces the artifact of one chapter.
type Builder interface {
	Format() Format

	// Accepts reports whether images with the extension are stored without re-encoding.
	Accepts(extension string) bool

	// Build writes pages, ordered by index from 1 without gaps, into destDir.
	// Errors are *fault.IOError, ctx errors, or an error for an invalid page sequence.
	Build(ctx context.Context, chapter *source.Chapter, pages []*Page, destDir string) (*Archive, error)
}

// Options tune the builders.
type Options struct {
	// ComicInfo adds a ComicInfo.xml entry to cbz archives.
	ComicInfo bool
}

// New returns the builder for format.
func New(format Format, options Options) Builder {
	switch format {
	case EPUB:
		return &epubBuilder{}
	case Raw:
		return &rawBuilder{}
	default:
		return &cbzBuilder{comicInfo: options.ComicInfo}
	}
}

// Path is where the artifact of chapter is published inside destDir.
func Path(format Format, chapter *source.Chapter, destDir string) string {
	return filepath.Join(destDir, chapter.Filename()+format.Extension())
}

var containerImages = []string{"jpg", "jpeg", "png", "gif", "webp"}

func acceptsContainerImage(extension string) bool {
	return lo.Contains(containerImages, extension)
}

// entryName is the file name of a page inside the artifact: 0001.png
func entryName(page *Page, total int) string {
	return util.PadIndex(page.Index, total, constant.PageIndexWidth) + "." + page.Image.Extension
}

func checkPages(chapter *source.Chapter, pages []*Page) error {
	if len(pages) == 0 {
		return fmt.Errorf("chapter %s has no pages", chapter.ID)
	}

	for i, p := range pages {
		if p.Index != i+1 || p.Image == nil {
			return fmt.Errorf("chapter %s: page %d is missing or out of order", chapter.ID, i+1)
		}
	}

	return nil
}

func prepare(chapter *source.Chapter, pages []*Page, destDir string) error {
	if err := checkPages(chapter, pages); err != nil {
		return err
	}

	if err := filesystem.API().MkdirAll(destDir, 0o755); err != nil {
		return &fault.IOError{Op: "mkdir", Path: destDir, Err: err}
	}

	return nil
}

// publish renames tmp onto final unless ctx is already done, in which case tmp is dropped.
func publish(ctx context.Context, tmp, final string) error {
	if err := ctx.Err(); err != nil {
		_ = filesystem.API().RemoveAll(tmp)
		return err
	}

	if err := filesystem.Publish(tmp, final); err != nil {
		_ = filesystem.API().RemoveAll(tmp)
		return &fault.IOError{Op: "rename", Path: final, Err: err}
	}
	return nil
}

// Discard removes a published artifact.
func Discard(artifact *Archive) error {
	if err := filesystem.API().RemoveAll(artifact.Path); err != nil {
		return &fault.IOError{Op: "remove", Path: artifact.Path, Err: err}
	}
	return nil
}
