package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/go-shiori/go-epub"
	"github.com/google/uuid"
	"github.com/josueBarretogit/manga-tui/constant"
	"github.com/josueBarretogit/manga-tui/fault"
	"github.com/josueBarretogit/manga-tui/filesystem"
	"github.com/josueBarretogit/manga-tui/source"
	"github.com/josueBarretogit/manga-tui/util"
	"github.com/spf13/afero"
	"github.com/vincent-petithory/dataurl"
)

const (
	pageTemplate = `<div class="page"><img src="%s" alt="Page %d" style="width:100%%;height:auto;"/></div>`
	packageName  = "EPUB/package.opf"
)

// go-epub stamps the package with the time of writing
var modifiedMeta = regexp.MustCompile(`(<meta property="dcterms:modified">)[^<]*(</meta>)`)

// epubBuilder emits one section per page, in page order, so the spine is the reading order.
// No cover section is added, the first page is the first spine item.
type epubBuilder struct{}

func (*epubBuilder) Format() Format {
	return EPUB
}

func (*epubBuilder) Accepts(extension string) bool {
	return acceptsContainerImage(extension)
}

func (b *epubBuilder) Build(ctx context.Context, chapter *source.Chapter, pages []*Page, destDir string) (*Archive, error) {
	if err := prepare(chapter, pages, destDir); err != nil {
		return nil, err
	}

	book, err := b.book(ctx, chapter, pages)
	if err != nil {
		return nil, err
	}

	final := Path(EPUB, chapter, destDir)

	var buf bytes.Buffer
	if _, err := book.WriteTo(&buf); err != nil {
		return nil, &fault.IOError{Op: "write", Path: final, Err: err}
	}

	tmp, err := afero.TempFile(filesystem.API(), destDir, ".epub-*.tmp")
	if err != nil {
		return nil, &fault.IOError{Op: "create", Path: destDir, Err: err}
	}

	if err := pin(buf.Bytes(), tmp, modified(chapter)); err != nil {
		_ = tmp.Close()
		_ = filesystem.API().Remove(tmp.Name())
		return nil, &fault.IOError{Op: "write", Path: tmp.Name(), Err: err}
	}

	if err := tmp.Close(); err != nil {
		_ = filesystem.API().Remove(tmp.Name())
		return nil, &fault.IOError{Op: "close", Path: tmp.Name(), Err: err}
	}

	if err := publish(ctx, tmp.Name(), final); err != nil {
		return nil, err
	}

	return &Archive{Format: EPUB, Path: final, Pages: len(pages)}, nil
}

func (b *epubBuilder) book(ctx context.Context, chapter *source.Chapter, pages []*Page) (*epub.Epub, error) {
	title := chapter.String()
	if chapter.MangaTitle != "" {
		title = chapter.MangaTitle + " - " + title
	}

	book, err := epub.NewEpub(title)
	if err != nil {
		return nil, fmt.Errorf("create epub: %w", err)
	}

	book.SetIdentifier("urn:uuid:" + Identifier(chapter))
	book.SetLang(chapter.Language)
	book.SetDescription(fmt.Sprintf("Chapter %s", util.FormatNumber(chapter.Number)))
	if len(chapter.Scanlators) > 0 {
		book.SetAuthor(chapter.Scanlators[0])
	}

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := entryName(page, len(pages))
		internal, err := book.AddImage(dataurl.New(page.Image.Data, page.Image.MIME).String(), name)
		if err != nil {
			return nil, fmt.Errorf("add page %d: %w", page.Index, err)
		}

		section := fmt.Sprintf("page%s.xhtml", util.PadIndex(page.Index, len(pages), constant.PageIndexWidth))
		body := fmt.Sprintf(pageTemplate, internal, page.Index)
		if _, err := book.AddSection(body, fmt.Sprintf("Page %d", page.Index), section, ""); err != nil {
			return nil, fmt.Errorf("add page %d: %w", page.Index, err)
		}
	}

	return book, nil
}

// modified is the package timestamp: the chapter's publication time, or entryTime.
func modified(chapter *source.Chapter) time.Time {
	if chapter.PublishedAt.IsZero() {
		return entryTime
	}
	return chapter.PublishedAt.UTC().Truncate(time.Second)
}

// pin copies the epub container into w entry by entry, keeping order and compression.
// Every entry gets entryTime and the package gets the modified stamp at.
func pin(data []byte, w io.Writer, at time.Time) error {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	for _, f := range reader.File {
		content, err := read(f)
		if err != nil {
			return err
		}

		if f.Name == packageName {
			content = modifiedMeta.ReplaceAll(content, []byte("${1}"+at.Format("2006-01-02T15:04:05Z")+"${2}"))
		}

		entry, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   f.Method,
			Modified: entryTime,
		})
		if err != nil {
			return err
		}

		if _, err := entry.Write(content); err != nil {
			return err
		}
	}

	return zw.Close()
}

func read(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

// Identifier is the stable epub identifier of a chapter.
func Identifier(chapter *source.Chapter) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(chapter.Provider.String()+"/"+chapter.ID)).String()
}
