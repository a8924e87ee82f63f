package archive

import (
	"archive/zip"
	"context"
	"time"

	"github.com/josueBarretogit/manga-tui/fault"
	"github.com/josueBarretogit/manga-tui/filesystem"
	"github.com/josueBarretogit/manga-tui/source"
	"github.com/spf13/afero"
)

// every entry carries the same timestamp so identical pages give identical archives
var entryTime = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

type cbzBuilder struct {
	comicInfo bool
}

func (*cbzBuilder) Format() Format {
	return CBZ
}

func (*cbzBuilder) Accepts(extension string) bool {
	return acceptsContainerImage(extension)
}

func (b *cbzBuilder) Build(ctx context.Context, chapter *source.Chapter, pages []*Page, destDir string) (*Archive, error) {
	if err := prepare(chapter, pages, destDir); err != nil {
		return nil, err
	}

	final := Path(CBZ, chapter, destDir)

	tmp, err := afero.TempFile(filesystem.API(), destDir, ".cbz-*.tmp")
	if err != nil {
		return nil, &fault.IOError{Op: "create", Path: destDir, Err: err}
	}

	if err := b.write(ctx, tmp, chapter, pages); err != nil {
		_ = tmp.Close()
		_ = filesystem.API().Remove(tmp.Name())
		return nil, err
	}

	if err := tmp.Close(); err != nil {
		_ = filesystem.API().Remove(tmp.Name())
		return nil, &fault.IOError{Op: "close", Path: tmp.Name(), Err: err}
	}

	if err := publish(ctx, tmp.Name(), final); err != nil {
		return nil, err
	}

	return &Archive{Format: CBZ, Path: final, Pages: len(pages)}, nil
}

func (b *cbzBuilder) write(ctx context.Context, file afero.File, chapter *source.Chapter, pages []*Page) error {
	zw := zip.NewWriter(file)

	add := func(name string, data []byte) error {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: entryTime,
		})
		if err != nil {
			return &fault.IOError{Op: "write", Path: file.Name(), Err: err}
		}

		if _, err := w.Write(data); err != nil {
			return &fault.IOError{Op: "write", Path: file.Name(), Err: err}
		}
		return nil
	}

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := add(entryName(page, len(pages)), page.Image.Data); err != nil {
			return err
		}
	}

	if b.comicInfo {
		info, err := newComicInfo(chapter, len(pages)).marshal()
		if err != nil {
			return err
		}

		if err := add(comicInfoName, info); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return &fault.IOError{Op: "write", Path: file.Name(), Err: err}
	}

	return nil
}
