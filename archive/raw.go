package archive

import (
	"context"
	"path/filepath"

	"github.com/josueBarretogit/manga-tui/constant"
	"github.com/josueBarretogit/manga-tui/fault"
	"github.com/josueBarretogit/manga-tui/filesystem"
	"github.com/josueBarretogit/manga-tui/source"
	"github.com/spf13/afero"
)

// rawBuilder stores pages as plain files in a chapter directory.
// The sentinel file is written last and marks the directory as complete.
type rawBuilder struct{}

func (*rawBuilder) Format() Format {
	return Raw
}

func (*rawBuilder) Accepts(string) bool {
	return true
}

func (*rawBuilder) Build(ctx context.Context, chapter *source.Chapter, pages []*Page, destDir string) (*Archive, error) {
	if err := prepare(chapter, pages, destDir); err != nil {
		return nil, err
	}

	final := Path(Raw, chapter, destDir)

	tmp, err := afero.TempDir(filesystem.API(), destDir, ".raw-")
	if err != nil {
		return nil, &fault.IOError{Op: "mkdir", Path: destDir, Err: err}
	}

	discard := func() {
		_ = filesystem.API().RemoveAll(tmp)
	}

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			discard()
			return nil, err
		}

		path := filepath.Join(tmp, entryName(page, len(pages)))
		if err := filesystem.API().WriteFile(path, page.Image.Data, 0o644); err != nil {
			discard()
			return nil, &fault.IOError{Op: "write", Path: path, Err: err}
		}
	}

	sentinel := filepath.Join(tmp, constant.CompletionSentinel)
	if err := filesystem.API().WriteFile(sentinel, nil, 0o644); err != nil {
		discard()
		return nil, &fault.IOError{Op: "write", Path: sentinel, Err: err}
	}

	if err := publish(ctx, tmp, final); err != nil {
		return nil, err
	}

	return &Archive{Format: Raw, Path: final, Pages: len(pages)}, nil
}

// IsComplete reports whether a raw chapter directory carries the completion sentinel.
func IsComplete(dir string) bool {
	exists, err := filesystem.Exists(filepath.Join(dir, constant.CompletionSentinel))
	return err == nil && exists
}
