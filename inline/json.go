package inline

import (
	"encoding/json"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/josueBarretogit/manga-tui/source"
)

// Downloaded is where a chapter was stored, or why it was not.
type Downloaded struct {
	ChapterID string `json:"chapter_id" jsonschema:"description=ID of the chapter on its provider."`
	State     string `json:"state" jsonschema:"enum=completed,enum=partially failed,enum=aborted"`
	Path      string `json:"path,omitempty" jsonschema:"description=Archive file or raw chapter directory."`
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty" jsonschema:"enum=network,enum=rate_limited,enum=parse,enum=io,enum=config,enum=canceled,enum=unknown"`
}

type Chapter struct {
	Chapter *source.Chapter `json:"chapter"`
	Pages   []*source.Page  `json:"pages,omitempty" jsonschema:"description=Page images in reading order. Present when pages were requested."`
}

type Manga struct {
	// Source is the name of the provider.
	Source     string        `json:"source"`
	Manga      *source.Manga `json:"manga"`
	Chapters   []*Chapter    `json:"chapters"`
	Downloaded []*Downloaded `json:"downloaded,omitempty"`
}

type Output struct {
	Query  string   `json:"query"`
	Result []*Manga `json:"result"`
}

func asJson(mangas []*Manga, query string) ([]byte, error) {
	if mangas == nil {
		mangas = []*Manga{}
	}

	return json.Marshal(&Output{
		Query:  query,
		Result: mangas,
	})
}

// Schema describes Output.
func Schema() *jsonschema.Schema {
	reflector := new(jsonschema.Reflector)
	reflector.Anonymous = true
	reflector.Namer = func(t reflect.Type) string {
		name := t.Name()
		switch strings.ToLower(name) {
		case "manga", "chapter", "page", "output":
			return filepath.Base(t.PkgPath()) + "." + name
		}

		return name
	}

	return reflector.Reflect(&Output{})
}
