package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxWidth    = 1080
	DefaultJPEGQuality = 70
)

// Image is a normalized page payload.
type Image struct {
	Data []byte
	// Extension without the dot, e.g. "png".
	Extension string
	MIME      string
}

// Accepts reports whether a target container stores images with the given extension as is.
type Accepts func(extension string) bool

// AcceptAll accepts every image format.
func AcceptAll(string) bool {
	return true
}

// UnsupportedError is returned for payloads that are not a decodable image.
type UnsupportedError struct {
	MIME string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported page payload of type %s", e.MIME)
}

// Normalizer turns raw page bytes into archive-ready images.
// For a given input and configuration the output bytes are always the same.
type Normalizer struct {
	Quality     Quality
	MaxWidth    int
	JPEGQuality int
}

// New creates a Normalizer with default parameters for the quality.
func New(quality Quality) *Normalizer {
	return &Normalizer{
		Quality:     quality,
		MaxWidth:    DefaultMaxWidth,
		JPEGQuality: DefaultJPEGQuality,
	}
}

// Detect sniffs the image format of data.
func Detect(data []byte) (mime, extension string) {
	m := mimetype.Detect(data)
	return m.String(), strings.TrimPrefix(m.Extension(), ".")
}

// Normalize applies the configured quality to data.
func (n *Normalizer) Normalize(data []byte, accepts Accepts) (*Image, error) {
	mime, ext := Detect(data)
	if !strings.HasPrefix(mime, "image/") {
		return nil, &UnsupportedError{MIME: mime}
	}

	if accepts == nil {
		accepts = AcceptAll
	}

	switch n.Quality {
	case Low:
		return n.compress(data, mime)
	default:
		if accepts(ext) {
			return &Image{Data: data, Extension: ext, MIME: mime}, nil
		}
		return n.lossless(data)
	}
}

func (n *Normalizer) lossless(data []byte) (*Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode page: %w", err)
	}

	return &Image{Data: buf.Bytes(), Extension: "png", MIME: "image/png"}, nil
}

func (n *Normalizer) compress(data []byte, mime string) (*Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	resized := n.MaxWidth > 0 && width > n.MaxWidth
	if resized {
		height = height * n.MaxWidth / width
		width = n.MaxWidth
	}

	// flatten on white so transparent areas do not turn black in JPEG
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if resized {
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	} else {
		draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Over)
	}

	quality := n.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode page: %w", err)
	}

	if !resized && mime == "image/jpeg" && buf.Len() >= len(data) {
		return &Image{Data: data, Extension: "jpg", MIME: mime}, nil
	}

	return &Image{Data: buf.Bytes(), Extension: "jpg", MIME: "image/jpeg"}, nil
}
