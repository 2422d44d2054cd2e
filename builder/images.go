package builder

import (
	"fmt"
	"image"
	_ "image/gif" // Register decoders
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/wudi/docez/dom"
	"github.com/wudi/docez/observability"
	"github.com/wudi/docez/unit"
)

// imageDPI maps image pixels to points when a file carries no resolution.
const imageDPI = 72

// ImageFromFile returns a detached image for path with its intrinsic size
// read from the file header.
func ImageFromFile(path string) (*Image, error) {
	img := dom.NewImage(path)
	if err := probeImage(img); err != nil {
		return nil, err
	}
	return &Image{img: img}, nil
}

// ImageFromReader returns a detached image named name whose intrinsic size
// is read from r.
func ImageFromReader(name string, r io.Reader) (*Image, error) {
	w, h, err := ImageSize(r)
	if err != nil {
		return nil, fmt.Errorf("image %s: %w", name, err)
	}
	img := dom.NewImage(name)
	img.IntrinsicWidth, img.IntrinsicHeight = w, h
	return &Image{img: img}, nil
}

// ImageSize reads the pixel dimensions from an image header and converts
// them to points. Only the header is decoded.
func ImageSize(r io.Reader) (w, h unit.Unit, err error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0, err
	}
	scale := unit.Inch / imageDPI
	return unit.Unit(cfg.Width) * scale, unit.Unit(cfg.Height) * scale, nil
}

func probeImage(img *dom.Image) error {
	f, err := os.Open(img.Name)
	if err != nil {
		return err
	}
	defer f.Close()
	w, h, err := ImageSize(f)
	if err != nil {
		return fmt.Errorf("image %s: %w", img.Name, err)
	}
	img.IntrinsicWidth, img.IntrinsicHeight = w, h
	return nil
}

// Image wraps a dom.Image.
type Image struct {
	img *dom.Image
}

func (i *Image) Node() *dom.Image { return i.img }

// FitToSize scales the image to the largest size that fits in w x h while
// keeping its aspect ratio. Without a known size it stretches.
func (i *Image) FitToSize(w, h unit.Unit) *Image {
	cw, ch := i.img.Size()
	if cw <= 0 || ch <= 0 {
		return i.StretchToSize(w, h)
	}
	neededHeight := ch * w / cw
	neededWidth := cw * h / ch
	switch {
	case neededHeight <= h:
		i.img.Width, i.img.Height = w, neededHeight
	case neededWidth <= w:
		i.img.Width, i.img.Height = neededWidth, h
	}
	return i
}

// StretchToSize sets both dimensions, ignoring the aspect ratio.
func (i *Image) StretchToSize(w, h unit.Unit) *Image {
	i.img.Width, i.img.Height = w, h
	return i
}

func (i *Image) Width(w unit.Unit) *Image  { i.img.Width = w; return i }
func (i *Image) Height(h unit.Unit) *Image { i.img.Height = h; return i }

func (i *Image) LockAspectRatio(v bool) *Image { i.img.LockAspectRatio = v; return i }

func (i *Image) RelativeVertical(r dom.RelativeVertical) *Image {
	i.img.RelativeVertical = r
	return i
}

func (i *Image) RelativeHorizontal(r dom.RelativeHorizontal) *Image {
	i.img.RelativeHorizontal = r
	return i
}

func (i *Image) Top(p dom.ShapePosition) *Image  { i.img.Top = p; return i }
func (i *Image) Left(p dom.ShapePosition) *Image { i.img.Left = p; return i }

func (i *Image) WrapFormatStyle(s dom.WrapStyle) *Image { i.img.Wrap = s; return i }

// TextFrame wraps a dom.TextFrame.
type TextFrame struct {
	tf  *dom.TextFrame
	log observability.Logger
}

// NewTextFrame returns a detached text frame, for use as a row value.
func NewTextFrame() *TextFrame { return &TextFrame{tf: dom.NewTextFrame()} }

func (t *TextFrame) Node() *dom.TextFrame { return t.tf }

func (t *TextFrame) Width(w unit.Unit) *TextFrame  { t.tf.Width = w; return t }
func (t *TextFrame) Height(h unit.Unit) *TextFrame { t.tf.Height = h; return t }

func (t *TextFrame) Top(p dom.ShapePosition) *TextFrame  { t.tf.Top = p; return t }
func (t *TextFrame) Left(p dom.ShapePosition) *TextFrame { t.tf.Left = p; return t }

func (t *TextFrame) RelativeVertical(r dom.RelativeVertical) *TextFrame {
	t.tf.RelativeVertical = r
	return t
}

func (t *TextFrame) RelativeHorizontal(r dom.RelativeHorizontal) *TextFrame {
	t.tf.RelativeHorizontal = r
	return t
}

func (t *TextFrame) WrapFormatStyle(s dom.WrapStyle) *TextFrame { t.tf.Wrap = s; return t }

// AddParagraph appends a paragraph holding text.
func (t *TextFrame) AddParagraph(text string) *Paragraph {
	return &Paragraph{p: t.tf.AddParagraph(text), log: t.log}
}
