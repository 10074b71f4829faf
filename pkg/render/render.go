package render

import (
	"errors"
	"fmt"
	"image"

	"github.com/blacktop/go-termimg"
	"github.com/disintegration/imaging"

	"gitlab.com/tinyland/lab/showreel/pkg/media"
	"gitlab.com/tinyland/lab/showreel/pkg/terminal"
)

// ErrDisabled is returned when the protocol is ProtocolNone.
var ErrDisabled = errors.New("render: image output disabled")

// Options configures a Renderer.
type Options struct {
	Protocol terminal.Protocol

	// CellWidth and CellHeight are the pixel size of one terminal cell.
	// Zero means 8x16.
	CellWidth  int
	CellHeight int

	// CacheMB bounds the rendered output cache. Zero means 32.
	CacheMB int
}

// Renderer converts media handles to terminal strings.
type Renderer struct {
	protocol terminal.Protocol
	cellW    int
	cellH    int
	cache    *Cache
}

// New creates a Renderer.
func New(opts Options) *Renderer {
	cellW, cellH := opts.CellWidth, opts.CellHeight
	if cellW <= 0 {
		cellW = terminal.DefaultCellWidth
	}
	if cellH <= 0 {
		cellH = terminal.DefaultCellHeight
	}
	return &Renderer{
		protocol: opts.Protocol,
		cellW:    cellW,
		cellH:    cellH,
		cache:    NewCache(opts.CacheMB),
	}
}

// Protocol returns the output protocol.
func (r *Renderer) Protocol() terminal.Protocol { return r.protocol }

// Cache exposes the output cache.
func (r *Renderer) Cache() *Cache { return r.cache }

// SetCellSize updates the cell pixel size after a resize and drops cached
// output rendered for the old geometry.
func (r *Renderer) SetCellSize(w, h int) {
	if w <= 0 || h <= 0 || (w == r.cellW && h == r.cellH) {
		return
	}
	r.cellW, r.cellH = w, h
	r.cache.Purge()
}

// Render draws h into a box of width x height cells.
func (r *Renderer) Render(h *media.Handle, width, height int) (string, error) {
	if h == nil || h.Image == nil {
		return "", errors.New("render: nil image")
	}
	if r.protocol == terminal.ProtocolNone {
		return "", ErrDisabled
	}
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("render: bad box %dx%d", width, height)
	}

	key := Key{Ref: h.Ref, Protocol: r.protocol, Width: width, Height: height}
	if s, ok := r.cache.Get(key); ok {
		return s, nil
	}

	var (
		out string
		err error
	)
	switch r.protocol {
	case terminal.ProtocolKitty:
		out, err = r.termimg(h.Image, termimg.Kitty, width, height)
	case terminal.ProtocolITerm2:
		out, err = r.termimg(h.Image, termimg.ITerm2, width, height)
	case terminal.ProtocolSixel:
		out, err = r.termimg(h.Image, termimg.Sixel, width, height)
	default:
		out = Halfblocks(Fit(h.Image, width, height*2))
	}
	if err != nil {
		return "", fmt.Errorf("render %s: %w", h.Ref, err)
	}
	r.cache.Put(key, out)
	return out, nil
}

// termimg shrinks img to the box's pixel budget and hands it to go-termimg.
func (r *Renderer) termimg(img image.Image, proto termimg.Protocol, width, height int) (string, error) {
	img = Fit(img, width*r.cellW, height*r.cellH)
	ti := termimg.New(img)
	if ti == nil {
		return "", errors.New("go-termimg: cannot wrap image")
	}
	return ti.Protocol(proto).Size(width, height).Scale(termimg.ScaleFit).Render()
}

// Fit scales img down to fit within maxW x maxH pixels, keeping the aspect
// ratio. Images that already fit are returned as is.
func Fit(img image.Image, maxW, maxH int) image.Image {
	if img == nil {
		return nil
	}
	maxW, maxH = max(maxW, 1), max(maxH, 1)
	b := img.Bounds()
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return img
	}
	fitted := imaging.Fit(img, maxW, maxH, imaging.Lanczos)
	return imaging.Sharpen(fitted, 0.5)
}
