package terminal

import (
	"os"
	"strconv"

	"golang.org/x/term"
)

// Fallback cell size when the terminal does not report pixel dimensions.
const (
	DefaultCellWidth  = 8
	DefaultCellHeight = 16
)

// Size is the terminal grid in cells and, when known, pixels.
type Size struct {
	Cols   int
	Rows   int
	PixelW int // 0 if unknown
	PixelH int // 0 if unknown
}

// CellSize returns the pixel size of one cell, falling back to 8x16.
func (s Size) CellSize() (w, h int) {
	w, h = DefaultCellWidth, DefaultCellHeight
	if s.PixelW > 0 && s.Cols > 0 {
		w = s.PixelW / s.Cols
	}
	if s.PixelH > 0 && s.Rows > 0 {
		h = s.PixelH / s.Rows
	}
	return w, h
}

// WidthPixels returns the terminal width in pixels, estimated from the
// cell count when the terminal does not report it.
func (s Size) WidthPixels() int {
	if s.PixelW > 0 {
		return s.PixelW
	}
	w, _ := s.CellSize()
	return s.Cols * w
}

// GetSize measures the terminal attached to stdout, then stderr, then
// falls back to COLUMNS/LINES and finally 80x24.
func GetSize() Size {
	for _, f := range []*os.File{os.Stdout, os.Stderr} {
		if s, ok := sizeOf(f.Fd()); ok {
			return s
		}
	}
	return sizeFromEnv(os.Getenv)
}

// sizeOf tries the platform pixel-aware query first and x/term second.
func sizeOf(fd uintptr) (Size, bool) {
	if s, ok := winsize(fd); ok {
		return s, true
	}
	cols, rows, err := term.GetSize(int(fd))
	if err != nil || cols <= 0 || rows <= 0 {
		return Size{}, false
	}
	return Size{Cols: cols, Rows: rows}, true
}

func sizeFromEnv(getenv Getenv) Size {
	return Size{
		Cols: envInt(getenv, "COLUMNS", 80),
		Rows: envInt(getenv, "LINES", 24),
	}
}

func envInt(getenv Getenv, name string, fallback int) int {
	n, err := strconv.Atoi(getenv(name))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
