package render

import (
	"fmt"
	"image"
	"image/draw"
	"strings"
)

// Halfblocks renders img with one cell per two vertical pixels: the upper
// half block takes the top pixel as foreground and the bottom pixel as
// background. Output rows are separated by newlines and every row ends with
// an SGR reset, so the result composes with lipgloss layouts.
func Halfblocks(img image.Image) string {
	if img == nil {
		return ""
	}
	src := toNRGBA(img)
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return ""
	}

	var sb strings.Builder
	sb.Grow(w * ((h + 1) / 2) * 40)
	for y := 0; y < h; y += 2 {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < w; x++ {
			top := src.NRGBAAt(b.Min.X+x, b.Min.Y+y)
			hasBot := y+1 < h
			bot := src.NRGBAAt(b.Min.X+x, b.Min.Y+y+1)
			if !hasBot {
				bot.A = 0
			}
			switch {
			case top.A == 0 && bot.A == 0:
				sb.WriteString("\x1b[0m ")
			case top.A == 0:
				fmt.Fprintf(&sb, "\x1b[49;38;2;%d;%d;%dm▄", bot.R, bot.G, bot.B)
			case bot.A == 0:
				fmt.Fprintf(&sb, "\x1b[49;38;2;%d;%d;%dm▀", top.R, top.G, top.B)
			default:
				fmt.Fprintf(&sb, "\x1b[38;2;%d;%d;%d;48;2;%d;%d;%dm▀",
					top.R, top.G, top.B, bot.R, bot.G, bot.B)
			}
		}
		sb.WriteString("\x1b[0m")
	}
	return sb.String()
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}
