//go:build unix

package terminal

import "golang.org/x/sys/unix"

// winsize queries TIOCGWINSZ, which also reports the pixel size on
// terminals that fill it in.
func winsize(fd uintptr) (Size, bool) {
	ws, err := unix.IoctlGetWinsize(int(fd), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 || ws.Row == 0 {
		return Size{}, false
	}
	return Size{
		Cols:   int(ws.Col),
		Rows:   int(ws.Row),
		PixelW: int(ws.Xpixel),
		PixelH: int(ws.Ypixel),
	}, true
}
