package cpu

import (
	"strings"
)

const (
	ScreenWidth  = 64
	ScreenHeight = 32
)

// Display is the 64x32px Chip-8 screen, one bool per pixel, stored row by row
// starting from the top-left corner. A true pixel is lit.
type Display [ScreenWidth * ScreenHeight]bool

// Pixel reports whether the pixel at x, y is lit. Coordinates wrap around the
// screen edges the same way sprites do.
func (d *Display) Pixel(x, y int) bool {
	x = ((x % ScreenWidth) + ScreenWidth) % ScreenWidth
	y = ((y % ScreenHeight) + ScreenHeight) % ScreenHeight
	return d[y*ScreenWidth+x]
}

// String draws the screen as ASCII art inside a box, '*' for a lit pixel.
func (d *Display) String() string {
	var sb strings.Builder
	border := "+" + strings.Repeat("-", ScreenWidth) + "+\n"

	sb.WriteString(border)
	for y := range ScreenHeight {
		sb.WriteByte('|')
		for _, px := range d[y*ScreenWidth : (y+1)*ScreenWidth] {
			if px {
				sb.WriteByte('*')
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("|\n")
	}
	sb.WriteString(border)

	return sb.String()
}

func (d *Display) clear() {
	*d = Display{}
}

// drawSprite XORs the sprite onto the screen with its top-left corner at x, y.
//
// Each byte of the sprite is one row, and the highest bit of a row is its leftmost
// pixel. Pixels that fall past an edge of the screen wrap around to the opposite edge.
//
// drawSprite returns true if any lit pixel was switched off.
func (d *Display) drawSprite(sprite []byte, x, y byte) bool {
	var occluded bool
	for row, spriteByte := range sprite {
		yOffset := (int(y) + row) % ScreenHeight
		for col := range 8 {
			if spriteByte&(0x80>>col) == 0 {
				continue
			}
			xOffset := (int(x) + col) % ScreenWidth
			offset := yOffset*ScreenWidth + xOffset
			if d[offset] {
				occluded = true
			}
			d[offset] = !d[offset]
		}
	}
	return occluded
}
