package display

import (
	"fmt"
	"image/color"
	"io"
	"strings"
)

// Frame is a one-bit framebuffer for a matrix of width x height LEDs. It
// implements drivers.Displayer so tinyfont can draw on it; Display writes the
// frame to out as rows of lit and unlit dots.
type Frame struct {
	width, height int16
	pixels        []bool

	out    io.Writer
	redraw bool // move the cursor back up before each frame after the first
	shown  bool
}

// NewFrame creates a blank framebuffer. When redraw is set, frames overwrite
// each other in place on an ANSI terminal.
func NewFrame(width, height int16, out io.Writer, redraw bool) *Frame {
	return &Frame{
		width:  width,
		height: height,
		pixels: make([]bool, int(width)*int(height)),
		out:    out,
		redraw: redraw,
	}
}

// Size returns the matrix dimensions.
func (f *Frame) Size() (x, y int16) {
	return f.width, f.height
}

// SetPixel lights the LED at (x, y) for any non-black colour. Coordinates
// outside the matrix are ignored.
func (f *Frame) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return
	}
	f.pixels[int(y)*int(f.width)+int(x)] = c.R != 0 || c.G != 0 || c.B != 0
}

// Lit reports whether the LED at (x, y) is on.
func (f *Frame) Lit(x, y int16) bool {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return false
	}
	return f.pixels[int(y)*int(f.width)+int(x)]
}

// Rows returns the frame as text, one string per matrix row.
func (f *Frame) Rows() []string {
	rows := make([]string, f.height)
	var b strings.Builder
	for y := int16(0); y < f.height; y++ {
		b.Reset()
		for x := int16(0); x < f.width; x++ {
			if f.Lit(x, y) {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		rows[y] = b.String()
	}
	return rows
}

// Display writes the current frame.
func (f *Frame) Display() error {
	if f.out == nil {
		return nil
	}
	var b strings.Builder
	if f.redraw && f.shown {
		fmt.Fprintf(&b, "\x1b[%dA", f.height)
	}
	for _, row := range f.Rows() {
		b.WriteString(row)
		b.WriteByte('\n')
	}
	f.shown = true
	_, err := io.WriteString(f.out, b.String())
	return err
}
