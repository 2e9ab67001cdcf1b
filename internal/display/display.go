// Package display drives the scrolling LED matrix.
package display

import "time"

// Effect is the animation used to show a text.
type Effect int

const (
	// EffectScrollLeft scrolls the text in from the right edge, pauses at its
	// aligned position, then scrolls it out past the left edge.
	EffectScrollLeft Effect = iota
	// EffectPrint shows the text immediately and holds it for the pause.
	EffectPrint
)

func (e Effect) String() string {
	switch e {
	case EffectScrollLeft:
		return "scroll-left"
	case EffectPrint:
		return "print"
	default:
		return "unknown"
	}
}

// Alignment positions the text on the matrix while it is held.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// Driver renders text on a display.
//
// Render is fire-and-forget: it replaces whatever animation is running.
// speed is the delay between animation frames, pause how long the text is
// held once in place. Animate advances the running animation and returns true
// exactly once, on the call where that animation finishes.
type Driver interface {
	Render(text string, align Alignment, speed, pause time.Duration, effect Effect)
	Animate() bool
}
