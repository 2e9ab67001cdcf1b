package display

import (
	"image/color"
	"log"
	"math"
	"time"

	"code.cloudfoundry.org/clock"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

var _ drivers.Displayer = (*Frame)(nil)

var (
	ledOn  = color.RGBA{R: 0xff, A: 0xff}
	ledOff = color.RGBA{A: 0xff}
)

type phase int

const (
	phaseIdle phase = iota
	phaseScrollIn
	phaseHold
	phaseScrollOut
)

// Matrix is a software LED matrix: text is rasterised with tinyfont onto any
// drivers.Displayer and animated in steps paced by the clock.
type Matrix struct {
	display  drivers.Displayer
	font     tinyfont.Fonter
	clock    clock.Clock
	baseline int16

	text      string
	textWidth int16
	align     Alignment
	speed     time.Duration
	pause     time.Duration
	effect    Effect

	x      int16 // left edge of the text
	target int16 // x where the text is held
	phase  phase
	due    time.Time
}

// NewMatrix creates a Matrix drawing on d with the TomThumb font, which fits
// the 8-row panels.
func NewMatrix(d drivers.Displayer, clk clock.Clock) *Matrix {
	if clk == nil {
		clk = clock.NewClock()
	}
	_, h := d.Size()
	return &Matrix{
		display:  d,
		font:     &tinyfont.TomThumb,
		clock:    clk,
		baseline: h - 2,
	}
}

// Render replaces the running animation with text.
func (m *Matrix) Render(text string, align Alignment, speed, pause time.Duration, effect Effect) {
	_, outbox := tinyfont.LineWidth(m.font, text)
	if outbox > math.MaxInt16 {
		outbox = math.MaxInt16
	}

	m.text = text
	m.textWidth = int16(outbox)
	m.align = align
	m.speed = speed
	m.pause = pause
	m.effect = effect
	m.target = m.alignedX()

	now := m.clock.Now()
	switch effect {
	case EffectPrint:
		m.x = m.target
		m.phase = phaseHold
		m.due = now.Add(pause)
	default:
		w, _ := m.display.Size()
		m.x = w
		m.phase = phaseScrollIn
		m.due = now.Add(speed)
	}
	m.draw()
}

// Animate advances the animation by as many steps as are due.
func (m *Matrix) Animate() bool {
	if m.phase == phaseIdle {
		return false
	}

	now := m.clock.Now()
	moved := false
	for m.phase != phaseIdle && !now.Before(m.due) {
		switch m.phase {
		case phaseScrollIn:
			m.x--
			moved = true
			if m.x <= m.target {
				m.x = m.target
				m.phase = phaseHold
				m.due = m.due.Add(m.pause)
			} else {
				m.due = m.due.Add(m.speed)
			}
		case phaseHold:
			if m.effect == EffectPrint {
				m.phase = phaseIdle
				break
			}
			m.phase = phaseScrollOut
			m.due = m.due.Add(m.speed)
		case phaseScrollOut:
			m.x--
			moved = true
			if m.x+m.textWidth <= 0 {
				m.phase = phaseIdle
			} else {
				m.due = m.due.Add(m.speed)
			}
		}
	}

	if moved {
		m.draw()
	}
	return m.phase == phaseIdle
}

// Text returns the text of the current or last animation.
func (m *Matrix) Text() string {
	return m.text
}

func (m *Matrix) alignedX() int16 {
	w, _ := m.display.Size()
	switch m.align {
	case AlignCenter:
		return (w - m.textWidth) / 2
	case AlignRight:
		return w - m.textWidth
	default:
		return 0
	}
}

// draw blanks the whole panel and writes the text at its current x. Only
// SetPixel is used, so any drivers.Displayer gets a clean frame.
func (m *Matrix) draw() {
	w, h := m.display.Size()
	for y := int16(0); y < h; y++ {
		for x := int16(0); x < w; x++ {
			m.display.SetPixel(x, y, ledOff)
		}
	}
	tinyfont.WriteLine(m.display, m.font, m.x, m.baseline, m.text, ledOn)
	if err := m.display.Display(); err != nil {
		log.Printf("display: write frame: %v", err)
	}
}
