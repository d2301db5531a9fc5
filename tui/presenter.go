// Package tui renders generations as coloured characters in a terminal.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/flappy/game"
	"github.com/pthm-cable/flappy/neural"
)

const (
	birdGlyph = '@'
	pipeGlyph = '█'
	baseGlyph = '▀'
	lineGlyph = '·'
)

var (
	styleSky   = tcell.StyleDefault.Background(tcell.ColorBlack)
	stylePipe  = tcell.StyleDefault.Foreground(tcell.ColorGreen).Background(tcell.ColorBlack)
	styleBase  = tcell.StyleDefault.Foreground(tcell.ColorOlive).Background(tcell.ColorBlack)
	styleBird  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Background(tcell.ColorBlack).Bold(true)
	styleLine  = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorBlack)
	styleHUD   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack).Bold(true)
	styleHint  = tcell.StyleDefault.Foreground(tcell.ColorGray).Background(tcell.ColorBlack)
	stylePause = tcell.StyleDefault.Foreground(tcell.ColorYellow).Background(tcell.ColorBlack)
)

// Options configures the terminal presenter.
type Options struct {
	WorldWidth, WorldHeight float64 // play area mapped onto the terminal
	BirdWidth, BirdHeight   float64
	PipeWidth               float64
	FrameInterval           time.Duration
	StepsPerFrame           int
	MaxStepsPerFrame        int
	DrawLines               bool
	SpeciesColors           bool
}

// Presenter draws frames with tcell and paces them with a ticker. Esc,
// Ctrl-C and q quit; space pauses; + and - change the speed; l toggles
// sight lines; c toggles species colours.
type Presenter struct {
	screen tcell.Screen
	opts   Options
	ticker *time.Ticker
	events chan tcell.Event
	done   chan struct{}

	steps  int
	paused bool
}

// Open initialises the terminal and starts polling it for input.
func Open(opts Options) (*Presenter, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initializing screen: %w", err)
	}
	return New(screen, opts), nil
}

// New wraps an initialised screen.
func New(screen tcell.Screen, opts Options) *Presenter {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = 16 * time.Millisecond
	}
	if opts.MaxStepsPerFrame < 1 {
		opts.MaxStepsPerFrame = 1
	}
	p := &Presenter{
		screen: screen,
		opts:   opts,
		ticker: time.NewTicker(opts.FrameInterval),
		events: make(chan tcell.Event, 100),
		done:   make(chan struct{}),
		steps:  min(max(opts.StepsPerFrame, 1), opts.MaxStepsPerFrame),
	}
	screen.HideCursor()
	screen.SetStyle(styleSky)
	go p.poll()
	return p
}

func (p *Presenter) poll() {
	for {
		ev := p.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case p.events <- ev:
		case <-p.done:
			return
		}
	}
}

// Close restores the terminal.
func (p *Presenter) Close() {
	close(p.done)
	p.ticker.Stop()
	p.screen.Fini()
}

// StepsPerFrame implements game.Pacer.
func (p *Presenter) StepsPerFrame() int {
	if p.paused {
		return 0
	}
	return p.steps
}

// Present implements game.Presenter. It handles pending input, draws the
// frame and waits for the next tick of the frame clock.
func (p *Presenter) Present(ctx context.Context, f *game.Frame) error {
	for pending := true; pending; {
		select {
		case ev := <-p.events:
			if err := p.handle(ev); err != nil {
				return err
			}
		default:
			pending = false
		}
	}

	p.draw(f)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ticker.C:
		return nil
	}
}

func (p *Presenter) handle(ev tcell.Event) error {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return game.ErrQuit
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return game.ErrQuit
			case ' ':
				p.paused = !p.paused
			case '+', '=':
				p.steps = min(p.steps+1, p.opts.MaxStepsPerFrame)
			case '-':
				p.steps = max(p.steps-1, 1)
			case 'l':
				p.opts.DrawLines = !p.opts.DrawLines
			case 'c':
				p.opts.SpeciesColors = !p.opts.SpeciesColors
			}
		}
	case *tcell.EventResize:
		p.screen.Sync()
	}
	return nil
}

// grid maps world coordinates onto terminal cells below the HUD line.
type grid struct {
	cols, rows int
	sx, sy     float64
}

func (g grid) col(x float64) int { return int(x * g.sx) }
func (g grid) row(y float64) int { return 1 + int(y*g.sy) }

func (p *Presenter) draw(f *game.Frame) {
	s := p.screen
	s.Clear()

	cols, rows := s.Size()
	if cols < 10 || rows < 5 {
		s.Show()
		return
	}
	g := grid{
		cols: cols,
		rows: rows,
		sx:   float64(cols) / p.opts.WorldWidth,
		sy:   float64(rows-1) / p.opts.WorldHeight,
	}

	for _, pipe := range f.Pipes {
		p.drawPipe(g, pipe)
	}

	groundRow := g.row(f.Ground.Y)
	for x := 0; x < cols; x++ {
		for y := groundRow; y < rows; y++ {
			s.SetContent(x, y, baseGlyph, nil, styleBase)
		}
	}

	for _, b := range f.Birds {
		if p.opts.DrawLines && f.Active < len(f.Pipes) {
			p.drawSightLines(g, b, f.Pipes[f.Active])
		}
		style := styleBird
		if p.opts.SpeciesColors {
			c := neural.ColorForSpecies(b.Species)
			style = style.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
		}
		p.set(g, g.col(b.X+p.opts.BirdWidth/2), g.row(b.Y+p.opts.BirdHeight/2), birdGlyph, style)
	}

	hud := fmt.Sprintf("Score: %d  Gens: %d  Alive: %d  Speed: %dx", f.Score, f.Generation, f.Alive, p.steps)
	p.text(0, 0, hud, styleHUD)
	if p.paused {
		p.text(len(hud)+2, 0, "PAUSED", stylePause)
	}
	p.text(0, rows-1, "q quit  space pause  +/- speed  l lines  c colours", styleHint)

	s.Show()
}

func (p *Presenter) drawPipe(g grid, pipe game.PipeView) {
	x0 := g.col(pipe.X)
	x1 := g.col(pipe.X + p.opts.PipeWidth)
	gapTop := g.row(pipe.Height)
	gapBottom := g.row(pipe.Bottom)
	for x := x0; x < x1; x++ {
		for y := 1; y < g.rows; y++ {
			if y >= gapTop && y < gapBottom {
				continue
			}
			p.set(g, x, y, pipeGlyph, stylePipe)
		}
	}
}

// drawSightLines samples the segments from the bird centre to both gap edges.
func (p *Presenter) drawSightLines(g grid, b game.BirdView, pipe game.PipeView) {
	cx, cy := b.X+p.opts.BirdWidth/2, b.Y+p.opts.BirdHeight/2
	tx := pipe.X + p.opts.PipeWidth/2
	for _, ty := range []float64{pipe.Height, pipe.Bottom} {
		n := max(abs(g.col(tx)-g.col(cx)), abs(g.row(ty)-g.row(cy)), 1)
		for i := 1; i < n; i++ {
			t := float64(i) / float64(n)
			p.set(g, g.col(cx+(tx-cx)*t), g.row(cy+(ty-cy)*t), lineGlyph, styleLine)
		}
	}
}

func (p *Presenter) set(g grid, x, y int, r rune, style tcell.Style) {
	if x < 0 || x >= g.cols || y < 1 || y >= g.rows {
		return
	}
	p.screen.SetContent(x, y, r, nil, style)
}

func (p *Presenter) text(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		p.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
