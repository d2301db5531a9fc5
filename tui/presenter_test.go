package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/flappy/game"
	"github.com/pthm-cable/flappy/neural"
)

func newTestPresenter(t *testing.T) (*Presenter, tcell.SimulationScreen) {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("init simulation screen: %v", err)
	}
	s.SetSize(60, 41)

	p := New(s, Options{
		WorldWidth:       600,
		WorldHeight:      800,
		BirdWidth:        68,
		BirdHeight:       48,
		PipeWidth:        104,
		FrameInterval:    time.Millisecond,
		StepsPerFrame:    2,
		MaxStepsPerFrame: 5,
	})
	t.Cleanup(p.Close)
	return p, s
}

func testFrame() *game.Frame {
	return &game.Frame{
		Score:  3,
		Alive:  1,
		Birds:  []game.BirdView{{X: 230, Y: 350}},
		Pipes:  []game.PipeView{{X: 400, Height: 200, Top: -440, Bottom: 360}},
		Ground: game.GroundView{Y: 730, X1: 0, X2: 672},
	}
}

// presentUntil presents frames until the presenter returns an error or the
// attempts run out; injected events reach it asynchronously.
func presentUntil(p *Presenter, f *game.Frame, attempts int) error {
	for i := 0; i < attempts; i++ {
		if err := p.Present(context.Background(), f); err != nil {
			return err
		}
	}
	return nil
}

func TestPresenterDrawsFrame(t *testing.T) {
	p, s := newTestPresenter(t)
	if err := p.Present(context.Background(), testFrame()); err != nil {
		t.Fatalf("Present failed: %v", err)
	}

	// Bird centre (264, 374) maps to column 26, row 1+18
	r, _, _, _ := s.GetContent(26, 19)
	if r != birdGlyph {
		t.Errorf("cell (26,19) = %q, want bird", r)
	}
	// Pipe column inside the top pipe
	if r, _, _, _ := s.GetContent(45, 5); r != pipeGlyph {
		t.Errorf("cell (45,5) = %q, want pipe", r)
	}
	// Gap between the pipes is empty
	if r, _, _, _ := s.GetContent(45, 15); r == pipeGlyph {
		t.Error("gap row drawn as pipe")
	}
	// Ground from row 1+36 down
	if r, _, _, _ := s.GetContent(0, 38); r != baseGlyph {
		t.Errorf("cell (0,38) = %q, want ground", r)
	}
}

func TestPresenterSpeciesColors(t *testing.T) {
	c := neural.ColorForSpecies(4)
	tinted := tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	plain, _, _ := styleBird.Decompose()

	tests := []struct {
		name string
		on   bool
		want tcell.Color
	}{
		{"enabled", true, tinted},
		{"disabled", false, plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, s := newTestPresenter(t)
			p.opts.SpeciesColors = tt.on

			f := testFrame()
			f.Birds[0].Species = 4
			if err := p.Present(context.Background(), f); err != nil {
				t.Fatalf("Present failed: %v", err)
			}

			r, _, style, _ := s.GetContent(26, 19)
			if r != birdGlyph {
				t.Fatalf("cell (26,19) = %q, want bird", r)
			}
			if fg, _, _ := style.Decompose(); fg != tt.want {
				t.Errorf("bird foreground = %v, want %v", fg, tt.want)
			}
		})
	}
}

func TestPresenterQuitKeys(t *testing.T) {
	tests := []struct {
		name string
		key  tcell.Key
		r    rune
	}{
		{"q", tcell.KeyRune, 'q'},
		{"escape", tcell.KeyEscape, 0},
		{"ctrl-c", tcell.KeyCtrlC, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, s := newTestPresenter(t)
			s.InjectKey(tt.key, tt.r, tcell.ModNone)

			err := presentUntil(p, testFrame(), 500)
			if !errors.Is(err, game.ErrQuit) {
				t.Errorf("Present error = %v, want ErrQuit", err)
			}
		})
	}
}

func TestPresenterPauseAndSpeed(t *testing.T) {
	p, _ := newTestPresenter(t)
	if p.StepsPerFrame() != 2 {
		t.Fatalf("steps = %d, want 2", p.StepsPerFrame())
	}

	for _, r := range []rune{'+', '+', '+', '+'} {
		if err := p.handle(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)); err != nil {
			t.Fatal(err)
		}
	}
	if p.StepsPerFrame() != 5 {
		t.Errorf("steps = %d, want clamp at 5", p.StepsPerFrame())
	}

	if err := p.handle(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone)); err != nil {
		t.Fatal(err)
	}
	if p.StepsPerFrame() != 0 {
		t.Error("paused presenter should step zero ticks")
	}
}

func TestPresenterCancelled(t *testing.T) {
	p, _ := newTestPresenter(t)
	p.ticker.Reset(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Present(ctx, testFrame()); !errors.Is(err, context.Canceled) {
		t.Errorf("Present error = %v, want context.Canceled", err)
	}
}
