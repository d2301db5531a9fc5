package systems

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/flappy/components"
	"github.com/pthm-cable/flappy/config"
	"github.com/pthm-cable/flappy/sprites"
)

func testGeometry(t *testing.T) *PipeGeometry {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading default config: %v", err)
	}
	geo := PipeGeometryFromConfig(cfg, 104, 640)
	return &geo
}

func TestNewPipeInvariant(t *testing.T) {
	geo := testGeometry(t)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 2000; i++ {
		p := NewPipe(700, geo, rng)
		if p.Bottom-p.Top != geo.Gap+float64(geo.TopHeight) {
			t.Fatalf("bottom-top = %v, want %v", p.Bottom-p.Top, geo.Gap+float64(geo.TopHeight))
		}
		if p.Height < 50 || p.Height >= 450 {
			t.Fatalf("height %v outside [50, 450)", p.Height)
		}
		if p.Passed {
			t.Fatal("new pipe should not be passed")
		}
	}
}

func TestPipeMoveIsTranslation(t *testing.T) {
	geo := testGeometry(t)
	rng := rand.New(rand.NewSource(2))

	for _, n := range []int{0, 1, 17, 140} {
		p := NewPipe(700, geo, rng)
		height, top, bottom := p.Height, p.Top, p.Bottom
		for i := 0; i < n; i++ {
			p.Move()
		}
		if p.X != 700-5*float64(n) {
			t.Errorf("after %d moves x = %v, want %v", n, p.X, 700-5*float64(n))
		}
		if p.Height != height || p.Top != top || p.Bottom != bottom {
			t.Errorf("after %d moves vertical geometry changed", n)
		}
	}
}

func TestPipeOffScreen(t *testing.T) {
	geo := testGeometry(t)
	p := &Pipe{geo: geo}
	p.SetHeight(200)

	p.X = -104
	if p.OffScreen() {
		t.Error("pipe with right edge at 0 should still be on screen")
	}
	p.X = -105
	if !p.OffScreen() {
		t.Error("pipe with right edge at -1 should be off screen")
	}
}

func testSheet(t *testing.T) *sprites.Sheet {
	t.Helper()
	s, err := sprites.Load("", 2, 600, 900)
	if err != nil {
		t.Fatalf("loading sprites: %v", err)
	}
	return s
}

func TestColliders(t *testing.T) {
	sheet := testSheet(t)
	geo := testGeometry(t)
	mask := NewMaskCollider(sheet)
	box := NewBoxCollider(sheet)

	tests := []struct {
		name    string
		birdY   float64
		pipeX   float64
		height  float64
		wantHit bool
	}{
		{"far right", 350, 400, 200, false},
		{"inside gap", 250, 230, 200, false},
		{"into bottom pipe", 350, 230, 200, true},
		{"into top pipe", 150, 230, 200, true},
		{"above screen still hits top pipe", -40, 230, 200, true},
		{"scrolled past", 350, 100, 200, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &components.Bird{X: 230, Y: tt.birdY}
			p := &Pipe{X: tt.pipeX, geo: geo}
			p.SetHeight(tt.height)

			if got := mask.Collide(b, 0, p); got != tt.wantHit {
				t.Errorf("mask collide = %v, want %v", got, tt.wantHit)
			}
			if got := box.Collide(b, 0, p); got != tt.wantHit {
				t.Errorf("box collide = %v, want %v", got, tt.wantHit)
			}
		})
	}
}

func TestBoxIsSupersetOfMask(t *testing.T) {
	sheet := testSheet(t)
	geo := testGeometry(t)
	mask := NewMaskCollider(sheet)
	box := NewBoxCollider(sheet)

	for frame := 0; frame < sprites.BirdFrames; frame++ {
		for dx := -110; dx <= 70; dx += 3 {
			for y := 130.0; y <= 380; y += 2.5 {
				b := &components.Bird{X: 230, Y: y}
				p := &Pipe{X: 230 + float64(dx), geo: geo}
				p.SetHeight(200)

				if mask.Collide(b, frame, p) && !box.Collide(b, frame, p) {
					t.Fatalf("frame %d dx %d y %v: mask hit without box hit", frame, dx, y)
				}
			}
		}
	}
}

func TestMaskIgnoresTransparentCorner(t *testing.T) {
	sheet := testSheet(t)
	geo := testGeometry(t)

	// Bottom pipe lip overlaps only the bird's bottom-right 2x2 pixels,
	// which are transparent in every frame.
	b := &components.Bird{X: 230, Y: 300}
	p := &Pipe{X: 230 + 66, geo: geo}
	p.SetHeight(300 + 46 - geo.Gap)

	if !NewBoxCollider(sheet).Collide(b, 0, p) {
		t.Fatal("box collider should report the corner overlap")
	}
	if NewMaskCollider(sheet).Collide(b, 0, p) {
		t.Error("mask collider should ignore transparent pixels")
	}
}

func TestNewCollider(t *testing.T) {
	sheet := testSheet(t)
	if _, err := NewCollider("mask", sheet); err != nil {
		t.Errorf("mask: %v", err)
	}
	if _, err := NewCollider("box", sheet); err != nil {
		t.Errorf("box: %v", err)
	}
	if _, err := NewCollider("polygon", sheet); err == nil {
		t.Error("expected error for unknown mode")
	}
}
