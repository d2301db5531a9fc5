package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/flappy/components"
	"github.com/pthm-cable/flappy/config"
)

func testFlight(t *testing.T) Flight {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading default config: %v", err)
	}
	return FlightFromConfig(cfg)
}

func TestMoveFreeFall(t *testing.T) {
	f := testFlight(t)
	b := &components.Bird{X: 230, Y: 350, Height: 350}

	// 1.5t² until the terminal clamp kicks in at t=4
	want := []float64{351.5, 357.5, 371, 387, 403, 419}
	for i, w := range want {
		Move(b, f)
		if math.Abs(b.Y-w) > 1e-9 {
			t.Fatalf("tick %d: y = %v, want %v", i+1, b.Y, w)
		}
	}
}

func TestMoveAfterJump(t *testing.T) {
	f := testFlight(t)
	b := &components.Bird{X: 230, Y: 350, Height: 350}
	Jump(b, f)

	tests := []struct {
		wantD    float64
		wantY    float64
		wantTilt float64
	}{
		{-11, 339, 25}, // -10.5 + 1.5 - 2
		{-17, 322, 25}, // -21 + 6 - 2
		{-18, 304, 25}, // -18 clamped to -16, then -2
		{-18, 286, 25}, // -18 clamped to -16, then -2
		{-17, 269, 25}, // -15 - 2
		{-11, 258, 25}, // -9 - 2
		{0, 258, 25},   // apex
		{12, 270, 25},  // falling but still above height+50
	}

	for i, tt := range tests {
		d := Move(b, f)
		if math.Abs(d-tt.wantD) > 1e-9 {
			t.Errorf("tick %d: displacement = %v, want %v", i+1, d, tt.wantD)
		}
		if math.Abs(b.Y-tt.wantY) > 1e-9 {
			t.Errorf("tick %d: y = %v, want %v", i+1, b.Y, tt.wantY)
		}
		if b.Tilt != tt.wantTilt {
			t.Errorf("tick %d: tilt = %v, want %v", i+1, b.Tilt, tt.wantTilt)
		}
	}
}

func TestJumpResetsState(t *testing.T) {
	f := testFlight(t)
	b := &components.Bird{X: 230, Y: 412.5, Vel: 3, TickCount: 17, Height: 100}
	Jump(b, f)

	if b.Vel != -10.5 {
		t.Errorf("Vel = %v, want -10.5", b.Vel)
	}
	if b.TickCount != 0 {
		t.Errorf("TickCount = %d, want 0", b.TickCount)
	}
	if b.Height != 412.5 {
		t.Errorf("Height = %v, want 412.5", b.Height)
	}
}

func TestDisplacementTerminalClamp(t *testing.T) {
	f := testFlight(t)

	for _, vel := range []float64{0, -10.5, 5, -100} {
		for tick := 0; tick <= 100000; tick += 7 {
			d := f.Displacement(vel, tick)
			if math.Abs(d) > f.TerminalVelocity {
				t.Fatalf("Displacement(%v, %d) = %v exceeds %v", vel, tick, d, f.TerminalVelocity)
			}
		}
	}
}

func TestTiltStaysInRange(t *testing.T) {
	f := testFlight(t)
	rng := rand.New(rand.NewSource(7))
	b := &components.Bird{X: 230, Y: 350, Height: 350}

	for i := 0; i < 5000; i++ {
		if rng.Float64() < 0.08 {
			Jump(b, f)
		}
		Move(b, f)
		if b.Tilt < f.MinRotation || b.Tilt > f.MaxRotation {
			t.Fatalf("tick %d: tilt %v outside [%v, %v]", i, b.Tilt, f.MinRotation, f.MaxRotation)
		}
		// keep the bird in a sane band so both branches are exercised
		if b.Y > 2000 {
			b.Y = 350
			Jump(b, f)
		}
	}
}

func TestTiltFloor(t *testing.T) {
	f := testFlight(t)
	b := &components.Bird{X: 230, Y: 350, Height: 350, Tilt: 25}

	for i := 0; i < 40; i++ {
		Move(b, f)
	}
	if b.Tilt != f.MinRotation {
		t.Errorf("after long fall tilt = %v, want %v", b.Tilt, f.MinRotation)
	}
}

func TestFlapCycle(t *testing.T) {
	w := &components.Wings{}
	want := []int{
		0, 0, 0, 0, 0,
		1, 1, 1, 1, 1,
		2, 2, 2, 2, 2,
		1, 1, 1, 1, 1,
		0, // wraps
		0,
	}
	for i, frame := range want {
		Flap(w, 0, 5)
		if w.Frame != frame {
			t.Fatalf("tick %d: frame = %d, want %d", i+1, w.Frame, frame)
		}
	}
}

func TestFlapDiveHoldsWings(t *testing.T) {
	w := &components.Wings{}
	Flap(w, -85, 5)
	if w.Frame != 1 || w.Count != 10 {
		t.Errorf("dive: frame=%d count=%d, want frame=1 count=10", w.Frame, w.Count)
	}
}

func TestGroundWraps(t *testing.T) {
	g := NewGround(730, 672, 5)
	for i := 0; i < 1000; i++ {
		g.Move()
		if g.X1+g.Width < 0 || g.X2+g.Width < 0 {
			t.Fatalf("tick %d: segment left on screen edge: x1=%v x2=%v", i, g.X1, g.X2)
		}
		if math.Abs(math.Abs(g.X1-g.X2)-g.Width) > 5 {
			t.Fatalf("tick %d: segments drifted apart: x1=%v x2=%v", i, g.X1, g.X2)
		}
	}
}
