package systems

import (
	"github.com/pthm-cable/flappy/components"
)

// DiveTilt is the tilt at or below which the wings are held level.
const DiveTilt = -80

// Flap advances the wing animation one tick. The cycle is
// frame 0, 1, 2, 1 with each frame held for animTime ticks.
func Flap(w *components.Wings, tilt float64, animTime int) {
	w.Count++

	switch {
	case w.Count <= animTime:
		w.Frame = 0
	case w.Count <= animTime*2:
		w.Frame = 1
	case w.Count <= animTime*3:
		w.Frame = 2
	case w.Count <= animTime*4:
		w.Frame = 1
	case w.Count == animTime*4+1:
		w.Frame = 0
		w.Count = 0
	}

	if tilt <= DiveTilt {
		w.Frame = 1
		w.Count = animTime * 2
	}
}
