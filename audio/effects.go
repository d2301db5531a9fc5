// Package audio plays short synthesised sound effects for game events.
package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// Sound identifies a sound effect.
type Sound int

const (
	SoundFlap Sound = iota
	SoundScore
	SoundCrash
)

func (s Sound) String() string {
	switch s {
	case SoundFlap:
		return "flap"
	case SoundScore:
		return "score"
	case SoundCrash:
		return "crash"
	default:
		return "unknown"
	}
}

const (
	flapDuration  = 40 * time.Millisecond
	noteDuration  = 70 * time.Millisecond
	crashDuration = 180 * time.Millisecond
	attack        = 5 * time.Millisecond
)

// tone is a sine wave of freq shaped by a short attack and a release over
// the remaining duration.
func tone(rate beep.SampleRate, freq float64, d time.Duration) beep.Streamer {
	sine, err := generators.SineTone(rate, freq)
	if err != nil {
		// freq above the Nyquist limit of rate
		return beep.Silence(rate.N(d))
	}
	return newEnvelope(beep.Take(rate.N(d), sine), rate.N(d), rate.N(attack))
}

// envelope fades a stream in over attack samples and linearly out to the end.
type envelope struct {
	streamer beep.Streamer
	pos      int
	total    int
	attack   int
}

func newEnvelope(s beep.Streamer, total, attack int) beep.Streamer {
	return &envelope{streamer: s, total: total, attack: attack}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		vol := 1.0
		if e.pos < e.attack {
			vol = float64(e.pos) / float64(e.attack)
		} else if e.total > e.attack {
			vol = float64(e.total-e.pos) / float64(e.total-e.attack)
		}
		vol = math.Max(vol, 0)
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// noise is a decaying burst of white noise over a low thump.
type noise struct {
	rate beep.SampleRate
	pos  int
	n    int
	rng  *rand.Rand
}

func (g *noise) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if g.pos >= g.n {
			return i, i > 0
		}
		t := float64(g.pos) / float64(g.rate)
		env := math.Exp(-t * 20)
		v := env * (0.4*(g.rng.Float64()*2-1) + 0.6*math.Sin(2*math.Pi*70*t))
		samples[i][0] = v
		samples[i][1] = v
		g.pos++
	}
	return len(samples), true
}

func (g *noise) Err() error { return nil }

// newVolume scales a stream linearly; zero or less is silent.
// math.Log2(0) is -Inf, so zero gets the Silent flag instead.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// Effect builds a fresh streamer for the sound at the given linear volume.
func Effect(s Sound, rate beep.SampleRate, vol float64, rng *rand.Rand) beep.Streamer {
	var st beep.Streamer
	switch s {
	case SoundFlap:
		st = tone(rate, 660, flapDuration)
	case SoundScore:
		// B5 then E6
		st = beep.Seq(tone(rate, 987.77, noteDuration), tone(rate, 1318.51, noteDuration))
	case SoundCrash:
		st = &noise{rate: rate, n: rate.N(crashDuration), rng: rng}
	default:
		return nil
	}
	return newVolume(st, vol)
}
