package audio

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/pthm-cable/flappy/config"
	"github.com/pthm-cable/flappy/game"
)

// maxVoices caps the sounds mixed at once so large populations do not
// stack hundreds of flaps.
const maxVoices = 8

// SoundManager plays the sound effects of presented frames. It implements
// game.Presenter and is a no-op until Initialize succeeds.
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	rate        beep.SampleRate
	volume      float64
	rng         *rand.Rand
	initialized bool
	played      map[Sound]int
}

// NewSoundManager creates a sound manager from the audio config.
func NewSoundManager(cfg config.AudioConfig) *SoundManager {
	return &SoundManager{
		mixer:  &beep.Mixer{},
		rate:   beep.SampleRate(cfg.SampleRate),
		volume: cfg.Volume,
		rng:    rand.New(rand.NewSource(1)),
		played: make(map[Sound]int),
	}
}

// Initialize opens the speaker and starts the mixer.
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if err := speaker.Init(sm.rate, sm.rate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("initializing speaker: %w", err)
	}
	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Close stops all sounds and releases the speaker.
func (sm *SoundManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	sm.initialized = false
}

// SoundsFor lists the effects a frame's events call for, at most one of each
// kind per frame. Crashes win over passes, passes over flaps.
func SoundsFor(ev game.Events) []Sound {
	var out []Sound
	if ev.Crashes > 0 || ev.Falls > 0 {
		out = append(out, SoundCrash)
	}
	if ev.Passes > 0 {
		out = append(out, SoundScore)
	}
	if ev.Jumps > 0 {
		out = append(out, SoundFlap)
	}
	return out
}

// Play mixes one effect in. Effects beyond maxVoices are dropped.
func (sm *SoundManager) Play(s Sound) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.played[s]++
	if !sm.initialized {
		return
	}
	st := Effect(s, sm.rate, sm.volume, sm.rng)
	if st == nil {
		return
	}

	speaker.Lock()
	if sm.mixer.Len() < maxVoices {
		sm.mixer.Add(st)
	}
	speaker.Unlock()
}

// Played returns how many times each sound was requested.
func (sm *SoundManager) Played(s Sound) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.played[s]
}

// Present implements game.Presenter.
func (sm *SoundManager) Present(_ context.Context, f *game.Frame) error {
	for _, s := range SoundsFor(f.Events) {
		sm.Play(s)
	}
	return nil
}
