package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase is one timed section of a generation step.
type Phase int

const (
	PhaseFlight    Phase = iota // reward, move, decide, jump
	PhasePipes                  // scroll, collide, pass
	PhaseCleanup                // pipe removal, bounds retirement
	PhaseAnimation              // wing frames
	numPhases
)

var phaseNames = [numPhases]string{"flight", "pipes", "cleanup", "animation"}

func (p Phase) String() string {
	if p < 0 || p >= numPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// Phases returns the step phases in execution order.
func Phases() []Phase {
	out := make([]Phase, numPhases)
	for i := range out {
		out[i] = Phase(i)
	}
	return out
}

// PerfCollector keeps step timings over a rolling window of ticks.
// All methods are no-ops on a nil collector.
type PerfCollector struct {
	ticks  []time.Duration
	phases [][numPhases]time.Duration
	next   int
	filled int

	current    [numPhases]time.Duration
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	timing     bool // a phase is open

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector creates a collector averaging over window ticks.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{
		ticks:  make([]time.Duration, window),
		phases: make([][numPhases]time.Duration, window),
	}
}

// StartTick begins timing a step.
func (p *PerfCollector) StartTick() {
	if p == nil {
		return
	}
	p.tickStart = time.Now()
	p.current = [numPhases]time.Duration{}
	p.timing = false
}

// StartPhase closes the open phase, if any, and opens ph.
func (p *PerfCollector) StartPhase(ph Phase) {
	if p == nil || ph < 0 || ph >= numPhases {
		return
	}
	now := time.Now()
	p.closePhase(now)
	p.phase, p.phaseStart, p.timing = ph, now, true
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.timing {
		p.current[p.phase] += now.Sub(p.phaseStart)
		p.timing = false
	}
}

// EndTick closes the step and stores it in the window.
func (p *PerfCollector) EndTick() {
	if p == nil {
		return
	}
	now := time.Now()
	p.closePhase(now)

	p.ticks[p.next] = now.Sub(p.tickStart)
	p.phases[p.next] = p.current
	p.next = (p.next + 1) % len(p.ticks)
	if p.filled < len(p.ticks) {
		p.filled++
	}
}

// RecordFrame marks a presented frame; the gap to the previous one is the frame time.
func (p *PerfCollector) RecordFrame() {
	if p == nil {
		return
	}
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats summarises the window.
type PerfStats struct {
	AvgTick time.Duration
	MinTick time.Duration
	MaxTick time.Duration
	P95Tick time.Duration

	PhaseAvg [numPhases]time.Duration
	PhasePct [numPhases]float64 // share of the average tick

	TicksPerSecond float64

	FrameDuration time.Duration
	FPS           float64
}

// Pct returns the share of the average tick spent in ph, in percent.
func (s PerfStats) Pct(ph Phase) float64 {
	if ph < 0 || ph >= numPhases {
		return 0
	}
	return s.PhasePct[ph]
}

// Stats aggregates the current window.
func (p *PerfCollector) Stats() PerfStats {
	var s PerfStats
	if p == nil {
		return s
	}
	s.FrameDuration = p.frame
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.filled == 0 {
		return s
	}

	us := make([]float64, p.filled)
	var total time.Duration
	var phaseSum [numPhases]time.Duration
	s.MinTick = p.ticks[0]
	for i := 0; i < p.filled; i++ {
		d := p.ticks[i]
		total += d
		s.MinTick = min(s.MinTick, d)
		s.MaxTick = max(s.MaxTick, d)
		us[i] = float64(d)
		for ph, pd := range p.phases[i] {
			phaseSum[ph] += pd
		}
	}
	sort.Float64s(us)
	s.P95Tick = time.Duration(stat.Quantile(0.95, stat.Empirical, us, nil))

	n := time.Duration(p.filled)
	s.AvgTick = total / n
	for ph := range phaseSum {
		s.PhaseAvg[ph] = phaseSum[ph] / n
		if s.AvgTick > 0 {
			s.PhasePct[ph] = float64(s.PhaseAvg[ph]) / float64(s.AvgTick) * 100
		}
	}
	if s.AvgTick > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTick)
	}
	return s
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTick.Microseconds()),
		slog.Int64("p95_tick_us", s.P95Tick.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTick.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, ph := range Phases() {
		attrs = append(attrs, slog.Float64(ph.String()+"_pct", s.PhasePct[ph]))
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	Generation   int     `csv:"generation"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	P95TickUS    int64   `csv:"p95_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	FlightPct    float64 `csv:"flight_pct"`
	PipesPct     float64 `csv:"pipes_pct"`
	CleanupPct   float64 `csv:"cleanup_pct"`
	AnimationPct float64 `csv:"animation_pct"`
}

// ToCSV flattens the stats for generation.
func (s PerfStats) ToCSV(generation int) PerfStatsCSV {
	return PerfStatsCSV{
		Generation:   generation,
		AvgTickUS:    s.AvgTick.Microseconds(),
		MinTickUS:    s.MinTick.Microseconds(),
		MaxTickUS:    s.MaxTick.Microseconds(),
		P95TickUS:    s.P95Tick.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		FPS:          s.FPS,
		FlightPct:    s.PhasePct[PhaseFlight],
		PipesPct:     s.PhasePct[PhasePipes],
		CleanupPct:   s.PhasePct[PhaseCleanup],
		AnimationPct: s.PhasePct[PhaseAnimation],
	}
}
