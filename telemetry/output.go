package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/flappy/config"
)

// Output file names inside the run directory.
const (
	GenerationsFile = "generations.csv"
	PerfFile        = "perf.csv"
	BookmarksFile   = "bookmarks.csv"
	ChampionsFile   = "champions.csv"
	HallOfFameFile  = "hall_of_fame.json"
	ConfigFile      = "config.yaml"
)

// csvLog appends records of one type to a CSV file. The header goes out
// with the first record.
type csvLog[T any] struct {
	name    string
	f       *os.File
	started bool
}

func createLog[T any](dir, name string) (*csvLog[T], error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvLog[T]{name: name, f: f}, nil
}

func (l *csvLog[T]) append(rec T) error {
	rows := []T{rec}
	var err error
	if l.started {
		err = gocsv.MarshalWithoutHeaders(rows, l.f)
	} else {
		err = gocsv.Marshal(rows, l.f)
	}
	if err != nil {
		return fmt.Errorf("appending to %s: %w", l.name, err)
	}
	l.started = true
	return nil
}

func (l *csvLog[T]) close() error {
	if l == nil {
		return nil
	}
	return l.f.Close()
}

// ChampionRecord is a row of champions.csv: a bird that carried its
// generation over the score threshold, and where its genome went.
type ChampionRecord struct {
	Generation  int     `csv:"generation"`
	CandidateID int     `csv:"candidate_id"`
	Species     int     `csv:"species"`
	Fitness     float64 `csv:"fitness"`
	Score       int     `csv:"score"`
	Nodes       int     `csv:"nodes"`
	Links       int     `csv:"links"`
	Path        string  `csv:"genome_path"` // empty when saving is disabled or failed
}

// OutputManager writes a training run's files into one directory.
// A nil manager discards everything, so callers need no checks.
type OutputManager struct {
	dir string

	generations *csvLog[GenerationStats]
	perf        *csvLog[PerfStatsCSV]
	bookmarks   *csvLog[Bookmark]
	champions   *csvLog[ChampionRecord]
}

// NewOutputManager creates dir and its CSV logs. An empty dir disables
// output and returns a nil manager.
func NewOutputManager(dir string) (om *OutputManager, err error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om = &OutputManager{dir: dir}
	defer func() {
		if err != nil {
			om.Close()
			om = nil
		}
	}()

	if om.generations, err = createLog[GenerationStats](dir, GenerationsFile); err != nil {
		return
	}
	if om.perf, err = createLog[PerfStatsCSV](dir, PerfFile); err != nil {
		return
	}
	if om.bookmarks, err = createLog[Bookmark](dir, BookmarksFile); err != nil {
		return
	}
	om.champions, err = createLog[ChampionRecord](dir, ChampionsFile)
	return
}

// WriteConfig snapshots the run's configuration.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, ConfigFile))
}

// WriteGeneration appends a generation's summary.
func (om *OutputManager) WriteGeneration(stats GenerationStats) error {
	if om == nil {
		return nil
	}
	return om.generations.append(stats)
}

// WritePerf appends the step timings measured up to the end of generation.
func (om *OutputManager) WritePerf(stats PerfStats, generation int) error {
	if om == nil {
		return nil
	}
	return om.perf.append(stats.ToCSV(generation))
}

// WriteBookmark appends a notable generation.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	return om.bookmarks.append(b)
}

// WriteChampion appends a score-threshold champion.
func (om *OutputManager) WriteChampion(rec ChampionRecord) error {
	if om == nil {
		return nil
	}
	return om.champions.append(rec)
}

// WriteHallOfFame replaces hall_of_fame.json.
func (om *OutputManager) WriteHallOfFame(hof *HallOfFame) error {
	if om == nil || hof == nil {
		return nil
	}
	data, err := hof.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshaling hall of fame: %w", err)
	}
	if err := os.WriteFile(filepath.Join(om.dir, HallOfFameFile), data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", HallOfFameFile, err)
	}
	return nil
}

// Dir returns the output directory, or "" when output is disabled.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes every log that was opened.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	return errors.Join(
		om.generations.close(),
		om.perf.close(),
		om.bookmarks.close(),
		om.champions.close(),
	)
}
