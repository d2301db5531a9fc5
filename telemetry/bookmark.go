package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFirstPass    BookmarkType = "first_pass"
	BookmarkNewBestScore BookmarkType = "new_best_score"
	BookmarkBreakthrough BookmarkType = "fitness_breakthrough"
	BookmarkStagnation   BookmarkType = "stagnation"
	BookmarkSolved       BookmarkType = "solved"
)

// Bookmark marks a notable generation in a training run.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Generation  int          `csv:"generation"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"generation", b.Generation,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable generations from their stats.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []GenerationStats
	historySize int
	historyIdx  int
	historyFull bool

	bestScore   int
	bestFitness float64
	sinceBest   int // generations without a best-fitness improvement
	stagnant    bool
	solved      bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3 // minimum for a meaningful rolling average
	}
	return &BookmarkDetector{
		history:     make([]GenerationStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
// solved reports whether the generation ended on the score threshold.
func (bd *BookmarkDetector) Check(stats GenerationStats, solved bool) []Bookmark {
	var bookmarks []Bookmark

	if stats.Score > bd.bestScore {
		if bd.bestScore == 0 {
			bookmarks = append(bookmarks, Bookmark{
				Type:        BookmarkFirstPass,
				Generation:  stats.Generation,
				Description: "a bird passed its first pipe",
			})
		}
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkNewBestScore,
			Generation:  stats.Generation,
			Description: fmt.Sprintf("score %d beats %d", stats.Score, bd.bestScore),
		})
		bd.bestScore = stats.Score
	}

	if b := bd.checkBreakthrough(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if stats.Generation == 0 || stats.BestFitness > bd.bestFitness {
		bd.bestFitness = stats.BestFitness
		bd.sinceBest = 0
		bd.stagnant = false
	} else {
		bd.sinceBest++
	}
	if bd.sinceBest >= bd.historySize && !bd.stagnant {
		bd.stagnant = true
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkStagnation,
			Generation:  stats.Generation,
			Description: fmt.Sprintf("best fitness %.1f unchanged for %d generations", bd.bestFitness, bd.sinceBest),
		})
	}

	if solved && !bd.solved {
		bd.solved = true
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkSolved,
			Generation:  stats.Generation,
			Description: fmt.Sprintf("score threshold reached with fitness %.1f", stats.BestFitness),
		})
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats GenerationStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []GenerationStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// checkBreakthrough fires when mean fitness exceeds twice its rolling average.
func (bd *BookmarkDetector) checkBreakthrough(stats GenerationStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.MeanFitness
	}
	avg := total / float64(len(history))
	if avg <= 0 || stats.MeanFitness <= 2*avg {
		return nil
	}

	return &Bookmark{
		Type:        BookmarkBreakthrough,
		Generation:  stats.Generation,
		Description: fmt.Sprintf("mean fitness %.1f vs rolling average %.1f", stats.MeanFitness, avg),
	}
}
