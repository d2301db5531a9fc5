package telemetry

import (
	"testing"
)

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_FirstPassAndBestScore(t *testing.T) {
	bd := NewBookmarkDetector(5)

	if got := bd.Check(GenerationStats{Generation: 0, BestFitness: 2.4}, false); len(got) != 0 {
		t.Errorf("expected no bookmarks for a scoreless generation, got %v", got)
	}

	got := bd.Check(GenerationStats{Generation: 1, Score: 1, BestFitness: 9}, false)
	if !hasBookmark(got, BookmarkFirstPass) {
		t.Error("expected first_pass bookmark")
	}
	if !hasBookmark(got, BookmarkNewBestScore) {
		t.Error("expected new_best_score bookmark")
	}

	got = bd.Check(GenerationStats{Generation: 2, Score: 3, BestFitness: 20}, false)
	if hasBookmark(got, BookmarkFirstPass) {
		t.Error("first_pass should fire once")
	}
	if !hasBookmark(got, BookmarkNewBestScore) {
		t.Error("expected new_best_score bookmark for score 3")
	}

	if got := bd.Check(GenerationStats{Generation: 3, Score: 2, BestFitness: 20}, false); hasBookmark(got, BookmarkNewBestScore) {
		t.Error("lower score should not be a new best")
	}
}

func TestBookmarkDetector_Breakthrough(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(GenerationStats{Generation: i, MeanFitness: 3, BestFitness: 5}, false)
	}

	got := bd.Check(GenerationStats{Generation: 5, MeanFitness: 7, BestFitness: 30}, false)
	if !hasBookmark(got, BookmarkBreakthrough) {
		t.Error("expected fitness_breakthrough bookmark")
	}
}

func TestBookmarkDetector_Stagnation(t *testing.T) {
	bd := NewBookmarkDetector(3)

	var fired int
	for i := 0; i < 8; i++ {
		got := bd.Check(GenerationStats{Generation: i, BestFitness: 10, MeanFitness: 4}, false)
		if hasBookmark(got, BookmarkStagnation) {
			fired++
			if i != 3 {
				t.Errorf("stagnation fired at generation %d, want 3", i)
			}
		}
	}
	if fired != 1 {
		t.Errorf("stagnation fired %d times, want 1", fired)
	}

	// Improvement re-arms the detector
	bd.Check(GenerationStats{Generation: 8, BestFitness: 11, MeanFitness: 4}, false)
	for i := 9; i < 12; i++ {
		if got := bd.Check(GenerationStats{Generation: i, BestFitness: 11, MeanFitness: 4}, false); hasBookmark(got, BookmarkStagnation) {
			fired++
		}
	}
	if fired != 2 {
		t.Errorf("expected stagnation to re-arm after improvement, fired %d", fired)
	}
}

func TestBookmarkDetector_Solved(t *testing.T) {
	bd := NewBookmarkDetector(5)

	if !hasBookmark(bd.Check(GenerationStats{Generation: 0, Score: 26}, true), BookmarkSolved) {
		t.Error("expected solved bookmark")
	}
	if hasBookmark(bd.Check(GenerationStats{Generation: 1, Score: 26}, true), BookmarkSolved) {
		t.Error("solved should fire once")
	}
}
