package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_FirstColonyOnce(t *testing.T) {
	bd := NewBookmarkDetector(10)

	if got := bd.Check(WindowStats{WindowEndTick: 100, Colonies: 1}); hasBookmark(got, BookmarkFirstColony) {
		t.Fatal("first_colony before any colony completed")
	}
	got := bd.Check(WindowStats{WindowEndTick: 200, Colonies: 2, ColoniesCompleted: 1})
	if !hasBookmark(got, BookmarkFirstColony) {
		t.Fatal("expected first_colony bookmark")
	}
	if got[0].Tick != 200 {
		t.Errorf("tick = %d, want 200", got[0].Tick)
	}
	if got := bd.Check(WindowStats{WindowEndTick: 300, Colonies: 3, ColoniesCompleted: 1}); hasBookmark(got, BookmarkFirstColony) {
		t.Error("first_colony fired twice")
	}
}

func TestBookmarkDetector_StockCrash(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 3; i++ {
		bd.Check(WindowStats{WindowEndTick: i * 100, StockBiomass: 60, StockWater: 40})
	}
	if got := bd.Check(WindowStats{WindowEndTick: 300, StockBiomass: 50, StockWater: 30}); hasBookmark(got, BookmarkStockCrash) {
		t.Error("20% drop is not a crash")
	}
	if got := bd.Check(WindowStats{WindowEndTick: 400, StockBiomass: 20, StockWater: 10}); !hasBookmark(got, BookmarkStockCrash) {
		t.Error("expected stock_crash bookmark")
	}
}

func TestBookmarkDetector_StockCrashNeedsPeak(t *testing.T) {
	bd := NewBookmarkDetector(10)
	bd.Check(WindowStats{StockBiomass: 10})
	if got := bd.Check(WindowStats{StockBiomass: 1}); hasBookmark(got, BookmarkStockCrash) {
		t.Error("crash reported below the minimum peak")
	}
}

func TestBookmarkDetector_BandShift(t *testing.T) {
	bd := NewBookmarkDetector(3)

	if got := bd.Check(WindowStats{Band: "wet"}); hasBookmark(got, BookmarkBandShift) {
		t.Error("band_shift without history")
	}
	if got := bd.Check(WindowStats{Band: "wet"}); hasBookmark(got, BookmarkBandShift) {
		t.Error("band_shift without a change")
	}
	if got := bd.Check(WindowStats{Band: "damp"}); !hasBookmark(got, BookmarkBandShift) {
		t.Error("expected band_shift bookmark")
	}
	// Wraps the ring buffer
	if got := bd.Check(WindowStats{Band: "dry"}); !hasBookmark(got, BookmarkBandShift) {
		t.Error("expected band_shift after wrap")
	}
}

func TestBookmarkDetector_MassDehydration(t *testing.T) {
	bd := NewBookmarkDetector(10)

	if got := bd.Check(WindowStats{Workers: 20, Deaths: 3}); hasBookmark(got, BookmarkMassDehydration) {
		t.Error("3 of 23 is not mass dehydration")
	}
	if got := bd.Check(WindowStats{Workers: 6, Deaths: 3}); !hasBookmark(got, BookmarkMassDehydration) {
		t.Error("expected mass_dehydration bookmark")
	}
}

func TestBookmarkDetector_GoalResultAndCollapse(t *testing.T) {
	bd := NewBookmarkDetector(10)

	got := bd.Check(WindowStats{Collapses: 1, Result: "Defeat"})
	if !hasBookmark(got, BookmarkCollapse) || !hasBookmark(got, BookmarkGoalResult) {
		t.Fatalf("bookmarks = %+v", got)
	}
	if got := bd.Check(WindowStats{Result: "Defeat"}); hasBookmark(got, BookmarkGoalResult) {
		t.Error("goal_result fired twice")
	}
}

func TestBookmarkDetector_TrailNetwork(t *testing.T) {
	bd := NewBookmarkDetector(10)

	if got := bd.Check(WindowStats{TrailCoverage: 0.01}); hasBookmark(got, BookmarkTrailNetwork) {
		t.Error("trail_network below coverage")
	}
	if got := bd.Check(WindowStats{TrailCoverage: 0.1}); !hasBookmark(got, BookmarkTrailNetwork) {
		t.Error("expected trail_network bookmark")
	}
	if got := bd.Check(WindowStats{TrailCoverage: 0.2}); hasBookmark(got, BookmarkTrailNetwork) {
		t.Error("trail_network fired twice")
	}
}
