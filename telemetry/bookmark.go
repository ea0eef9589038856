package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFirstColony     BookmarkType = "first_colony"
	BookmarkCollapse        BookmarkType = "collapse"
	BookmarkStockCrash      BookmarkType = "stock_crash"
	BookmarkMassDehydration BookmarkType = "mass_dehydration"
	BookmarkTrailNetwork    BookmarkType = "trail_network"
	BookmarkBandShift       BookmarkType = "band_shift"
	BookmarkGoalResult      BookmarkType = "goal_result"
)

// Trail coverage at which the slime network counts as established.
const trailNetworkCoverage = 0.05

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int          `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// One-shot milestones
	sawColony bool
	sawTrail  bool
	sawResult bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark
	add := func(b *Bookmark) {
		if b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	add(bd.checkFirstColony(stats))
	add(bd.checkCollapse(stats))
	add(bd.checkMassDehydration(stats))
	add(bd.checkTrailNetwork(stats))
	if bd.historyFull || bd.historyIdx > 0 {
		add(bd.checkStockCrash(stats))
		add(bd.checkBandShift(stats))
	}
	add(bd.checkGoalResult(stats))

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// previous returns the most recently recorded window.
func (bd *BookmarkDetector) previous() WindowStats {
	idx := (bd.historyIdx - 1 + bd.historySize) % bd.historySize
	return bd.history[idx]
}

func (bd *BookmarkDetector) checkFirstColony(stats WindowStats) *Bookmark {
	if bd.sawColony || stats.ColoniesCompleted == 0 {
		return nil
	}
	bd.sawColony = true
	return &Bookmark{
		Type:        BookmarkFirstColony,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("First colony completed, %d bases standing", stats.Colonies),
	}
}

func (bd *BookmarkDetector) checkCollapse(stats WindowStats) *Bookmark {
	if stats.Collapses == 0 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkCollapse,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d colonies collapsed, %d remain", stats.Collapses, stats.Colonies),
	}
}

func (bd *BookmarkDetector) checkMassDehydration(stats WindowStats) *Bookmark {
	// A quarter of the workforce alive at window start
	if stats.Deaths < 3 || stats.Deaths*4 < stats.Workers+stats.Deaths {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkMassDehydration,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d workers dried out in band %s", stats.Deaths, stats.Band),
	}
}

func (bd *BookmarkDetector) checkTrailNetwork(stats WindowStats) *Bookmark {
	if bd.sawTrail || stats.TrailCoverage < trailNetworkCoverage {
		return nil
	}
	bd.sawTrail = true
	return &Bookmark{
		Type:        BookmarkTrailNetwork,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Slime trails cover %.0f%% of the map", stats.TrailCoverage*100),
	}
}

func (bd *BookmarkDetector) checkStockCrash(stats WindowStats) *Bookmark {
	var peak float64
	for _, h := range bd.getHistory() {
		peak = max(peak, h.StockBiomass+h.StockWater)
	}
	if peak < 20 {
		return nil
	}
	current := stats.StockBiomass + stats.StockWater
	drop := 1 - current/peak
	if drop <= 0.5 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkStockCrash,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Stock crashed %.0f%% from peak %.1f to %.1f", drop*100, peak, current),
	}
}

func (bd *BookmarkDetector) checkBandShift(stats WindowStats) *Bookmark {
	prev := bd.previous()
	if prev.Band == "" || prev.Band == stats.Band {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkBandShift,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Moisture band moved from %s to %s at %.1f", prev.Band, stats.Band, stats.Moisture),
	}
}

func (bd *BookmarkDetector) checkGoalResult(stats WindowStats) *Bookmark {
	if bd.sawResult || stats.Result == "" {
		return nil
	}
	bd.sawResult = true
	return &Bookmark{
		Type:        BookmarkGoalResult,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Game decided: %s", stats.Result),
	}
}
