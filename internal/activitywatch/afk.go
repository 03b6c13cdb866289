package activitywatch

import (
	"sort"

	"github.com/0xEljh/timesync/internal/timecalc"
)

// mergeIntervals collapses overlapping or touching windows into a minimal
// sorted set.
func mergeIntervals(intervals []timecalc.Window) []timecalc.Window {
	if len(intervals) == 0 {
		return nil
	}
	sorted := make([]timecalc.Window, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := []timecalc.Window{sorted[0]}
	for _, w := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !w.Start.After(last.End) {
			if w.End.After(last.End) {
				last.End = w.End
			}
			continue
		}
		merged = append(merged, w)
	}
	return merged
}

// notAFKPeriods extracts the merged intervals during which the AFK watcher
// reported the user present.
func notAFKPeriods(afkEvents []Event) []timecalc.Window {
	var intervals []timecalc.Window
	for _, ev := range afkEvents {
		if ev.Data.Status != "not-afk" || ev.Duration <= 0 {
			continue
		}
		intervals = append(intervals, timecalc.Window{Start: ev.Timestamp, End: ev.End()})
	}
	return mergeIntervals(intervals)
}

// clipToPeriods trims an event to the given active periods, returning one
// sub-event per overlap with durations adjusted to exclude AFK time.
// hasAFKData distinguishes a host without an AFK watcher (events pass through
// unchanged) from a host whose watcher reported no active time at all, where
// every event is dropped.
func clipToPeriods(ev Event, periods []timecalc.Window, hasAFKData bool) []Event {
	if !hasAFKData {
		return []Event{ev}
	}

	window := timecalc.Window{Start: ev.Timestamp, End: ev.End()}
	var out []Event
	for _, p := range periods {
		overlap, ok := window.Clip(p)
		if !ok {
			continue
		}
		clipped := ev
		clipped.Timestamp = overlap.Start
		clipped.Duration = overlap.Duration().Seconds()
		out = append(out, clipped)
	}
	return out
}
