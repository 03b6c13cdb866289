// Package reconcile converts raw activity records into a per-day aggregate:
// dedup by source-native ID, clip to the journal day, sum per category.
package reconcile

import (
	"sort"
	"time"

	"github.com/0xEljh/timesync/internal/model"
	"github.com/0xEljh/timesync/internal/timecalc"
)

// Reconcile merges activity records into the DailyAggregate for the journal
// day containing `day`. It is pure and deterministic: the same input multiset
// yields the same aggregate regardless of input ordering.
//
// Rules:
//   - within each source, duplicate ExternalIDs are dropped (a duplicate ID
//     always denotes the same activity, so it must count exactly once);
//   - each record's active window [Start, Start+Duration) is clipped to the
//     day boundary, so a window straddling midnight contributes only its
//     in-day portion;
//   - clipped seconds are summed per category and per (category, label), and
//     converted to whole minutes at the end;
//   - TaskRefs are collected into a sorted, unique set.
func Reconcile(records []model.ActivityRecord, day time.Time) model.DailyAggregate {
	bounds := timecalc.DayWindow(day)

	// Sort a copy by (source, external id, start) so dedup keeps the same
	// representative under any input permutation.
	sorted := make([]model.ActivityRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Source != sorted[j].Source {
			return sorted[i].Source < sorted[j].Source
		}
		if sorted[i].ExternalID != sorted[j].ExternalID {
			return sorted[i].ExternalID < sorted[j].ExternalID
		}
		return sorted[i].Start.Before(sorted[j].Start)
	})

	type dedupKey struct {
		source model.Source
		id     string
	}
	seen := make(map[dedupKey]bool, len(sorted))

	secsByCategory := map[model.Category]float64{}
	secsByLabel := map[model.Category]map[string]float64{}
	taskSet := map[string]bool{}

	for _, rec := range sorted {
		key := dedupKey{source: rec.Source, id: rec.ExternalID}
		if seen[key] {
			continue
		}
		seen[key] = true

		if rec.TaskRef != "" {
			taskSet[rec.TaskRef] = true
		}
		if rec.Duration <= 0 || rec.Category == "" {
			continue
		}

		active := timecalc.Window{
			Start: rec.Start,
			End:   rec.Start.Add(time.Duration(rec.Duration * float64(time.Second))),
		}
		clipped, ok := active.Clip(bounds)
		if !ok {
			continue
		}

		secs := clipped.Duration().Seconds()
		secsByCategory[rec.Category] += secs
		if rec.Label != "" {
			if secsByLabel[rec.Category] == nil {
				secsByLabel[rec.Category] = map[string]float64{}
			}
			secsByLabel[rec.Category][rec.Label] += secs
		}
	}

	minutes := map[model.Category]int{
		model.CategoryCoding:   0,
		model.CategoryDevTools: 0,
		model.CategoryPlanning: 0,
		model.CategoryAIChat:   0,
		model.CategoryScreen:   0,
	}
	for cat, secs := range secsByCategory {
		minutes[cat] = int(secs / 60)
	}

	var breakdown map[model.Category]map[string]int
	for cat, labels := range secsByLabel {
		for label, secs := range labels {
			mins := int(secs / 60)
			if mins == 0 {
				continue
			}
			if breakdown == nil {
				breakdown = map[model.Category]map[string]int{}
			}
			if breakdown[cat] == nil {
				breakdown[cat] = map[string]int{}
			}
			breakdown[cat][label] = mins
		}
	}

	links := make([]string, 0, len(taskSet))
	for ref := range taskSet {
		links = append(links, ref)
	}
	sort.Strings(links)

	return model.DailyAggregate{
		Date:              timecalc.DateString(day),
		MinutesByCategory: minutes,
		Breakdown:         breakdown,
		TaskLinks:         links,
	}
}
