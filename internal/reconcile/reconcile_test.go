package reconcile_test

import (
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/0xEljh/timesync/internal/model"
	"github.com/0xEljh/timesync/internal/reconcile"
)

var day = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func codingRecord(id string, start time.Time, minutes int) model.ActivityRecord {
	return model.ActivityRecord{
		Source:     model.SourceCoding,
		ExternalID: id,
		Category:   model.CategoryCoding,
		Label:      "wakatime",
		Start:      start,
		End:        start.Add(time.Duration(minutes) * time.Minute),
		Duration:   float64(minutes * 60),
	}
}

func taskRecord(id, ref string) model.ActivityRecord {
	return model.ActivityRecord{
		Source:     model.SourceTask,
		ExternalID: id,
		Label:      "Some task",
		Start:      day,
		End:        day,
		TaskRef:    ref,
	}
}

func TestReconcileEmpty(t *testing.T) {
	agg := reconcile.Reconcile(nil, day)

	if agg.Date != "2024-01-01" {
		t.Errorf("Date = %q, want %q", agg.Date, "2024-01-01")
	}
	for _, cat := range []model.Category{
		model.CategoryCoding, model.CategoryDevTools, model.CategoryPlanning,
		model.CategoryAIChat, model.CategoryScreen,
	} {
		if agg.Minutes(cat) != 0 {
			t.Errorf("Minutes(%s) = %d, want 0", cat, agg.Minutes(cat))
		}
	}
	if len(agg.TaskLinks) != 0 {
		t.Errorf("TaskLinks = %v, want empty", agg.TaskLinks)
	}
}

func TestReconcileEndToEndScenario(t *testing.T) {
	// Coding records totalling 45 minutes (two non-overlapping windows of
	// 10 and 35 minutes) plus one completed task linking T1.
	records := []model.ActivityRecord{
		codingRecord("waka-1", day.Add(9*time.Hour), 10),
		codingRecord("waka-2", day.Add(14*time.Hour), 35),
		taskRecord("task-1", "T1"),
	}

	agg := reconcile.Reconcile(records, day)

	if agg.Date != "2024-01-01" {
		t.Errorf("Date = %q, want %q", agg.Date, "2024-01-01")
	}
	if got := agg.Minutes(model.CategoryCoding); got != 45 {
		t.Errorf("coding minutes = %d, want 45", got)
	}
	if len(agg.TaskLinks) != 1 || agg.TaskLinks[0] != "T1" {
		t.Errorf("TaskLinks = %v, want [T1]", agg.TaskLinks)
	}
}

func TestReconcileDedupByExternalID(t *testing.T) {
	// Two records with the same source and external_id, one malformed with a
	// differing label: the activity must count exactly once.
	a := codingRecord("waka-1", day.Add(9*time.Hour), 30)
	b := a
	b.Label = "wakatime-dup"

	agg := reconcile.Reconcile([]model.ActivityRecord{a, b}, day)
	if got := agg.Minutes(model.CategoryCoding); got != 30 {
		t.Errorf("coding minutes = %d, want 30 (duplicate must not double-count)", got)
	}
}

func TestReconcileSameIDDifferentSources(t *testing.T) {
	// The same external_id in different sources is two distinct activities.
	a := codingRecord("id-1", day.Add(9*time.Hour), 10)
	b := a
	b.Source = model.SourceScreen
	b.Category = model.CategoryScreen

	agg := reconcile.Reconcile([]model.ActivityRecord{a, b}, day)
	if got := agg.Minutes(model.CategoryCoding); got != 10 {
		t.Errorf("coding minutes = %d, want 10", got)
	}
	if got := agg.Minutes(model.CategoryScreen); got != 10 {
		t.Errorf("screen minutes = %d, want 10", got)
	}
}

func TestReconcileMidnightSplit(t *testing.T) {
	// A 23:30–00:30 window contributes 30 minutes to each day, never 60 to one.
	rec := model.ActivityRecord{
		Source:     model.SourceScreen,
		ExternalID: "late-night",
		Category:   model.CategoryScreen,
		Label:      "kitty",
		Start:      time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC),
		End:        time.Date(2024, 1, 2, 0, 30, 0, 0, time.UTC),
		Duration:   3600,
	}

	day1 := reconcile.Reconcile([]model.ActivityRecord{rec}, day)
	day2 := reconcile.Reconcile([]model.ActivityRecord{rec}, day.AddDate(0, 0, 1))

	if got := day1.Minutes(model.CategoryScreen); got != 30 {
		t.Errorf("day1 screen minutes = %d, want 30", got)
	}
	if got := day2.Minutes(model.CategoryScreen); got != 30 {
		t.Errorf("day2 screen minutes = %d, want 30", got)
	}
}

func TestReconcileOutsideDayDropped(t *testing.T) {
	rec := codingRecord("waka-1", day.AddDate(0, 0, 3), 60)
	agg := reconcile.Reconcile([]model.ActivityRecord{rec}, day)
	if got := agg.Minutes(model.CategoryCoding); got != 0 {
		t.Errorf("coding minutes = %d, want 0 for out-of-day record", got)
	}
}

func TestReconcilePermutationInvariant(t *testing.T) {
	records := []model.ActivityRecord{
		codingRecord("waka-1", day.Add(9*time.Hour), 10),
		codingRecord("waka-2", day.Add(14*time.Hour), 35),
		codingRecord("waka-1", day.Add(9*time.Hour), 10), // duplicate
		taskRecord("task-1", "T1"),
		taskRecord("task-2", "T2"),
		{
			Source:     model.SourceScreen,
			ExternalID: "ev-1",
			Category:   model.CategoryDevTools,
			Label:      "Neovim",
			Start:      day.Add(10 * time.Hour),
			End:        day.Add(10*time.Hour + 20*time.Minute),
			Duration:   1200,
		},
	}

	want, err := json.Marshal(reconcile.Reconcile(records, day))
	if err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]model.ActivityRecord, len(records))
		copy(shuffled, records)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got, err := json.Marshal(reconcile.Reconcile(shuffled, day))
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != string(want) {
			t.Fatalf("permutation %d: aggregate differs\n got: %s\nwant: %s", i, got, want)
		}
	}
}

func TestReconcileBreakdown(t *testing.T) {
	records := []model.ActivityRecord{
		{
			Source:     model.SourceScreen,
			ExternalID: "ev-1",
			Category:   model.CategoryDevTools,
			Label:      "Neovim",
			Start:      day.Add(10 * time.Hour),
			End:        day.Add(10*time.Hour + 20*time.Minute),
			Duration:   1200,
		},
		{
			Source:     model.SourceScreen,
			ExternalID: "ev-2",
			Category:   model.CategoryDevTools,
			Label:      "Neovim",
			Start:      day.Add(11 * time.Hour),
			End:        day.Add(11*time.Hour + 10*time.Minute),
			Duration:   600,
		},
		{
			Source:     model.SourceScreen,
			ExternalID: "ev-3",
			Category:   model.CategoryAIChat,
			Label:      "Claude",
			Start:      day.Add(12 * time.Hour),
			End:        day.Add(12*time.Hour + 15*time.Minute),
			Duration:   900,
		},
	}

	agg := reconcile.Reconcile(records, day)

	if got := agg.Breakdown[model.CategoryDevTools]["Neovim"]; got != 30 {
		t.Errorf("Neovim breakdown = %d, want 30", got)
	}
	if got := agg.Breakdown[model.CategoryAIChat]["Claude"]; got != 15 {
		t.Errorf("Claude breakdown = %d, want 15", got)
	}
	if got := agg.ActiveMinutes(); got != 45 {
		t.Errorf("ActiveMinutes = %d, want 45", got)
	}
}

func TestReconcileRecomputationByteIdentical(t *testing.T) {
	records := []model.ActivityRecord{
		codingRecord("waka-1", day.Add(9*time.Hour), 10),
		taskRecord("task-1", "T1"),
	}
	first, err := json.Marshal(reconcile.Reconcile(records, day))
	if err != nil {
		t.Fatal(err)
	}
	second, err := json.Marshal(reconcile.Reconcile(records, day))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Errorf("recomputed aggregate differs:\n%s\n%s", first, second)
	}
}
