package activitywatch

import (
	"testing"
	"time"

	"github.com/0xEljh/timesync/internal/timecalc"
)

var afkBase = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func afkEvent(status string, offset, minutes int) Event {
	return Event{
		Timestamp: afkBase.Add(time.Duration(offset) * time.Minute),
		Duration:  float64(minutes * 60),
		Data:      EventData{Status: status},
	}
}

func TestNotAFKPeriodsMergesOverlaps(t *testing.T) {
	events := []Event{
		afkEvent("not-afk", 0, 30),
		afkEvent("not-afk", 20, 30), // overlaps the first
		afkEvent("afk", 50, 10),     // ignored
		afkEvent("not-afk", 90, 15), // separate period
	}

	periods := notAFKPeriods(events)
	if len(periods) != 2 {
		t.Fatalf("periods = %d, want 2", len(periods))
	}
	if !periods[0].Start.Equal(afkBase) || !periods[0].End.Equal(afkBase.Add(50*time.Minute)) {
		t.Errorf("first period = %v..%v, want 09:00..09:50", periods[0].Start, periods[0].End)
	}
	if !periods[1].Start.Equal(afkBase.Add(90 * time.Minute)) {
		t.Errorf("second period start = %v, want 10:30", periods[1].Start)
	}
}

func TestNotAFKPeriodsEmpty(t *testing.T) {
	if got := notAFKPeriods(nil); got != nil {
		t.Errorf("notAFKPeriods(nil) = %v, want nil", got)
	}
	// Only afk events: no active periods.
	if got := notAFKPeriods([]Event{afkEvent("afk", 0, 60)}); got != nil {
		t.Errorf("expected nil periods for afk-only input, got %v", got)
	}
}

func TestClipToPeriods(t *testing.T) {
	// Active 09:00-09:30 and 10:00-10:30.
	periods := []timecalc.Window{
		{Start: afkBase, End: afkBase.Add(30 * time.Minute)},
		{Start: afkBase.Add(60 * time.Minute), End: afkBase.Add(90 * time.Minute)},
	}

	// Event 09:20-10:10 overlaps both periods.
	ev := Event{
		Timestamp: afkBase.Add(20 * time.Minute),
		Duration:  50 * 60,
		Data:      EventData{App: "kitty"},
	}

	portions := clipToPeriods(ev, periods, true)
	if len(portions) != 2 {
		t.Fatalf("portions = %d, want 2", len(portions))
	}
	if portions[0].Duration != 600 {
		t.Errorf("first portion = %vs, want 600", portions[0].Duration)
	}
	if portions[1].Duration != 600 {
		t.Errorf("second portion = %vs, want 600", portions[1].Duration)
	}
	if portions[0].Data.App != "kitty" {
		t.Errorf("portion lost event data")
	}
}

func TestClipToPeriodsNoAFKWatcher(t *testing.T) {
	ev := Event{Timestamp: afkBase, Duration: 600}
	portions := clipToPeriods(ev, nil, false)
	if len(portions) != 1 || portions[0].Duration != 600 {
		t.Errorf("expected passthrough without AFK data, got %v", portions)
	}
}

func TestClipToPeriodsAllDayAFK(t *testing.T) {
	// The watcher reported, but never a not-afk interval: events must be
	// dropped, not passed through like a watcherless host.
	ev := Event{Timestamp: afkBase, Duration: 600}
	if portions := clipToPeriods(ev, notAFKPeriods([]Event{afkEvent("afk", 0, 600)}), true); len(portions) != 0 {
		t.Errorf("expected no portions when all AFK data is afk, got %v", portions)
	}
}

func TestClipToPeriodsFullyAFK(t *testing.T) {
	periods := []timecalc.Window{
		{Start: afkBase.Add(2 * time.Hour), End: afkBase.Add(3 * time.Hour)},
	}
	ev := Event{Timestamp: afkBase, Duration: 600}
	if portions := clipToPeriods(ev, periods, true); len(portions) != 0 {
		t.Errorf("expected no portions for fully-AFK event, got %v", portions)
	}
}
