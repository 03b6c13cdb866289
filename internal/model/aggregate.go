package model

// DailyAggregate is the reconciled per-day summary of time spent per category.
// It is recomputed from scratch on every run; with the same source records it
// marshals to byte-identical JSON (map keys and task links are sorted).
type DailyAggregate struct {
	Date              string                      `json:"date"`
	MinutesByCategory map[Category]int            `json:"minutes_by_category"`
	Breakdown         map[Category]map[string]int `json:"breakdown,omitempty"`
	TaskLinks         []string                    `json:"task_links"`
}

// Minutes returns the minutes recorded for a category, zero if absent.
func (a DailyAggregate) Minutes(c Category) int {
	return a.MinutesByCategory[c]
}

// ActiveMinutes is the total screen-side time: everything ActivityWatch
// observed, regardless of classification. Coding minutes come from WakaTime
// and are tracked separately, so they are excluded here.
func (a DailyAggregate) ActiveMinutes() int {
	return a.Minutes(CategoryDevTools) + a.Minutes(CategoryPlanning) +
		a.Minutes(CategoryAIChat) + a.Minutes(CategoryScreen)
}
