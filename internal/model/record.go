package model

import "time"

// Source identifies which external service a record came from.
type Source string

const (
	// SourceCoding is WakaTime coding-time data.
	SourceCoding Source = "coding"
	// SourceScreen is ActivityWatch screen-time data.
	SourceScreen Source = "screen"
	// SourceTask is the Notion task database.
	SourceTask Source = "task"
)

// Category is the time-accounting bucket a record's duration counts toward.
type Category string

const (
	CategoryCoding   Category = "coding"
	CategoryDevTools Category = "dev_tools"
	CategoryPlanning Category = "planning"
	CategoryAIChat   Category = "ai_chat"
	CategoryScreen   Category = "screen"
)

// ActivityRecord is one normalized window of activity fetched from a source.
// Records are immutable once fetched; the reconciler never mutates them.
type ActivityRecord struct {
	Source     Source    `json:"source"`
	ExternalID string    `json:"external_id"`
	Category   Category  `json:"category,omitempty"`
	Label      string    `json:"label"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	// Duration is the active portion of [Start, End) in seconds. For window
	// events this equals End.Sub(Start); task records carry zero.
	Duration float64 `json:"duration_seconds"`
	// TaskRef links a task-completion record to its Notion page ID.
	TaskRef string `json:"task_ref,omitempty"`
}
