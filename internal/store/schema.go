package store

import "time"

// Event is one indexed hook event.
type Event struct {
	ID            string  `gorm:"primaryKey"`
	SessionID     string  `gorm:"index;not null"`
	SourceApp     string  `gorm:"not null;default:''"`
	HookEventType string  `gorm:"index;not null"`
	Payload       string  `gorm:"type:text;not null"`
	Summary       *string `gorm:"type:text"`
	// Timestamp is in Unix milliseconds.
	Timestamp int64 `gorm:"index;not null"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (Event) TableName() string {
	return "events"
}

// Time returns the event timestamp as a time.Time.
func (e Event) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// SummaryText returns the summary, or "" when none was generated.
func (e Event) SummaryText() string {
	if e.Summary == nil {
		return ""
	}
	return *e.Summary
}
