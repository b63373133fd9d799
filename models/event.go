package models

import "github.com/uptrace/bun"

// Event is a scheduled shooting session. Competitions hang off events.
type Event struct {
	bun.BaseModel `bun:"table:events,alias:e"`

	ID              int     `bun:"id,pk,autoincrement" json:"id"`
	Name            string  `bun:"name,notnull" json:"name"`
	Description     *string `bun:"description" json:"description,omitempty"`
	Location        string  `bun:"location,notnull" json:"location"`
	Date            string  `bun:"date,notnull,type:date" json:"date"`
	StartTime       string  `bun:"start_time,notnull" json:"startTime"`
	DurationHours   int     `bun:"duration_hours,notnull,default:2" json:"durationHours"`
	MaxParticipants *int    `bun:"max_participants" json:"maxParticipants,omitempty"`
	CreatedBy       int     `bun:"created_by,notnull" json:"createdBy"`
}
