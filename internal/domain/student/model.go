package student

import "time"

// Student is one entry in the tutoring roster.
type Student struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ParentContact string    `json:"parent_contact,omitempty"`
	DefaultRate   int64     `json:"default_rate"`
	Color         string    `json:"color,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
