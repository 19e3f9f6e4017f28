package models

import "time"

// Trip is the journal entry the mobile client creates and edits, possibly
// offline. Validation of its fields is the business layer's concern, not the
// sync machinery's.
type Trip struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Destination string    `json:"destination"`
	City        string    `json:"city,omitempty"`
	Country     string    `json:"country,omitempty"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
