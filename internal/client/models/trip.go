package models

// Trip mirrors the backend's wire shape. IDs are uuid strings; trips created
// offline get their uuid locally so queued follow-up edits can reference them
// before the backend has seen the create.
type Trip struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Destination string `json:"destination"`
	City        string `json:"city,omitempty"`
	Country     string `json:"country,omitempty"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
}
