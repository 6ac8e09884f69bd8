package models

import "time"

// Task is a billable work template under a service. Names are unique per
// service, case-insensitively.
type Task struct {
	ID        string    `db:"id" json:"id"`
	ServiceID string    `db:"service_id" json:"service_id"`
	Name      string    `db:"name" json:"name"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TaskFilter scopes task listing queries.
type TaskFilter struct {
	ServiceID string
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
