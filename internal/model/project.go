// Package model defines the data structures used throughout the application.
//
// The JSON field names are snake_case because that is the wire format clients
// of this service already speak (created_at, mime_type, project_id, ...).
package model

import "time"

// Project is a named workspace pointing at a path on the client's machine.
// The server never looks at Path; it is stored and echoed back as-is.
//
// Description is a pointer so that "not set" serializes as null rather than "".
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Path        string    `json:"path"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateProject is the request body for POST /projects.
// Path is a pointer so an absent "path" can be told apart from "path": "".
type CreateProject struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Path        *string `json:"path"`
}

// UpdateProject is the request body for PUT /projects/{id}.
// A nil field means "leave unchanged".
type UpdateProject struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}
