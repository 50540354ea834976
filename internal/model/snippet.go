package model

import "time"

// Snippet is a saved piece of code.
//
// Tags keep their order and may contain any character, commas included;
// they are stored one row per tag, never joined into a single string.
type Snippet struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Language    string    `json:"language"`
	Code        string    `json:"code"`
	Description *string   `json:"description"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateSnippet is the request body for POST /snippets.
// Code is a pointer: the field must be present, but may be "".
type CreateSnippet struct {
	Title       string   `json:"title"`
	Language    string   `json:"language"`
	Code        *string  `json:"code"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
}
