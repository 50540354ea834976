package model

import "time"

// FileRecord is the metadata row for one uploaded blob.
//
// ID doubles as the blob's file name inside the upload directory, and
// Filepath is that directory joined with ID. Filename is whatever the client
// sent and is never used to build paths.
//
// ProjectID exists in the schema but nothing populates it yet.
type FileRecord struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Filepath  string    `json:"filepath"`
	Size      int64     `json:"size"`
	MimeType  string    `json:"mime_type"`
	ProjectID *string   `json:"project_id"`
	CreatedAt time.Time `json:"created_at"`
}
