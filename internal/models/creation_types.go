package models

import "time"

// Creation types. The ledger stores everything as text; 'Type' tells
// readers how to interpret 'Content' (raw text, image URL, review JSON).
const (
	CreationTypeArticle   = "article"
	CreationTypeBlogTitle = "blog-title"
	CreationTypeImage     = "image"
	CreationTypeResume    = "resume"
)

// Creation defines the model for the 'creations' table.
// One row per successful generation action. Rows are write-once except
// for the 'publish' flag (and 'updated_at' alongside it).
type Creation struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	Prompt    string    `json:"prompt" db:"prompt"`
	Content   string    `json:"content" db:"content"`
	Type      string    `json:"type" db:"type"`
	Publish   bool      `json:"publish" db:"publish"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
