package docsystem

import (
	"time"
)

// FolderRow is a folder as stored in the database
type FolderRow struct {
	ID        string    `db:"id"`
	ProjectID string    `db:"project_id"`
	ParentID  *string   `db:"parent_id"` // NULL = root level
	Name      string    `db:"name"`
	UpdatedAt time.Time `db:"updated_at"`
}

// DocumentRow is a document as stored in the database (content reduced to a preview)
type DocumentRow struct {
	ID             string    `db:"id"`
	ProjectID      string    `db:"project_id"`
	FolderID       *string   `db:"folder_id"` // NULL = root level
	Name           string    `db:"name"`
	Preview        string    `db:"preview"`
	ByteSize       int64     `db:"byte_size"`
	DocumentType   string    `db:"document_type"`
	Tags           []string  `db:"tags"`
	UsageCount     int       `db:"usage_count"`
	RelevanceScore *float64  `db:"relevance_score"`
	UpdatedAt      time.Time `db:"updated_at"`
}
