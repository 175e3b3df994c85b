package models

import (
	"time"

	"gorm.io/datatypes"
)

// Document is one stored document of a per-user collection.
// Path is the full document path (users/{uid}/{collection}/{id}); Collection is
// the parent collection path, empty for top-level user documents.
type Document struct {
	Path       string            `gorm:"primaryKey;size:512"`
	Collection string            `gorm:"index:idx_documents_collection,priority:1;size:512"`
	UserID     string            `gorm:"index;size:64"`
	Fields     datatypes.JSONMap `gorm:"not null"`
	CreatedAt  time.Time         `gorm:"index:idx_documents_collection,priority:2"`
	UpdatedAt  time.Time
}
