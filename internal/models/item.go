package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ItemRef identifies a content node for the duration of one publish event
type ItemRef struct {
	ID            string   `json:"id"`
	Path          []string `json:"path"`
	Language      string   `json:"language"`
	IsContentItem bool     `json:"is_content_item"`
}

// FullPath joins the path segments into a slash-rooted path, e.g. /sitecore/content/home
func (i ItemRef) FullPath() string {
	return "/" + strings.Join(i.Path, "/")
}

// SplitPath splits a slash separated path into its non-empty segments
func SplitPath(path string) []string {
	segments := make([]string, 0, strings.Count(path, "/")+1)
	for _, segment := range strings.Split(path, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}

// ContentItem is the persisted form of an item in the published (web) database
type ContentItem struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ParentID      *uuid.UUID `gorm:"type:uuid;index" json:"parent_id"`
	Path          string     `gorm:"not null;index" json:"path"`
	Language      string     `gorm:"not null" json:"language"`
	IsContentItem bool       `gorm:"not null;default:true" json:"is_content_item"`
	CreatedAt     time.Time  `gorm:"default:now()" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"default:now()" json:"updated_at"`
}

func (ContentItem) TableName() string {
	return "content_items"
}

// Ref converts the row into the transient reference used by the pipeline
func (c ContentItem) Ref() ItemRef {
	return ItemRef{
		ID:            c.ID.String(),
		Path:          SplitPath(c.Path),
		Language:      c.Language,
		IsContentItem: c.IsContentItem,
	}
}
