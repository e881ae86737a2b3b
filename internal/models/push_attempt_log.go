package models

import (
	"time"

	"github.com/google/uuid"
)

type PushAttemptLog struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	EventID         uuid.UUID `gorm:"type:uuid;not null;index" json:"event_id"`
	SiteName        string    `gorm:"not null" json:"site_name"`
	Language        string    `gorm:"not null" json:"language"`
	ContentSourceID int       `gorm:"not null" json:"content_source_id"`
	URLCount        int       `gorm:"not null" json:"url_count"`
	RequestURI      string    `gorm:"not null" json:"request_uri"`
	StartedAt       time.Time `gorm:"not null" json:"started_at"`
	FinishedAt      time.Time `gorm:"not null" json:"finished_at"`
	HTTPStatus      *int      `gorm:"type:integer" json:"http_status"`
	LatencyMs       *int      `gorm:"type:integer" json:"latency_ms"`
	Succeeded       bool      `gorm:"not null" json:"succeeded"`
	ResponseSummary *string   `json:"response_summary"`
	LastError       *string   `json:"last_error"`
	CreatedAt       time.Time `gorm:"default:now()" json:"created_at"`
}

func (PushAttemptLog) TableName() string {
	return "push_attempt_log"
}
