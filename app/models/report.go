package models

import (
	"time"
)

const (
	ReportStatusPending   = "pending"
	ReportStatusReviewed  = "reviewed"
	ReportStatusResolved  = "resolved"
	ReportStatusDismissed = "dismissed"
)

// KnownReportStatuses lists the statuses the admin UI offers. Other values are
// still stored as-is.
var KnownReportStatuses = []string{
	ReportStatusPending,
	ReportStatusReviewed,
	ReportStatusResolved,
	ReportStatusDismissed,
}

// IsKnownReportStatus reports whether status is one of KnownReportStatuses.
func IsKnownReportStatus(status string) bool {
	for _, s := range KnownReportStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Report struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ImageID    uint      `gorm:"index;not null" json:"image_id"`
	Image      *Image    `gorm:"foreignKey:ImageID" json:"-"`
	ReporterID uint      `gorm:"index;not null" json:"reported_by"`
	Reporter   *User     `gorm:"foreignKey:ReporterID" json:"-"`
	Reason     string    `gorm:"type:text;not null" json:"reason" validate:"required"`
	Status     string    `gorm:"type:varchar(50);not null;index" json:"status" validate:"required"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
