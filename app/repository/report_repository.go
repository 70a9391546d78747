package repository

import (
	"github.com/ManuelReschke/PixelBoard/app/models"
	"gorm.io/gorm"
)

// reportRepository implements the ReportRepository interface
type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository instance
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// Create creates a new report in the database
func (r *reportRepository) Create(report *models.Report) error {
	return r.db.Create(report).Error
}

// GetByID retrieves a report by its ID
func (r *reportRepository) GetByID(id uint) (*models.Report, error) {
	var report models.Report
	err := r.db.First(&report, id).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) filtered(status string) *gorm.DB {
	q := r.db.Model(&models.Report{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	return q
}

// List retrieves a paginated, optionally status-filtered list of reports
func (r *reportRepository) List(status string, offset, limit int) ([]models.Report, error) {
	var reports []models.Report
	err := r.filtered(status).Preload("Image").Preload("Reporter").
		Scopes(newestFirst).Offset(offset).Limit(limit).Find(&reports).Error
	return reports, err
}

// Count returns the number of reports, optionally filtered by status
func (r *reportRepository) Count(status string) (int64, error) {
	var count int64
	err := r.filtered(status).Count(&count).Error
	return count, err
}

// UpdateStatus overwrites the status of a report
func (r *reportRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.Report{}).Where("id = ?", id).Update("status", status).Error
}
