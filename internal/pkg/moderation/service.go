// Package moderation implements the report workflow: users flag images,
// admins review and resolve the reports.
package moderation

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/PixelBoard/app/models"
	"github.com/ManuelReschke/PixelBoard/app/repository"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/apperror"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/pagination"
)

// ReportView is a report with its image and reporter resolved at read time.
// Missing references keep their ids and set the matching *Missing flag.
type ReportView struct {
	ID               uint      `json:"id"`
	ImageID          uint      `json:"image_id"`
	ImageTitle       *string   `json:"image_title"`
	ImageURL         *string   `json:"image_url"`
	ImageMissing     bool      `json:"image_missing"`
	ReporterID       uint      `json:"reported_by"`
	ReporterUsername *string   `json:"reporter_username"`
	ReporterMissing  bool      `json:"reporter_missing"`
	Reason           string    `json:"reason"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewReportView flattens a report whose associations were preloaded.
func NewReportView(r models.Report) ReportView {
	v := ReportView{
		ID:         r.ID,
		ImageID:    r.ImageID,
		ReporterID: r.ReporterID,
		Reason:     r.Reason,
		Status:     r.Status,
		CreatedAt:  r.CreatedAt,
	}
	if r.Image != nil {
		title, url := r.Image.Title, r.Image.URL()
		v.ImageTitle, v.ImageURL = &title, &url
	} else {
		v.ImageMissing = true
	}
	if r.Reporter != nil {
		username := r.Reporter.Username
		v.ReporterUsername = &username
	} else {
		v.ReporterMissing = true
	}
	return v
}

// Service provides report handling and the admin stats.
type Service struct {
	reports repository.ReportRepository
	images  repository.ImageRepository
	users   repository.UserRepository
}

// NewService creates a moderation service from injected repositories.
func NewService(repos *repository.Repositories) *Service {
	return &Service{reports: repos.Report, images: repos.Image, users: repos.User}
}

// Report files a new pending report. Repeated reports of the same image by
// the same user are kept as separate records.
func (s *Service) Report(imageID, reporterID uint, reason string) (*models.Report, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperror.Validation("reason is required")
	}
	if _, err := s.images.GetByID(imageID); err != nil {
		return nil, notFound(err, "image %d not found", imageID)
	}
	if _, err := s.users.GetByID(reporterID); err != nil {
		return nil, notFound(err, "user %d not found", reporterID)
	}

	report := &models.Report{
		ImageID:    imageID,
		ReporterID: reporterID,
		Reason:     reason,
		Status:     models.ReportStatusPending,
	}
	if err := s.reports.Create(report); err != nil {
		return nil, err
	}
	log.Infof("[Moderation] User %d reported image %d (report %d)", reporterID, imageID, report.ID)
	return report, nil
}

// ListReports returns reports newest first. An empty status lists all.
func (s *Service) ListReports(page, perPage int, status string) (pagination.Page[ReportView], error) {
	p := pagination.New(page, perPage)
	total, err := s.reports.Count(status)
	if err != nil {
		return pagination.Page[ReportView]{}, err
	}
	if p.Beyond(total) {
		return pagination.NewPage[ReportView](nil, total, p), nil
	}
	items, err := s.reports.List(status, p.Offset(), p.Limit())
	if err != nil {
		return pagination.Page[ReportView]{}, err
	}
	return pagination.Map(pagination.NewPage(items, total, p), NewReportView), nil
}

// UpdateStatus overwrites the status of a report. Any non-empty value is
// stored; values outside the known set are only logged.
func (s *Service) UpdateStatus(reportID uint, status string) (*models.Report, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, apperror.Validation("status is required")
	}
	report, err := s.reports.GetByID(reportID)
	if err != nil {
		return nil, notFound(err, "report %d not found", reportID)
	}
	if !models.IsKnownReportStatus(status) {
		log.Warnf("[Moderation] Report %d set to unrecognized status %q", reportID, status)
	}
	if err := s.reports.UpdateStatus(reportID, status); err != nil {
		return nil, err
	}
	report.Status = status
	return report, nil
}

// Stats counts users, images, public images and pending reports.
func (s *Service) Stats() (*models.Stats, error) {
	var stats models.Stats
	var err error
	if stats.Users, err = s.users.Count(); err != nil {
		return nil, err
	}
	if stats.Images, err = s.images.Count(); err != nil {
		return nil, err
	}
	if stats.PublicImages, err = s.images.CountPublic(); err != nil {
		return nil, err
	}
	if stats.PendingReports, err = s.reports.Count(models.ReportStatusPending); err != nil {
		return nil, err
	}
	return &stats, nil
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(format, args...)
	}
	return err
}
