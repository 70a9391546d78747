package models

// Stats is the admin dashboard aggregate, computed on every request.
type Stats struct {
	Users          int64 `json:"users"`
	Images         int64 `json:"images"`
	PublicImages   int64 `json:"public_images"`
	PendingReports int64 `json:"pending_reports"`
}
