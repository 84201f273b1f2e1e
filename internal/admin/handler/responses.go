package handler

import (
	"time"

	"agentportal/internal/application/models"
)

// ApplicationResponse is the review-facing shape of a submitted application.
// Unlike the applicant status endpoint it includes the full draft payload and
// submission metadata.
type ApplicationResponse struct {
	ID             string       `json:"id"`
	Email          string       `json:"email"`
	Status         string       `json:"status"`
	Application    models.Draft `json:"application"`
	ClientIP       string       `json:"clientIp,omitempty"`
	UserAgent      string       `json:"userAgent,omitempty"`
	SubmittedAt    time.Time    `json:"submittedAt"`
	DecidedAt      *time.Time   `json:"decidedAt,omitempty"`
	Reviewer       string       `json:"reviewer,omitempty"`
	DecisionReason string       `json:"decisionReason,omitempty"`
}

// ListResponse wraps the application list.
type ListResponse struct {
	Applications []ApplicationResponse `json:"applications"`
	Total        int                   `json:"total"`
}

// FromRecord converts a record to its review response.
func FromRecord(rec models.Record) ApplicationResponse {
	return ApplicationResponse{
		ID:             rec.ID.String(),
		Email:          rec.Email,
		Status:         string(rec.Status),
		Application:    rec.Draft,
		ClientIP:       rec.ClientIP,
		UserAgent:      rec.UserAgent,
		SubmittedAt:    rec.CreatedAt,
		DecidedAt:      rec.DecidedAt,
		Reviewer:       rec.Reviewer,
		DecisionReason: rec.DecisionReason,
	}
}

// FromRecords converts a record list to the list response.
func FromRecords(records []models.Record) ListResponse {
	out := make([]ApplicationResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, FromRecord(rec))
	}
	return ListResponse{Applications: out, Total: len(out)}
}
