package handler

import (
	"time"

	"agentportal/internal/application/models"
	"agentportal/internal/application/service"
	"agentportal/internal/wizard"
)

// SessionResponse is the HTTP shape of a hydrated wizard session.
type SessionResponse struct {
	Application models.Draft    `json:"application"`
	Progress    wizard.Progress `json:"progress"`
	SavedAt     *time.Time      `json:"savedAt,omitempty"`
}

// FromSession converts a service session to its HTTP response.
func FromSession(s service.Session) SessionResponse {
	return SessionResponse{
		Application: s.Draft,
		Progress:    s.Progress,
		SavedAt:     s.SavedAt,
	}
}

// RecordResponse is the HTTP shape of a submitted application. The stored
// draft payload is not echoed back; the session endpoints own that.
type RecordResponse struct {
	ID             string     `json:"id"`
	Status         string     `json:"status"`
	SubmittedAt    time.Time  `json:"submittedAt"`
	DecidedAt      *time.Time `json:"decidedAt,omitempty"`
	DecisionReason string     `json:"decisionReason,omitempty"`
}

// FromRecord converts a record to its HTTP response.
func FromRecord(rec models.Record) RecordResponse {
	return RecordResponse{
		ID:             rec.ID.String(),
		Status:         string(rec.Status),
		SubmittedAt:    rec.CreatedAt,
		DecidedAt:      rec.DecidedAt,
		DecisionReason: rec.DecisionReason,
	}
}

// GateRefusalResponse extends the error envelope with the unmet fields so the
// form can mark them inline.
type GateRefusalResponse struct {
	Error            string              `json:"error"`
	ErrorDescription string              `json:"error_description"`
	Step             int                 `json:"step"`
	Fields           []wizard.FieldError `json:"fields"`
}

// FromGateError converts a gate refusal to its HTTP response.
func FromGateError(err *service.GateError) GateRefusalResponse {
	return GateRefusalResponse{
		Error:            "validation_failed",
		ErrorDescription: err.Error(),
		Step:             err.Step,
		Fields:           err.Fields,
	}
}
