package audit

import "time"

// Actions recorded on the application trail.
const (
	ActionDraftSaved    = "draft.saved"
	ActionStepAdvanced  = "step.advanced"
	ActionStepRetreated = "step.retreated"
	ActionSubmitted     = "application.submitted"
	ActionDecided       = "application.decided"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp     time.Time
	Actor         string
	Action        string
	ApplicationID string
	Detail        string
	RequestID     string
	ClientIP      string
}
