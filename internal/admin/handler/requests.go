package handler

// DecisionRequest is the HTTP request body for POST
// /admin/applications/{id}/decision.
type DecisionRequest struct {
	Decision string `json:"decision"`
	Reviewer string `json:"reviewer"`
	Reason   string `json:"reason,omitempty"`
}
