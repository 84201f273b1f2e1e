// Package wizard holds the pure state-machine logic of the application form:
// the fixed step registry, per-step gating rules, navigation transitions and
// the progress projection. Nothing here touches storage or transport.
package wizard

// Step indices. The order is fixed for the process lifetime.
const (
	StepPersonalInfo = iota
	StepBusinessExperience
	StepLocation
	StepPackages
	StepRequirements
	StepAssessment
	StepActivation
)

// StepDescriptor is the static configuration of one form section.
type StepDescriptor struct {
	Index    int    `json:"index"`
	ID       string `json:"id"`
	Label    string `json:"label"`
	Internal bool   `json:"internal"`
}

// Steps is the ordered registry. Assessment and activation are internal-only:
// staff-facing, never gated, excluded from applicant progress.
var Steps = []StepDescriptor{
	{Index: StepPersonalInfo, ID: "personal-info", Label: "Personal Information"},
	{Index: StepBusinessExperience, ID: "business-experience", Label: "Business Experience"},
	{Index: StepLocation, ID: "location", Label: "Business Location"},
	{Index: StepPackages, ID: "packages", Label: "Business Packages"},
	{Index: StepRequirements, ID: "requirements", Label: "Requirements & Signature"},
	{Index: StepAssessment, ID: "assessment", Label: "Internal Assessment", Internal: true},
	{Index: StepActivation, ID: "activation", Label: "Activation", Internal: true},
}

// LastApplicantStep is the index of the final applicant-facing step; submit is
// reachable only from here.
const LastApplicantStep = StepRequirements

// ApplicantStepCount returns the number of applicant-facing steps.
func ApplicantStepCount() int {
	return LastApplicantStep + 1
}
