// Package models defines the application draft and the durable application
// record for the agent onboarding wizard.
package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCountry pre-fills the personal address for new drafts.
const DefaultCountry = "Philippines"

// Logical file slot names for uploaded requirements.
const (
	SlotIDFront        = "id_front"
	SlotIDBack         = "id_back"
	SlotSelfieWithID   = "selfie_with_id"
	SlotProofOfAddress = "proof_of_address"
	SlotBusinessPermit = "business_permit"
)

// Status of a submitted application. It starts at pending and is mutated only
// by the admin review path.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Plan is the selected business package.
type Plan string

const (
	PlanBasic    Plan = "basic"
	PlanStandard Plan = "standard"
	PlanPremium  Plan = "premium"
)

// Draft is the mutable, partially-filled representation of one applicant's
// in-progress submission, keyed by email. Email is set once at creation and
// never changes for the draft's lifetime.
type Draft struct {
	Email       string             `json:"email"`
	CurrentStep int                `json:"currentStep"`
	Personal    PersonalInfo       `json:"personal"`
	Experience  BusinessExperience `json:"experience"`
	Location    BusinessLocation   `json:"location"`
	Package     Plan               `json:"package"`
	Requirement Requirements       `json:"requirements"`
	Internal    InternalReview     `json:"internal"`
}

// NewDraft creates an empty draft with documented defaults: the country is
// fixed, nationality and civil status start empty.
func NewDraft(email string) Draft {
	return Draft{
		Email: email,
		Personal: PersonalInfo{
			Address: Address{Country: DefaultCountry},
		},
		Requirement: Requirements{Files: map[string]FileRef{}},
	}
}

// PersonalInfo holds the applicant identity fields. The email lives on the
// Draft itself, not here, so section updates cannot rewrite it.
type PersonalInfo struct {
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Phone       string  `json:"phone"`
	DateOfBirth string  `json:"dateOfBirth"`
	Nationality string  `json:"nationality"`
	CivilStatus string  `json:"civilStatus"`
	Address     Address `json:"address"`
}

// Address is the applicant's home address sub-record.
type Address struct {
	Country string `json:"country"`
	Region  string `json:"region"`
	City    string `json:"city"`
	Street  string `json:"street"`
	Zip     string `json:"zip"`
}

// BusinessExperience carries the two explicit yes/no selections plus details
// of an existing business when the applicant has one. Nil pointers mean the
// applicant has not answered yet; a defaulted answer set by the form is a
// non-nil value and satisfies the gate.
type BusinessExperience struct {
	HasExistingBusiness *bool           `json:"hasExistingBusiness"`
	HasAgentExperience  *bool           `json:"hasAgentExperience"`
	Business            BusinessDetails `json:"business"`
}

// BusinessDetails describes an applicant's existing business, if any.
type BusinessDetails struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Years int    `json:"years"`
}

// BusinessLocation is the proposed outlet location. Latitude and longitude are
// either both absent or both present; the wizard rules enforce the pairing.
type BusinessLocation struct {
	Proposed  string   `json:"proposed"`
	Region    string   `json:"region"`
	City      string   `json:"city"`
	Street    string   `json:"street"`
	Zip       string   `json:"zip"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Requirements holds the signature, certifications and uploaded file slots.
type Requirements struct {
	Signature         string             `json:"signature"`
	CertifiedAccurate bool               `json:"certifiedAccurate"`
	AgreedToTerms     bool               `json:"agreedToTerms"`
	Files             map[string]FileRef `json:"files"`
}

// FileRef references an uploaded document: a storage key plus the
// human-readable name shown back to the applicant.
type FileRef struct {
	StorageKey string `json:"storageKey"`
	Name       string `json:"name"`
}

// Present reports whether the slot actually holds an upload.
func (f FileRef) Present() bool {
	return f.StorageKey != ""
}

// InternalReview holds assessment and activation fields maintained by staff.
// These steps are never applicant-facing and carry no client-side gate.
type InternalReview struct {
	AssessmentNotes string     `json:"assessmentNotes,omitempty"`
	AssessmentScore int        `json:"assessmentScore,omitempty"`
	ActivationCode  string     `json:"activationCode,omitempty"`
	ActivatedAt     *time.Time `json:"activatedAt,omitempty"`
}

// SectionUpdate is a partial draft mutation: each non-nil section replaces the
// draft's section wholesale. There is deliberately no email field.
type SectionUpdate struct {
	CurrentStep *int                `json:"currentStep,omitempty"`
	Personal    *PersonalInfo       `json:"personal,omitempty"`
	Experience  *BusinessExperience `json:"experience,omitempty"`
	Location    *BusinessLocation   `json:"location,omitempty"`
	Package     *Plan               `json:"package,omitempty"`
	Requirement *Requirements       `json:"requirements,omitempty"`
}

// Record is the durable, submitted form of a draft.
type Record struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	Status         Status     `json:"status"`
	Draft          Draft      `json:"application"`
	IdempotencyKey string     `json:"idempotencyKey"`
	ClientIP       string     `json:"clientIp,omitempty"`
	UserAgent      string     `json:"userAgent,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	DecidedAt      *time.Time `json:"decidedAt,omitempty"`
	Reviewer       string     `json:"reviewer,omitempty"`
	DecisionReason string     `json:"decisionReason,omitempty"`
}
