package wizard

import (
	"strings"

	"agentportal/internal/application/models"
)

// FieldError names a gate refusal for one field. Rendering the message next to
// the field is a presentation concern; this layer only reports facts.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RequiredFields evaluates the step's required-field predicate against live
// draft values and returns the unmet fields. An empty result means the gate is
// satisfied. Internal steps carry no gate and always return nil.
func RequiredFields(d models.Draft, step int) []FieldError {
	switch step {
	case StepPersonalInfo:
		return personalInfoGate(d)
	case StepBusinessExperience:
		return businessExperienceGate(d)
	case StepLocation:
		return locationGate(d)
	case StepPackages:
		return packagesGate(d)
	case StepRequirements:
		return requirementsGate(d)
	default:
		return nil
	}
}

func personalInfoGate(d models.Draft) []FieldError {
	var errs []FieldError
	errs = requireText(errs, "personal.firstName", d.Personal.FirstName)
	errs = requireText(errs, "personal.lastName", d.Personal.LastName)
	errs = requireText(errs, "email", d.Email)
	errs = requireText(errs, "personal.phone", d.Personal.Phone)
	errs = requireText(errs, "personal.dateOfBirth", d.Personal.DateOfBirth)
	errs = requireText(errs, "personal.nationality", d.Personal.Nationality)
	errs = requireText(errs, "personal.civilStatus", d.Personal.CivilStatus)
	return errs
}

// businessExperienceGate requires both yes/no selections to be explicit
// choices. A form-supplied default counts once the field has been set; an
// untouched nil does not.
func businessExperienceGate(d models.Draft) []FieldError {
	var errs []FieldError
	if d.Experience.HasExistingBusiness == nil {
		errs = append(errs, FieldError{Field: "experience.hasExistingBusiness", Message: "selection is required"})
	}
	if d.Experience.HasAgentExperience == nil {
		errs = append(errs, FieldError{Field: "experience.hasAgentExperience", Message: "selection is required"})
	}
	return errs
}

// locationGate is the only gate over correlated numeric fields: latitude and
// longitude must be present together.
func locationGate(d models.Draft) []FieldError {
	var errs []FieldError
	errs = requireText(errs, "location.proposed", d.Location.Proposed)
	errs = requireText(errs, "location.region", d.Location.Region)
	errs = requireText(errs, "location.city", d.Location.City)
	errs = requireText(errs, "location.street", d.Location.Street)
	errs = requireText(errs, "location.zip", d.Location.Zip)
	if d.Location.Latitude == nil {
		errs = append(errs, FieldError{Field: "location.latitude", Message: "is required"})
	}
	if d.Location.Longitude == nil {
		errs = append(errs, FieldError{Field: "location.longitude", Message: "is required"})
	}
	return errs
}

func packagesGate(d models.Draft) []FieldError {
	if d.Package == "" {
		return []FieldError{{Field: "package", Message: "a plan selection is required"}}
	}
	return nil
}

func requirementsGate(d models.Draft) []FieldError {
	var errs []FieldError
	errs = requireText(errs, "requirements.signature", d.Requirement.Signature)
	if !d.Requirement.CertifiedAccurate {
		errs = append(errs, FieldError{Field: "requirements.certifiedAccurate", Message: "certification is required"})
	}
	if !d.Requirement.AgreedToTerms {
		errs = append(errs, FieldError{Field: "requirements.agreedToTerms", Message: "certification is required"})
	}
	for _, slot := range mandatorySlots {
		if !d.Requirement.Files[slot].Present() {
			errs = append(errs, FieldError{Field: "requirements.files." + slot, Message: "upload is required"})
		}
	}
	if BusinessPermitRequired(d) && !d.Requirement.Files[models.SlotBusinessPermit].Present() {
		errs = append(errs, FieldError{Field: "requirements.files." + models.SlotBusinessPermit, Message: "upload is required for existing businesses"})
	}
	return errs
}

var mandatorySlots = []string{
	models.SlotIDFront,
	models.SlotIDBack,
	models.SlotSelfieWithID,
	models.SlotProofOfAddress,
}

// BusinessPermitRequired is the cross-step rule: the permit slot is required
// exactly when the applicant declared an existing business back on the
// experience step. It is a function of the whole draft, not of one step's
// fields.
func BusinessPermitRequired(d models.Draft) bool {
	return d.Experience.HasExistingBusiness != nil && *d.Experience.HasExistingBusiness
}

func requireText(errs []FieldError, field, value string) []FieldError {
	if strings.TrimSpace(value) == "" {
		errs = append(errs, FieldError{Field: field, Message: "is required"})
	}
	return errs
}
