package wizard

import (
	dErrors "agentportal/pkg/domain-errors"

	"agentportal/internal/application/models"
)

// ApplyUpdate is the reducer for draft mutations: it returns a new draft with
// each non-nil section of the update replacing the corresponding section
// wholesale. The input draft is not modified, which keeps every transition
// auditable and testable in isolation from rendering.
//
// The draft's email cannot change through an update, and a location carrying
// exactly one of latitude/longitude is refused to preserve the pairing
// invariant.
func ApplyUpdate(d models.Draft, u models.SectionUpdate) (models.Draft, error) {
	if u.Location != nil {
		lat, lng := u.Location.Latitude, u.Location.Longitude
		if (lat == nil) != (lng == nil) {
			return d, dErrors.New(dErrors.CodeValidation, "latitude and longitude must be provided together")
		}
	}
	if u.CurrentStep != nil && (*u.CurrentStep < 0 || *u.CurrentStep > LastApplicantStep) {
		return d, dErrors.New(dErrors.CodeValidation, "step index out of range")
	}

	next := d
	if u.CurrentStep != nil {
		next.CurrentStep = *u.CurrentStep
	}
	if u.Personal != nil {
		next.Personal = *u.Personal
	}
	if u.Experience != nil {
		next.Experience = *u.Experience
	}
	if u.Location != nil {
		next.Location = *u.Location
	}
	if u.Package != nil {
		next.Package = *u.Package
	}
	if u.Requirement != nil {
		req := *u.Requirement
		if req.Files == nil {
			req.Files = map[string]models.FileRef{}
		}
		next.Requirement = req
	}
	return next, nil
}
