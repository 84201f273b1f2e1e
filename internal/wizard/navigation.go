package wizard

import "agentportal/internal/application/models"

// Advance attempts the transition from step i to i+1. It returns the new step
// index and a nil error list when the gate passes; when the gate refuses, the
// index is unchanged and the unmet fields are returned. Advancing past the
// last applicant-facing step is refused; that transition is Submit.
func Advance(d models.Draft, i int) (int, []FieldError) {
	if i >= LastApplicantStep {
		return i, []FieldError{{Field: "step", Message: "no further step; submit instead"}}
	}
	if errs := RequiredFields(d, i); len(errs) > 0 {
		return i, errs
	}
	return i + 1, nil
}

// Retreat moves back one step. It is unconditional for i > 0 and never
// mutates the draft; retreating from the first step stays at the first step.
func Retreat(i int) int {
	if i > 0 {
		return i - 1
	}
	return 0
}

// CanSubmit evaluates the submission gate. Submission is allowed only from
// the last applicant-facing step; every applicant-facing gate is re-checked so
// a manually saved draft that blanked an earlier section cannot slip through.
func CanSubmit(d models.Draft) []FieldError {
	if d.CurrentStep != LastApplicantStep {
		return []FieldError{{Field: "step", Message: "submission is only allowed from the final step"}}
	}
	var errs []FieldError
	for step := 0; step <= LastApplicantStep; step++ {
		errs = append(errs, RequiredFields(d, step)...)
	}
	return errs
}
