package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentportal/internal/application/models"
)

func TestAdvanceRefusedUntilGateSatisfied(t *testing.T) {
	d := models.NewDraft("a@x.com")

	next, errs := Advance(d, StepPersonalInfo)
	assert.Equal(t, StepPersonalInfo, next)
	assert.NotEmpty(t, errs)

	d.Personal = completeDraft().Personal
	next, errs = Advance(d, StepPersonalInfo)
	assert.Equal(t, StepBusinessExperience, next)
	assert.Empty(t, errs)
}

func TestAdvanceFromLastStepRefused(t *testing.T) {
	d := completeDraft()
	next, errs := Advance(d, LastApplicantStep)
	assert.Equal(t, LastApplicantStep, next)
	require.Len(t, errs, 1)
	assert.Equal(t, "step", errs[0].Field)
}

func TestRetreatUnconditional(t *testing.T) {
	// Retreat succeeds regardless of field state and clamps at zero.
	assert.Equal(t, StepLocation, Retreat(StepPackages))
	assert.Equal(t, 0, Retreat(1))
	assert.Equal(t, 0, Retreat(0))
}

// Retreat never destroys data: navigation alone does not touch the draft, so
// retreating and advancing back yields the identical value.
func TestRetreatThenAdvancePreservesFields(t *testing.T) {
	d := completeDraft()
	d.CurrentStep = StepLocation
	before := d

	d.CurrentStep = Retreat(d.CurrentStep)
	next, errs := Advance(d, d.CurrentStep)
	require.Empty(t, errs)
	d.CurrentStep = next

	assert.Equal(t, before, d)
}

func TestCanSubmitOnlyFromLastStep(t *testing.T) {
	d := completeDraft()
	d.CurrentStep = StepPackages
	errs := CanSubmit(d)
	require.Len(t, errs, 1)
	assert.Equal(t, "step", errs[0].Field)

	d.CurrentStep = LastApplicantStep
	assert.Empty(t, CanSubmit(d))
}

func TestCanSubmitRechecksEarlierSteps(t *testing.T) {
	d := completeDraft()
	d.Package = ""
	errs := CanSubmit(d)
	require.Len(t, errs, 1)
	assert.Equal(t, "package", errs[0].Field)
}

func TestProjectProgress(t *testing.T) {
	p := Project(StepLocation)
	assert.Equal(t, StepLocation, p.Current)
	assert.Equal(t, ApplicantStepCount(), p.Total)
	assert.Equal(t, []bool{true, true, true, false, false}, p.Segments)

	p = Project(0)
	assert.Equal(t, []bool{true, false, false, false, false}, p.Segments)
}

func TestApplyUpdateReplacesSections(t *testing.T) {
	d := models.NewDraft("a@x.com")
	full := completeDraft()

	next, err := ApplyUpdate(d, models.SectionUpdate{
		Personal: &full.Personal,
		Package:  planPtr(models.PlanPremium),
	})
	require.NoError(t, err)
	assert.Equal(t, full.Personal, next.Personal)
	assert.Equal(t, models.PlanPremium, next.Package)
	// Untouched sections are preserved; the input draft is unchanged.
	assert.Equal(t, d.Experience, next.Experience)
	assert.Empty(t, d.Personal.FirstName)
}

func TestApplyUpdateRefusesLoneCoordinate(t *testing.T) {
	d := models.NewDraft("a@x.com")
	loc := models.BusinessLocation{Latitude: floatPtr(14.6)}
	_, err := ApplyUpdate(d, models.SectionUpdate{Location: &loc})
	assert.Error(t, err)
}

func TestApplyUpdateRefusesOutOfRangeStep(t *testing.T) {
	d := models.NewDraft("a@x.com")
	bad := StepActivation
	_, err := ApplyUpdate(d, models.SectionUpdate{CurrentStep: &bad})
	assert.Error(t, err)

	negative := -1
	_, err = ApplyUpdate(d, models.SectionUpdate{CurrentStep: &negative})
	assert.Error(t, err)
}

func TestApplyUpdateCannotChangeEmail(t *testing.T) {
	d := models.NewDraft("a@x.com")
	next, err := ApplyUpdate(d, models.SectionUpdate{Personal: &models.PersonalInfo{FirstName: "Ana"}})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", next.Email)
}
