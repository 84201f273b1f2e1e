package wizard

// Progress is a pure projection of the current step index onto the
// applicant-facing step registry. Segments are filled up to and including the
// current index. Out-of-range indices cannot occur given navigation gating,
// so this projection does not defensively validate.
type Progress struct {
	Current  int    `json:"current"`
	Total    int    `json:"total"`
	Segments []bool `json:"segments"`
}

// Project builds the progress state for the given step index.
func Project(current int) Progress {
	total := ApplicantStepCount()
	segments := make([]bool, total)
	for i := 0; i <= current && i < total; i++ {
		segments[i] = true
	}
	return Progress{Current: current, Total: total, Segments: segments}
}
