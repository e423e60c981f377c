package job

import "github.com/squeegeesoft/pressworks/server/internal/domain/catalog"

// Screen is one physical mesh screen burned for a single color separation
// of a single print location. A screen always references a valid job id.
type Screen struct {
	ID         string             `json:"id"`
	JobID      string             `json:"job_id"`
	Location   catalog.LocationID `json:"location"`
	ColorIndex int                `json:"color_index"` // 0-based separation index
	Burned     bool               `json:"burned"`
}

// MatchesJob reports whether the screen belongs to one of the job's prints.
func (s *Screen) MatchesJob(j *Job) bool {
	if s.JobID != j.ID {
		return false
	}
	return s.ColorIndex >= 0 && s.ColorIndex < j.ColorsAt(s.Location)
}
