package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/squeegeesoft/pressworks/server/internal/domain/catalog"
	"github.com/squeegeesoft/pressworks/server/internal/domain/job"
	"github.com/squeegeesoft/pressworks/server/internal/events"
	"github.com/squeegeesoft/pressworks/server/internal/platform/logger"
	"github.com/squeegeesoft/pressworks/server/internal/platform/metrics"
)

// ScreenBurnedPayload is attached to SCREEN_BURNED.
type ScreenBurnedPayload struct {
	Screen job.Screen `json:"screen"`
	// Progress counts burned separations over the job's total.
	Burned   int `json:"burned"`
	Required int `json:"required"`
}

// ScreenReclaimedPayload is attached to SCREEN_RECLAIMED.
type ScreenReclaimedPayload struct {
	ScreenID string `json:"screen_id"`
	JobID    string `json:"job_id"`
}

// ScreenSystem manages the physical screens of the shop: burning one per
// color separation, tracking job readiness, and reclaiming mesh once a job
// leaves the shop. A screen always references a job that exists.
type ScreenSystem struct {
	eventLog *events.EventLog
	logger   *logger.Logger

	screens map[string]*job.Screen

	// lookupJob resolves a job id against the JobSystem table. Wired by the Engine.
	lookupJob func(string) *job.Job
}

// NewScreenSystem creates the screen room.
func NewScreenSystem(eventLog *events.EventLog, log *logger.Logger) *ScreenSystem {
	return &ScreenSystem{
		eventLog: eventLog,
		logger:   log,
		screens:  make(map[string]*job.Screen),
		lookupJob: func(string) *job.Job {
			return nil
		},
	}
}

// SetJobLookup wires the job resolver.
func (ss *ScreenSystem) SetJobLookup(fn func(string) *job.Job) {
	ss.lookupJob = fn
}

// Restore puts a persisted screen back. Used at boot; skips orphans.
func (ss *ScreenSystem) Restore(s *job.Screen) {
	if ss.lookupJob(s.JobID) == nil {
		ss.logger.Warn("Dropping orphaned screen " + s.ID + " for missing job " + s.JobID)
		return
	}
	ss.screens[s.ID] = s
}

// Burn exposes and washes out one screen for a single separation of an
// accepted job. Burning the same separation twice is rejected.
func (ss *ScreenSystem) Burn(jobID string, loc catalog.LocationID, colorIndex int, actor string, day int) (*job.Screen, error) {
	j := ss.lookupJob(jobID)
	if j == nil {
		return nil, fmt.Errorf("unknown job %s", jobID)
	}
	if !j.IsOpen() {
		return nil, fmt.Errorf("job %s is not in the shop (status %s)", jobID, j.Status)
	}
	colors := j.ColorsAt(loc)
	if colors == 0 {
		return nil, fmt.Errorf("job %s has no %s print", jobID, loc)
	}
	if colorIndex < 0 || colorIndex >= colors {
		return nil, fmt.Errorf("job %s %s print has %d separations, asked for index %d", jobID, loc, colors, colorIndex)
	}
	for _, s := range ss.screens {
		if s.JobID == jobID && s.Location == loc && s.ColorIndex == colorIndex {
			return nil, fmt.Errorf("separation %s/%d for job %s already burned", loc, colorIndex, jobID)
		}
	}

	s := &job.Screen{
		ID:         uuid.NewString(),
		JobID:      jobID,
		Location:   loc,
		ColorIndex: colorIndex,
		Burned:     true,
	}
	ss.screens[s.ID] = s

	metrics.Get().RecordScreenBurned()
	ss.eventLog.Append(events.ShopEvent{
		ID:        events.GenerateEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeScreenBurned,
		ActorID:   actor,
		TargetID:  s.ID,
		Payload: ScreenBurnedPayload{
			Screen:   *s,
			Burned:   ss.BurnedFor(jobID),
			Required: j.TotalColors(),
		},
		GameDay: day,
	})
	return s, nil
}

// BurnedFor counts burned screens belonging to a job.
func (ss *ScreenSystem) BurnedFor(jobID string) int {
	count := 0
	for _, s := range ss.screens {
		if s.JobID == jobID && s.Burned {
			count++
		}
	}
	return count
}

// Ready reports whether every separation of every print has a burned screen.
func (ss *ScreenSystem) Ready(j *job.Job) bool {
	for _, p := range j.Prints {
		for idx := 0; idx < p.Colors; idx++ {
			if !ss.hasBurned(j.ID, p.Location, idx) {
				return false
			}
		}
	}
	return true
}

func (ss *ScreenSystem) hasBurned(jobID string, loc catalog.LocationID, colorIndex int) bool {
	for _, s := range ss.screens {
		if s.JobID == jobID && s.Location == loc && s.ColorIndex == colorIndex && s.Burned {
			return true
		}
	}
	return false
}

// Get returns a screen by id, or nil.
func (ss *ScreenSystem) Get(screenID string) *job.Screen {
	return ss.screens[screenID]
}

// Screens returns the whole rack. Used by the snapshot backup routine.
func (ss *ScreenSystem) Screens() map[string]*job.Screen {
	return ss.screens
}

// OnJobClosed reclaims every screen of a job that left the shop
// (completed or cancelled after acceptance).
func (ss *ScreenSystem) OnJobClosed(event events.ShopEvent) {
	payload, ok := event.Payload.(JobClosedPayload)
	if !ok {
		return
	}
	for id, s := range ss.screens {
		if s.JobID != payload.JobID {
			continue
		}
		delete(ss.screens, id)
		ss.eventLog.Append(events.ShopEvent{
			ID:        events.GenerateEventID(),
			Timestamp: time.Now(),
			Type:      events.EventTypeScreenReclaimed,
			ActorID:   "SYSTEM_SCREENS",
			TargetID:  id,
			Payload:   ScreenReclaimedPayload{ScreenID: id, JobID: payload.JobID},
			GameDay:   event.GameDay,
		})
	}
}
