package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/squeegeesoft/pressworks/server/internal/domain/catalog"
	"github.com/squeegeesoft/pressworks/server/internal/domain/job"
	"github.com/squeegeesoft/pressworks/server/internal/domain/shop"
	"github.com/squeegeesoft/pressworks/server/internal/events"
	"github.com/squeegeesoft/pressworks/server/internal/platform/config"
	"github.com/squeegeesoft/pressworks/server/internal/platform/logger"
	"github.com/squeegeesoft/pressworks/server/internal/platform/metrics"
)

// JobOfferedPayload carries the full order sheet to the terminal UI.
type JobOfferedPayload struct {
	Job              job.Job `json:"job"`
	TooComplex       bool    `json:"too_complex"`
	RecommendedStaff int     `json:"recommended_staff"`
}

// JobClosedPayload is attached to JOB_ACCEPTED / JOB_DECLINED / JOB_COMPLETED / JOB_OVERDUE.
type JobClosedPayload struct {
	JobID        string `json:"job_id"`
	Customer     string `json:"customer"`
	PaymentCents int64  `json:"payment_cents"`
	WasAccepted  bool   `json:"was_accepted"`
}

// JobSystem generates, scores, and tracks customer print orders. It owns the
// job table; screens and the press reference jobs through it.
type JobSystem struct {
	eventLog *events.EventLog
	logger   *logger.Logger
	balance  config.Balance
	shop     *shop.Shop

	jobs map[string]*job.Job
	rng  *rand.Rand

	// screensReady reports whether every separation of a job has a burned
	// screen. Wired by the Engine to the ScreenSystem.
	screensReady func(*job.Job) bool

	customerQueue []string
	customerNext  int
}

// NewJobSystem creates the job manager.
func NewJobSystem(eventLog *events.EventLog, log *logger.Logger, bal config.Balance, sh *shop.Shop) *JobSystem {
	js := &JobSystem{
		eventLog:     eventLog,
		logger:       log,
		balance:      bal,
		shop:         sh,
		jobs:         make(map[string]*job.Job),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		screensReady: func(*job.Job) bool { return false },
	}
	js.reshuffleCustomers()
	return js
}

// SetSeed makes generation deterministic. Test hook.
func (js *JobSystem) SetSeed(seed int64) {
	js.rng = rand.New(rand.NewSource(seed))
	js.reshuffleCustomers()
}

// SetScreensReady wires the screen-readiness check used by Complete.
func (js *JobSystem) SetScreensReady(fn func(*job.Job) bool) {
	js.screensReady = fn
}

// Restore puts a persisted job back into the table. Used at boot.
func (js *JobSystem) Restore(j *job.Job) {
	js.jobs[j.ID] = j
}

// OnDayStarted expires yesterday's offers, flags overdue work, and rolls
// fresh offers for the new day.
func (js *JobSystem) OnDayStarted(event events.ShopEvent) {
	payload, ok := event.Payload.(DayStartedPayload)
	if !ok {
		return
	}
	day := payload.Day

	for _, j := range js.jobs {
		switch j.Status {
		case job.StatusOffered:
			if j.OfferedDay < day {
				j.Status = job.StatusDeclined
				js.logger.Event("OFFER_EXPIRED", "SYSTEM_CLOCK", j.Customer+" took their order elsewhere")
			}
		case job.StatusAccepted:
			if !j.Overdue && day > j.DueDay {
				j.Overdue = true
				metrics.Get().RecordJobOverdue()
				js.eventLog.Append(events.ShopEvent{
					ID:        events.GenerateEventID(),
					Timestamp: time.Now(),
					Type:      events.EventTypeJobOverdue,
					ActorID:   "SYSTEM_CLOCK",
					TargetID:  j.ID,
					Payload:   JobClosedPayload{JobID: j.ID, Customer: j.Customer, PaymentCents: j.PaymentCents, WasAccepted: true},
					GameDay:   day,
				})
			}
		}
	}

	count := 1 + js.rng.Intn(js.balance.MaxJobsPerDay)
	for i := 0; i < count; i++ {
		js.generateJob(day)
	}
	js.logger.Infof("Day %d: %d new job offers on the board.", day, count)
}

// generateJob rolls one order: a customer from the shuffled pool, a garment,
// a set of non-conflicting print locations, a crew-bounded shirt count, and
// a due date. The payment is fixed here and never changes.
func (js *JobSystem) generateJob(day int) *job.Job {
	customer := js.nextCustomer()

	garments := catalog.AllGarments()
	garment := garments[js.rng.Intn(len(garments))]

	wanted := 1 + js.rng.Intn(js.balance.MaxLocations)
	var picked []catalog.LocationID
	var prints []job.Print
	for _, i := range js.rng.Perm(len(catalog.AllLocations())) {
		if len(prints) >= wanted {
			break
		}
		loc := catalog.AllLocations()[i]
		if catalog.ConflictsWithAny(loc, picked) {
			continue
		}
		def := catalog.Locations[loc]
		picked = append(picked, loc)
		prints = append(prints, job.Print{
			Location: loc,
			Colors:   1 + js.rng.Intn(def.MaxColors),
		})
	}

	maxQty := job.MaxQuantityFor(js.shop.Staff, js.balance.ShirtsPerStaff)
	if maxQty < js.balance.MinQuantity {
		maxQty = js.balance.MinQuantity
	}
	quantity := js.balance.MinQuantity + js.rng.Intn(maxQty-js.balance.MinQuantity+1)

	due := day + js.balance.DueDayMin
	if spread := js.balance.DueDayMax - js.balance.DueDayMin; spread > 0 {
		due += js.rng.Intn(spread + 1)
	}

	j := &job.Job{
		ID:           uuid.NewString(),
		Customer:     customer,
		Garment:      garment,
		Prints:       prints,
		Quantity:     quantity,
		DueDay:       due,
		PaymentCents: job.Price(js.balance.BasePriceCents, garment, prints, quantity),
		Status:       job.StatusOffered,
		OfferedDay:   day,
	}
	js.jobs[j.ID] = j

	metrics.Get().RecordJobOffered()
	js.eventLog.Append(events.ShopEvent{
		ID:        events.GenerateEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeJobOffered,
		ActorID:   "SYSTEM_JOBS",
		TargetID:  j.ID,
		Payload: JobOfferedPayload{
			Job:              *j,
			TooComplex:       j.TooComplex(js.shop.Staff),
			RecommendedStaff: j.RecommendedStaff(),
		},
		GameDay: day,
	})
	return j
}

// nextCustomer walks the shuffled name pool, reshuffling when exhausted.
func (js *JobSystem) nextCustomer() string {
	if js.customerNext >= len(js.customerQueue) {
		js.reshuffleCustomers()
	}
	name := js.customerQueue[js.customerNext]
	js.customerNext++
	return name
}

func (js *JobSystem) reshuffleCustomers() {
	js.customerQueue = append([]string(nil), catalog.CustomerPool...)
	if js.rng != nil {
		js.rng.Shuffle(len(js.customerQueue), func(i, k int) {
			js.customerQueue[i], js.customerQueue[k] = js.customerQueue[k], js.customerQueue[i]
		})
	}
	js.customerNext = 0
}

// Accept takes an offered job off the board. Too-complex jobs are allowed
// through with a warning; the terminal UI already showed the dialog.
func (js *JobSystem) Accept(jobID, actor string, day int) error {
	j, ok := js.jobs[jobID]
	if !ok {
		return fmt.Errorf("unknown job %s", jobID)
	}
	if j.Status != job.StatusOffered {
		return fmt.Errorf("job %s is not on the board (status %s)", jobID, j.Status)
	}

	if j.TooComplex(js.shop.Staff) {
		js.logger.Warnf("Accepted job %s needs %d screens; crew of %d is in over their heads (recommend %d).",
			jobID, j.TotalColors(), js.shop.Staff, j.RecommendedStaff())
	}

	j.Status = job.StatusAccepted
	metrics.Get().RecordJobAccepted()
	js.eventLog.Append(events.ShopEvent{
		ID:        events.GenerateEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeJobAccepted,
		ActorID:   actor,
		TargetID:  j.ID,
		Payload:   JobClosedPayload{JobID: j.ID, Customer: j.Customer, PaymentCents: j.PaymentCents, WasAccepted: true},
		GameDay:   day,
	})
	js.logger.Event("JOB_ACCEPTED", actor, j.Customer+" | "+fmt.Sprintf("%d shirts, %d screens", j.Quantity, j.TotalColors()))
	return nil
}

// Decline passes on an offer, or cancels a job already in the shop.
// Cancelled work is simply gone; there is no refund model.
func (js *JobSystem) Decline(jobID, actor string, day int) error {
	j, ok := js.jobs[jobID]
	if !ok {
		return fmt.Errorf("unknown job %s", jobID)
	}
	if j.Status != job.StatusOffered && j.Status != job.StatusAccepted {
		return fmt.Errorf("job %s cannot be declined (status %s)", jobID, j.Status)
	}

	wasAccepted := j.Status == job.StatusAccepted
	j.Status = job.StatusDeclined
	js.eventLog.Append(events.ShopEvent{
		ID:        events.GenerateEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeJobDeclined,
		ActorID:   actor,
		TargetID:  j.ID,
		Payload:   JobClosedPayload{JobID: j.ID, Customer: j.Customer, PaymentCents: j.PaymentCents, WasAccepted: wasAccepted},
		GameDay:   day,
	})
	return nil
}

// Complete delivers a finished job. Every separation must have a burned
// screen and every shirt must have come off the press. Payment is handled
// by the EconomySystem reacting to the JOB_COMPLETED event.
func (js *JobSystem) Complete(jobID, actor string, day int) error {
	j, ok := js.jobs[jobID]
	if !ok {
		return fmt.Errorf("unknown job %s", jobID)
	}
	if j.Status != job.StatusAccepted {
		return fmt.Errorf("job %s is not in the shop (status %s)", jobID, j.Status)
	}
	if !js.screensReady(j) {
		return fmt.Errorf("job %s still has unburned screens", jobID)
	}
	if j.PrintedShirts < j.Quantity {
		return fmt.Errorf("job %s has %d/%d shirts printed", jobID, j.PrintedShirts, j.Quantity)
	}

	j.Status = job.StatusCompleted
	metrics.Get().RecordJobCompleted(j.PaymentCents)
	js.eventLog.Append(events.ShopEvent{
		ID:        events.GenerateEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeJobCompleted,
		ActorID:   actor,
		TargetID:  j.ID,
		Payload:   JobClosedPayload{JobID: j.ID, Customer: j.Customer, PaymentCents: j.PaymentCents, WasAccepted: true},
		GameDay:   day,
	})
	js.logger.Event("JOB_COMPLETED", actor, j.Customer+" | paid "+fmt.Sprintf("%d cents", j.PaymentCents))
	return nil
}

// OnShirtFinished reacts to a finished garment coming off the press.
func (js *JobSystem) OnShirtFinished(event events.ShopEvent) {
	payload, ok := event.Payload.(ShirtUnloadedPayload)
	if !ok || !payload.Finished {
		return
	}
	j, exists := js.jobs[payload.JobID]
	if !exists || !j.IsOpen() {
		return
	}
	if j.PrintedShirts < j.Quantity {
		j.PrintedShirts++
	}
}

// Get returns a job by id, or nil.
func (js *JobSystem) Get(jobID string) *job.Job {
	return js.jobs[jobID]
}

// Offers returns jobs currently on the terminal board.
func (js *JobSystem) Offers() []*job.Job {
	var result []*job.Job
	for _, j := range js.jobs {
		if j.Status == job.StatusOffered {
			result = append(result, j)
		}
	}
	return result
}

// OpenJobs returns accepted, undelivered jobs.
func (js *JobSystem) OpenJobs() []*job.Job {
	var result []*job.Job
	for _, j := range js.jobs {
		if j.Status == job.StatusAccepted {
			result = append(result, j)
		}
	}
	return result
}

// Jobs returns the whole table. Used by the snapshot backup routine.
func (js *JobSystem) Jobs() map[string]*job.Job {
	return js.jobs
}
