// Package network - frontdesk.go
// FrontDesk is the REST bridge for the in-game terminal UI: the job board,
// the ledger, the daily summary, and the clock controls.
package network

import (
	"encoding/json"
	"net/http"

	"github.com/squeegeesoft/pressworks/server/internal/engine"
	"github.com/squeegeesoft/pressworks/server/internal/platform/logger"
)

// FrontDesk handles terminal interactions.
type FrontDesk struct {
	engine *engine.Engine
	logger *logger.Logger
}

// NewFrontDesk creates the terminal API handler.
func NewFrontDesk(eng *engine.Engine, log *logger.Logger) *FrontDesk {
	return &FrontDesk{engine: eng, logger: log}
}

// Routes registers the terminal endpoints on a mux.
func (fd *FrontDesk) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/offers", fd.HandleOffers)
	mux.HandleFunc("/api/jobs", fd.HandleOpenJobs)
	mux.HandleFunc("/api/jobs/accept", fd.HandleAccept)
	mux.HandleFunc("/api/jobs/decline", fd.HandleDecline)
	mux.HandleFunc("/api/jobs/complete", fd.HandleComplete)
	mux.HandleFunc("/api/status", fd.HandleStatus)
	mux.HandleFunc("/api/press", fd.HandlePress)
	mux.HandleFunc("/api/summary", fd.HandleSummary)
	mux.HandleFunc("/api/day/advance", fd.HandleAdvanceDay)
	mux.HandleFunc("/api/clock/scale", fd.HandleTimeScale)
	mux.HandleFunc("/api/hire", fd.HandleHire)
}

// HandleOffers lists jobs currently on the board.
// GET /api/offers
func (fd *FrontDesk) HandleOffers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		fd.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	fd.jsonOK(w, map[string]interface{}{"offers": fd.engine.Offers()})
}

// HandleOpenJobs lists accepted work with screen progress.
// GET /api/jobs
func (fd *FrontDesk) HandleOpenJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		fd.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	fd.jsonOK(w, map[string]interface{}{"jobs": fd.engine.OpenJobs()})
}

type jobRequest struct {
	JobID string `json:"job_id"`
}

// HandleAccept takes an offer. POST /api/jobs/accept
func (fd *FrontDesk) HandleAccept(w http.ResponseWriter, r *http.Request) {
	fd.jobCommand(w, r, fd.engine.AcceptJob)
}

// HandleDecline passes on an offer or cancels accepted work.
// POST /api/jobs/decline
func (fd *FrontDesk) HandleDecline(w http.ResponseWriter, r *http.Request) {
	fd.jobCommand(w, r, fd.engine.DeclineJob)
}

// HandleComplete delivers a finished order. POST /api/jobs/complete
func (fd *FrontDesk) HandleComplete(w http.ResponseWriter, r *http.Request) {
	fd.jobCommand(w, r, fd.engine.CompleteJob)
}

func (fd *FrontDesk) jobCommand(w http.ResponseWriter, r *http.Request, cmd func(jobID, actor string) error) {
	if r.Method != http.MethodPost {
		fd.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req jobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.JobID == "" {
		fd.jsonError(w, "Invalid payload", http.StatusBadRequest)
		return
	}
	if err := cmd(req.JobID, "TERMINAL"); err != nil {
		fd.logger.Warnf("Terminal command for job %s rejected: %v", req.JobID, err)
		fd.jsonError(w, err.Error(), http.StatusConflict)
		return
	}
	fd.jsonOK(w, map[string]string{"status": "ok"})
}

// HandleStatus returns the ledger and clock. GET /api/status
func (fd *FrontDesk) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		fd.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	day, elapsed, scale, awaiting := fd.engine.Clock()
	fd.jsonOK(w, map[string]interface{}{
		"shop": fd.engine.Shop(),
		"clock": map[string]interface{}{
			"day":              day,
			"elapsed":          elapsed,
			"scale":            scale,
			"awaiting_summary": awaiting,
		},
	})
}

// HandlePress returns the carousel snapshot. GET /api/press
func (fd *FrontDesk) HandlePress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		fd.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	fd.jsonOK(w, fd.engine.PressState())
}

// HandleSummary returns the end-of-day settlement view. GET /api/summary
func (fd *FrontDesk) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		fd.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	fd.jsonOK(w, fd.engine.Summary())
}

// HandleAdvanceDay dismisses the summary and opens the next day.
// POST /api/day/advance
func (fd *FrontDesk) HandleAdvanceDay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		fd.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	newDay, err := fd.engine.AdvanceDay()
	if err != nil {
		fd.jsonError(w, err.Error(), http.StatusConflict)
		return
	}
	fd.jsonOK(w, map[string]interface{}{"status": "ok", "day": newDay})
}

// HandleTimeScale changes simulation speed. POST /api/clock/scale
func (fd *FrontDesk) HandleTimeScale(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		fd.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Scale float64 `json:"scale"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fd.jsonError(w, "Invalid payload", http.StatusBadRequest)
		return
	}
	if err := fd.engine.SetTimeScale(req.Scale); err != nil {
		fd.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	fd.jsonOK(w, map[string]string{"status": "ok"})
}

// HandleHire puts another printer on the payroll. POST /api/hire
func (fd *FrontDesk) HandleHire(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		fd.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := fd.engine.HireEmployee("TERMINAL"); err != nil {
		fd.jsonError(w, err.Error(), http.StatusConflict)
		return
	}
	fd.jsonOK(w, map[string]string{"status": "ok"})
}

func (fd *FrontDesk) jsonOK(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (fd *FrontDesk) jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
