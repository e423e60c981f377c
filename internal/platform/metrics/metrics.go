// Package metrics provides observability for the shop server.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers performance and gameplay metrics.
type Collector struct {
	// Tick metrics
	TickCount      int64
	TickLatencySum int64 // nanoseconds
	TickLatencyMax int64
	LastTickTime   time.Time

	// Event metrics
	EventsWritten    int64
	EventWriteLatSum int64
	EventWriteLatMax int64
	EventWriteErrors int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// Gameplay metrics
	JobsOffered   int64
	JobsAccepted  int64
	JobsCompleted int64
	JobsOverdue   int64
	ScreensBurned int64
	PrintsPulled  int64
	RevenueCents  int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordTick records a tick cycle completion.
func (c *Collector) RecordTick(latency time.Duration) {
	atomic.AddInt64(&c.TickCount, 1)
	atomic.AddInt64(&c.TickLatencySum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.TickLatencyMax) {
		atomic.StoreInt64(&c.TickLatencyMax, int64(latency))
	}

	c.mu.Lock()
	c.LastTickTime = time.Now()
	c.mu.Unlock()
}

// RecordEventWrite records an event write to the database.
func (c *Collector) RecordEventWrite(latency time.Duration, err error) {
	atomic.AddInt64(&c.EventsWritten, 1)
	atomic.AddInt64(&c.EventWriteLatSum, int64(latency))

	if int64(latency) > atomic.LoadInt64(&c.EventWriteLatMax) {
		atomic.StoreInt64(&c.EventWriteLatMax, int64(latency))
	}

	if err != nil {
		atomic.AddInt64(&c.EventWriteErrors, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// RecordJobOffered records a generated job offer.
func (c *Collector) RecordJobOffered() {
	atomic.AddInt64(&c.JobsOffered, 1)
}

// RecordJobAccepted records a job taken off the board.
func (c *Collector) RecordJobAccepted() {
	atomic.AddInt64(&c.JobsAccepted, 1)
}

// RecordJobCompleted records a delivered job and its payment.
func (c *Collector) RecordJobCompleted(paymentCents int64) {
	atomic.AddInt64(&c.JobsCompleted, 1)
	atomic.AddInt64(&c.RevenueCents, paymentCents)
}

// RecordJobOverdue records a job that blew its due date.
func (c *Collector) RecordJobOverdue() {
	atomic.AddInt64(&c.JobsOverdue, 1)
}

// RecordScreenBurned records a burned screen.
func (c *Collector) RecordScreenBurned() {
	atomic.AddInt64(&c.ScreensBurned, 1)
}

// RecordPrintPulled records one squeegee pull on the press.
func (c *Collector) RecordPrintPulled() {
	atomic.AddInt64(&c.PrintsPulled, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tickCount := atomic.LoadInt64(&c.TickCount)
	eventsWritten := atomic.LoadInt64(&c.EventsWritten)

	// Calculate averages
	var tickAvg, eventAvg float64
	if tickCount > 0 {
		tickAvg = float64(atomic.LoadInt64(&c.TickLatencySum)) / float64(tickCount) / 1e6 // ms
	}
	if eventsWritten > 0 {
		eventAvg = float64(atomic.LoadInt64(&c.EventWriteLatSum)) / float64(eventsWritten) / 1e6
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"tick": map[string]interface{}{
			"count":          tickCount,
			"avg_latency_ms": tickAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.TickLatencyMax)) / 1e6,
			"last_tick":      c.LastTickTime.Format(time.RFC3339),
		},

		"events": map[string]interface{}{
			"written":          eventsWritten,
			"avg_write_lat_ms": eventAvg,
			"max_write_lat_ms": float64(atomic.LoadInt64(&c.EventWriteLatMax)) / 1e6,
			"errors":           atomic.LoadInt64(&c.EventWriteErrors),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},

		"shop": map[string]interface{}{
			"jobs_offered":   atomic.LoadInt64(&c.JobsOffered),
			"jobs_accepted":  atomic.LoadInt64(&c.JobsAccepted),
			"jobs_completed": atomic.LoadInt64(&c.JobsCompleted),
			"jobs_overdue":   atomic.LoadInt64(&c.JobsOverdue),
			"screens_burned": atomic.LoadInt64(&c.ScreensBurned),
			"prints_pulled":  atomic.LoadInt64(&c.PrintsPulled),
			"revenue_cents":  atomic.LoadInt64(&c.RevenueCents),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		snapshot := collector.Snapshot()
		json.NewEncoder(w).Encode(snapshot)
	}
}

// PrometheusHandler returns metrics in Prometheus format.
func PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		c := collector

		fmt.Fprintf(w, "# HELP pressworks_tick_count Total tick cycles\n")
		fmt.Fprintf(w, "# TYPE pressworks_tick_count counter\n")
		fmt.Fprintf(w, "pressworks_tick_count %d\n\n", atomic.LoadInt64(&c.TickCount))

		fmt.Fprintf(w, "# HELP pressworks_tick_latency_max_ms Maximum tick latency\n")
		fmt.Fprintf(w, "# TYPE pressworks_tick_latency_max_ms gauge\n")
		fmt.Fprintf(w, "pressworks_tick_latency_max_ms %.2f\n\n", float64(atomic.LoadInt64(&c.TickLatencyMax))/1e6)

		fmt.Fprintf(w, "# HELP pressworks_events_written Total events written\n")
		fmt.Fprintf(w, "# TYPE pressworks_events_written counter\n")
		fmt.Fprintf(w, "pressworks_events_written %d\n\n", atomic.LoadInt64(&c.EventsWritten))

		fmt.Fprintf(w, "# HELP pressworks_event_write_errors Total event write errors\n")
		fmt.Fprintf(w, "# TYPE pressworks_event_write_errors counter\n")
		fmt.Fprintf(w, "pressworks_event_write_errors %d\n\n", atomic.LoadInt64(&c.EventWriteErrors))

		fmt.Fprintf(w, "# HELP pressworks_ws_connections Active WebSocket connections\n")
		fmt.Fprintf(w, "# TYPE pressworks_ws_connections gauge\n")
		fmt.Fprintf(w, "pressworks_ws_connections %d\n\n", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP pressworks_ws_messages_total Total WebSocket messages\n")
		fmt.Fprintf(w, "# TYPE pressworks_ws_messages_total counter\n")
		fmt.Fprintf(w, "pressworks_ws_messages_total{direction=\"in\"} %d\n", atomic.LoadInt64(&c.WSMessagesIn))
		fmt.Fprintf(w, "pressworks_ws_messages_total{direction=\"out\"} %d\n\n", atomic.LoadInt64(&c.WSMessagesOut))

		fmt.Fprintf(w, "# HELP pressworks_jobs_total Job lifecycle counters\n")
		fmt.Fprintf(w, "# TYPE pressworks_jobs_total counter\n")
		fmt.Fprintf(w, "pressworks_jobs_total{stage=\"offered\"} %d\n", atomic.LoadInt64(&c.JobsOffered))
		fmt.Fprintf(w, "pressworks_jobs_total{stage=\"accepted\"} %d\n", atomic.LoadInt64(&c.JobsAccepted))
		fmt.Fprintf(w, "pressworks_jobs_total{stage=\"completed\"} %d\n", atomic.LoadInt64(&c.JobsCompleted))
		fmt.Fprintf(w, "pressworks_jobs_total{stage=\"overdue\"} %d\n\n", atomic.LoadInt64(&c.JobsOverdue))

		fmt.Fprintf(w, "# HELP pressworks_screens_burned Total screens burned\n")
		fmt.Fprintf(w, "# TYPE pressworks_screens_burned counter\n")
		fmt.Fprintf(w, "pressworks_screens_burned %d\n\n", atomic.LoadInt64(&c.ScreensBurned))

		fmt.Fprintf(w, "# HELP pressworks_revenue_cents Total revenue collected\n")
		fmt.Fprintf(w, "# TYPE pressworks_revenue_cents counter\n")
		fmt.Fprintf(w, "pressworks_revenue_cents %d\n", atomic.LoadInt64(&c.RevenueCents))
	}
}
