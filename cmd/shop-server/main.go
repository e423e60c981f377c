// Package main is the entry point for the PressWorks shop server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/squeegeesoft/pressworks/server/internal/domain/catalog"
	"github.com/squeegeesoft/pressworks/server/internal/domain/job"
	"github.com/squeegeesoft/pressworks/server/internal/domain/shop"
	"github.com/squeegeesoft/pressworks/server/internal/engine"
	"github.com/squeegeesoft/pressworks/server/internal/events"
	"github.com/squeegeesoft/pressworks/server/internal/infra/cache"
	"github.com/squeegeesoft/pressworks/server/internal/infra/storage"
	"github.com/squeegeesoft/pressworks/server/internal/network"
	"github.com/squeegeesoft/pressworks/server/internal/platform/config"
	"github.com/squeegeesoft/pressworks/server/internal/platform/logger"
	"github.com/squeegeesoft/pressworks/server/internal/platform/metrics"
	"github.com/squeegeesoft/pressworks/server/internal/platform/optimization"
)

// Default singleton shop ID. One process runs one shop.
const shopID = "SHOP_1"

// SQLitePersisterAdapter translates domain events to storage events.
type SQLitePersisterAdapter struct {
	repo *storage.SQLiteEventRepository
}

func (a *SQLitePersisterAdapter) Append(event events.ShopEvent) error {
	payloadBytes, _ := json.Marshal(event.Payload)
	var payloadMap map[string]interface{}
	json.Unmarshal(payloadBytes, &payloadMap)

	storageEvent := storage.ShopEvent{
		ID:        event.ID,
		ShopID:    shopID,
		Timestamp: event.Timestamp,
		EventType: string(event.Type),
		ActorID:   event.ActorID,
		TargetID:  event.TargetID,
		Payload:   payloadMap,
		GameDay:   event.GameDay,
	}

	start := time.Now()
	err := a.repo.Append(context.Background(), storageEvent)
	metrics.Get().RecordEventWrite(time.Since(start), err)
	return err
}

// bootstrapShop loads the persisted shop or seeds a fresh one.
// Returns the shop aggregate and whether the database was empty.
func bootstrapShop(ctx context.Context, repo *storage.SQLiteSnapshotRepository, cfg config.Server, appLogger *logger.Logger) (*shop.Shop, bool) {
	bal := cfg.BalanceFor()

	snap, err := repo.GetShop(ctx, shopID)
	if err != nil {
		appLogger.Errorf("Failed to query DB for shop state: %v", err)
	}
	if snap == nil {
		appLogger.Info("Database empty. Opening a fresh shop...")
		return shop.NewShop(shopID, cfg.ShopName, bal.StartingMoneyCents, bal.StartingStaff), true
	}

	appLogger.Info("Reconstructing shop from SQLite state...")
	sh := shop.NewShop(snap.ShopID, snap.Name, snap.MoneyCents, snap.Staff)
	sh.DailyEarningsCents = snap.DailyEarningsCents
	sh.Day = snap.Day
	sh.Bankrupt = snap.Bankrupt
	return sh, false
}

// restoreWork rebuilds jobs and burned screens from snapshots.
func restoreWork(ctx context.Context, repo *storage.SQLiteSnapshotRepository, eng *engine.Engine, appLogger *logger.Logger) {
	jobSnaps, err := repo.GetJobsByShopID(ctx, shopID)
	if err != nil {
		appLogger.Errorf("Failed to load job snapshots: %v", err)
		return
	}
	for _, snap := range jobSnaps {
		var prints []job.Print
		if err := json.Unmarshal([]byte(snap.PrintsJSON), &prints); err != nil {
			appLogger.Warnf("Skipping job %s: bad prints payload: %v", snap.JobID, err)
			continue
		}
		eng.RestoreJob(&job.Job{
			ID:            snap.JobID,
			Customer:      snap.Customer,
			Garment:       catalog.GarmentColor(snap.Garment),
			Prints:        prints,
			Quantity:      snap.Quantity,
			DueDay:        snap.DueDay,
			PaymentCents:  snap.PaymentCents,
			Status:        job.Status(snap.Status),
			Overdue:       snap.Overdue,
			OfferedDay:    snap.OfferedDay,
			PrintedShirts: snap.PrintedShirts,
		})
	}

	screenSnaps, err := repo.GetScreensByShopID(ctx, shopID)
	if err != nil {
		appLogger.Errorf("Failed to load screen snapshots: %v", err)
		return
	}
	for _, snap := range screenSnaps {
		eng.RestoreScreen(&job.Screen{
			ID:         snap.ScreenID,
			JobID:      snap.JobID,
			Location:   catalog.LocationID(snap.Location),
			ColorIndex: snap.ColorIndex,
			Burned:     snap.Burned,
		})
	}
	appLogger.Infof("Restored %d jobs and %d screens.", len(jobSnaps), len(screenSnaps))
}

// restoreClock rewinds the work-day clock to the last persisted tick. A day
// that ended without a following day start was held at the summary when the
// process stopped; re-apply the hold so settlement does not run twice.
func restoreClock(ctx context.Context, repo *storage.SQLiteEventRepository, eng *engine.Engine, appLogger *logger.Logger) {
	if last, err := repo.LastOfType(ctx, shopID, string(events.EventTypeTimeTick)); err == nil && last != nil {
		payloadBytes, _ := json.Marshal(last.Payload)
		var tickPayload engine.TimeTickPayload
		if err := json.Unmarshal(payloadBytes, &tickPayload); err == nil {
			eng.OverrideTime(tickPayload.Day, tickPayload.Elapsed, tickPayload.TickNumber)
			appLogger.Infof("Restored work-day clock: day %d, %.1fs elapsed.", tickPayload.Day, tickPayload.Elapsed)
		}
	}

	lastEnded, err := repo.LastOfType(ctx, shopID, string(events.EventTypeDayEnded))
	if err != nil || lastEnded == nil {
		return
	}
	lastStarted, err := repo.LastOfType(ctx, shopID, string(events.EventTypeDayStarted))
	if err != nil {
		return
	}
	if lastStarted == nil || lastEnded.GameDay >= lastStarted.GameDay {
		eng.RestoreClosedDay(lastEnded.GameDay)
		appLogger.Infof("Day %d was closed at shutdown. Holding clock for the summary.", lastEnded.GameDay)
	}
}

func main() {
	log.Println("[SHOP-SERVER] Initializing PressWorks authoritative server...")

	appLogger := logger.NewLogger()

	cfg, err := config.FromEnv()
	if err != nil {
		appLogger.Errorf("Bad configuration: %v", err)
		os.Exit(1)
	}

	appLogger.Infof("Initializing SQLite database %q...", cfg.DBPath)
	db, err := storage.InitSQLite(cfg.DBPath)
	if err != nil {
		appLogger.Errorf("Failed to initialize SQLite: %v", err)
		os.Exit(1)
	}
	eventRepo := storage.NewSQLiteEventRepository(db)
	eventPersister := &SQLitePersisterAdapter{repo: eventRepo}

	appLogger.Info("Bootstrapping EventLog...")
	eventLog := events.NewEventLog(eventPersister)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapRepo := storage.NewSQLiteSnapshotRepository(db)
	sh, fresh := bootstrapShop(ctx, snapRepo, cfg, appLogger)

	appLogger.Info("Bootstrapping engine subsystems...")
	shopEngine := engine.NewEngine(eventLog, appLogger, cfg, sh)

	if fresh {
		shopEngine.BeginFirstDay()
	} else {
		restoreWork(ctx, snapRepo, shopEngine, appLogger)
		restoreClock(ctx, eventRepo, shopEngine, appLogger)
	}

	shopEngine.Start(ctx)

	// Automated state backup routine. The write-skip cache keeps the 5s
	// flush from rewriting rows that did not change.
	go func() {
		backupTicker := time.NewTicker(5 * time.Second)
		defer backupTicker.Stop()
		writeSkip := cache.NewSnapshotCache()
		for {
			select {
			case <-ctx.Done():
				return
			case <-backupTicker.C:
				current := shopEngine.Shop()
				shopSnap := storage.ShopSnapshot{
					ShopID:             current.ID,
					Name:               current.Name,
					MoneyCents:         current.MoneyCents,
					DailyEarningsCents: current.DailyEarningsCents,
					Staff:              current.Staff,
					Day:                current.Day,
					Bankrupt:           current.Bankrupt,
				}
				if writeSkip.Changed(cache.ShopKey(shopID), shopSnap) {
					_ = snapRepo.UpsertShop(ctx, shopSnap)
				}
				for _, j := range shopEngine.SnapshotJobs() {
					printsJSON, _ := json.Marshal(j.Prints)
					jobSnap := storage.JobSnapshot{
						JobID:         j.ID,
						ShopID:        shopID,
						Customer:      j.Customer,
						Garment:       string(j.Garment),
						PrintsJSON:    string(printsJSON),
						Quantity:      j.Quantity,
						DueDay:        j.DueDay,
						PaymentCents:  j.PaymentCents,
						Status:        string(j.Status),
						Overdue:       j.Overdue,
						OfferedDay:    j.OfferedDay,
						PrintedShirts: j.PrintedShirts,
					}
					if writeSkip.Changed(cache.JobKey(shopID, j.ID), jobSnap) {
						_ = snapRepo.UpsertJob(ctx, jobSnap)
					}
				}
				screens := shopEngine.SnapshotScreens()
				rows := make([]storage.ScreenSnapshot, 0, len(screens))
				for _, s := range screens {
					rows = append(rows, storage.ScreenSnapshot{
						ScreenID:   s.ID,
						ShopID:     shopID,
						JobID:      s.JobID,
						Location:   string(s.Location),
						ColorIndex: s.ColorIndex,
						Burned:     s.Burned,
					})
				}
				// Stable order: the rack comes out of a map.
				sort.Slice(rows, func(i, k int) bool { return rows[i].ScreenID < rows[k].ScreenID })
				if writeSkip.Changed(cache.ScreensKey(shopID), rows) {
					_ = snapRepo.ReplaceScreens(ctx, shopID, rows)
				}
			}
		}
	}()

	appLogger.Info("Bootstrapping WebSocket hub...")
	hub := network.NewHub(shopEngine, appLogger)
	go hub.Run(ctx)
	hub.StartEventPoller(ctx, eventLog)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, w, r, appLogger)
	})

	frontDesk := network.NewFrontDesk(shopEngine, appLogger)
	frontDesk.Routes(mux)

	mux.HandleFunc("/metrics", metrics.Handler())
	mux.HandleFunc("/metrics/prometheus", metrics.PrometheusHandler())
	mux.HandleFunc("/metrics/tuning", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(optimization.Analyze(metrics.Get().Snapshot()))
	})

	go func() {
		log.Printf("[SHOP-SERVER] HTTP API & WS server listening on %s", cfg.Addr)
		if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	log.Println("[SHOP-SERVER] Server running. Press Ctrl+C to exit.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[SHOP-SERVER] Shutting down...")
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow the terminal UI dev server
	},
}

// serveWs handles websocket requests from the peer.
func serveWs(hub *network.Hub, w http.ResponseWriter, r *http.Request, log *logger.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("Failed to upgrade websocket connection")
		return
	}

	client := network.NewClient(hub, conn)
	client.Register()

	go client.WritePump()
	go client.ReadPump()
}
