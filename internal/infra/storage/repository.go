// Package storage provides the persistence layer for the shop server.
// This package implements the repository pattern to keep the domain pure.
package storage

import (
	"context"
	"time"
)

// ShopEvent mirrors the domain event structure for persistence.
// The domain package should NOT import this; use interfaces instead.
type ShopEvent struct {
	ID        string                 `json:"id" db:"id"`
	ShopID    string                 `json:"shop_id" db:"shop_id"`
	Timestamp time.Time              `json:"timestamp" db:"timestamp"`
	EventType string                 `json:"event_type" db:"event_type"`
	ActorID   string                 `json:"actor_id" db:"actor_id"`
	TargetID  string                 `json:"target_id" db:"target_id"`
	Payload   map[string]interface{} `json:"payload" db:"payload"`
	GameDay   int                    `json:"game_day" db:"game_day"`
}

// EventRepository defines the interface for event persistence.
type EventRepository interface {
	// Append adds a new event to the immutable ledger.
	Append(ctx context.Context, event ShopEvent) error

	// GetByShopID retrieves all events for a shop (for replay).
	GetByShopID(ctx context.Context, shopID string) ([]ShopEvent, error)

	// GetByGameDay retrieves all events from a specific in-game day.
	GetByGameDay(ctx context.Context, shopID string, day int) ([]ShopEvent, error)

	// GetByEventType retrieves all events of a specific type.
	GetByEventType(ctx context.Context, shopID string, eventType string) ([]ShopEvent, error)

	// LastOfType returns the newest event of a type, or nil.
	LastOfType(ctx context.Context, shopID string, eventType string) (*ShopEvent, error)
}

// JobSnapshot represents the current state of a job for quick reads.
type JobSnapshot struct {
	JobID         string    `json:"job_id" db:"job_id"`
	ShopID        string    `json:"shop_id" db:"shop_id"`
	Customer      string    `json:"customer" db:"customer"`
	Garment       string    `json:"garment" db:"garment"`
	PrintsJSON    string    `json:"prints_json" db:"prints_json"`
	Quantity      int       `json:"quantity" db:"quantity"`
	DueDay        int       `json:"due_day" db:"due_day"`
	PaymentCents  int64     `json:"payment_cents" db:"payment_cents"`
	Status        string    `json:"status" db:"status"`
	Overdue       bool      `json:"overdue" db:"overdue"`
	OfferedDay    int       `json:"offered_day" db:"offered_day"`
	PrintedShirts int       `json:"printed_shirts" db:"printed_shirts"`
	LastUpdated   time.Time `json:"last_updated" db:"last_updated"`
}

// ScreenSnapshot represents a burned screen row.
type ScreenSnapshot struct {
	ScreenID   string `json:"screen_id" db:"screen_id"`
	ShopID     string `json:"shop_id" db:"shop_id"`
	JobID      string `json:"job_id" db:"job_id"`
	Location   string `json:"location" db:"location"`
	ColorIndex int    `json:"color_index" db:"color_index"`
	Burned     bool   `json:"burned" db:"burned"`
}

// ShopSnapshot represents the ledger and clock recovery row.
type ShopSnapshot struct {
	ShopID             string    `json:"shop_id" db:"shop_id"`
	Name               string    `json:"name" db:"name"`
	MoneyCents         int64     `json:"money_cents" db:"money_cents"`
	DailyEarningsCents int64     `json:"daily_earnings_cents" db:"daily_earnings_cents"`
	Staff              int       `json:"staff" db:"staff"`
	Day                int       `json:"day" db:"day"`
	Bankrupt           bool      `json:"bankrupt" db:"bankrupt"`
	LastUpdated        time.Time `json:"last_updated" db:"last_updated"`
}

// SnapshotRepository defines the interface for state snapshots.
type SnapshotRepository interface {
	// UpsertJob updates or inserts a job snapshot.
	UpsertJob(ctx context.Context, snap JobSnapshot) error

	// GetJobsByShopID retrieves all job snapshots for a shop.
	GetJobsByShopID(ctx context.Context, shopID string) ([]JobSnapshot, error)

	// ReplaceScreens rewrites the screen rack for a shop.
	ReplaceScreens(ctx context.Context, shopID string, screens []ScreenSnapshot) error

	// GetScreensByShopID retrieves all screen rows for a shop.
	GetScreensByShopID(ctx context.Context, shopID string) ([]ScreenSnapshot, error)

	// UpsertShop updates or inserts the ledger snapshot.
	UpsertShop(ctx context.Context, snap ShopSnapshot) error

	// GetShop retrieves the ledger snapshot, or nil when the DB is fresh.
	GetShop(ctx context.Context, shopID string) (*ShopSnapshot, error)
}
