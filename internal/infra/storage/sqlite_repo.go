package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SQLiteEventRepository implements EventRepository for SQLite.
type SQLiteEventRepository struct {
	db *sql.DB
}

func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func (r *SQLiteEventRepository) Append(ctx context.Context, event ShopEvent) error {
	payloadBytes, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO events (id, shop_id, timestamp, event_type, actor_id, target_id, payload, game_day)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		event.ID, event.ShopID, event.Timestamp, event.EventType, event.ActorID,
		event.TargetID, string(payloadBytes), event.GameDay,
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]ShopEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []ShopEvent
	for rows.Next() {
		var e ShopEvent
		var payloadStr string
		err := rows.Scan(
			&e.ID, &e.ShopID, &e.Timestamp, &e.EventType, &e.ActorID,
			&e.TargetID, &payloadStr, &e.GameDay,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payloadStr), &e.Payload); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

const eventColumns = `id, shop_id, timestamp, event_type, actor_id, target_id, payload, game_day`

func (r *SQLiteEventRepository) GetByShopID(ctx context.Context, shopID string) ([]ShopEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE shop_id = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, shopID)
}

func (r *SQLiteEventRepository) GetByGameDay(ctx context.Context, shopID string, day int) ([]ShopEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE shop_id = ? AND game_day = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, shopID, day)
}

func (r *SQLiteEventRepository) GetByEventType(ctx context.Context, shopID string, eventType string) ([]ShopEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE shop_id = ? AND event_type = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, shopID, eventType)
}

func (r *SQLiteEventRepository) LastOfType(ctx context.Context, shopID string, eventType string) (*ShopEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE shop_id = ? AND event_type = ? ORDER BY timestamp DESC LIMIT 1`
	events, err := r.getMany(ctx, query, shopID, eventType)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &events[0], nil
}

// ---------------------------------------------------------
// SQLiteSnapshotRepository
// ---------------------------------------------------------

type SQLiteSnapshotRepository struct {
	db *sql.DB
}

func NewSQLiteSnapshotRepository(db *sql.DB) *SQLiteSnapshotRepository {
	return &SQLiteSnapshotRepository{db: db}
}

func (r *SQLiteSnapshotRepository) UpsertJob(ctx context.Context, snap JobSnapshot) error {
	query := `
		INSERT INTO jobs (job_id, shop_id, customer, garment, prints_json, quantity, due_day, payment_cents, status, overdue, offered_day, printed_shirts, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_id) DO UPDATE SET
			status=excluded.status,
			overdue=excluded.overdue,
			printed_shirts=excluded.printed_shirts,
			last_updated=excluded.last_updated
	`
	_, err := r.db.ExecContext(ctx, query,
		snap.JobID, snap.ShopID, snap.Customer, snap.Garment, snap.PrintsJSON,
		snap.Quantity, snap.DueDay, snap.PaymentCents, snap.Status, snap.Overdue,
		snap.OfferedDay, snap.PrintedShirts, time.Now(),
	)
	return err
}

func (r *SQLiteSnapshotRepository) GetJobsByShopID(ctx context.Context, shopID string) ([]JobSnapshot, error) {
	query := `SELECT job_id, shop_id, customer, garment, prints_json, quantity, due_day, payment_cents, status, overdue, offered_day, printed_shirts FROM jobs WHERE shop_id = ?`
	rows, err := r.db.QueryContext(ctx, query, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []JobSnapshot
	for rows.Next() {
		var j JobSnapshot
		if err := rows.Scan(&j.JobID, &j.ShopID, &j.Customer, &j.Garment, &j.PrintsJSON,
			&j.Quantity, &j.DueDay, &j.PaymentCents, &j.Status, &j.Overdue,
			&j.OfferedDay, &j.PrintedShirts); err != nil {
			return nil, err
		}
		snaps = append(snaps, j)
	}
	return snaps, rows.Err()
}

// ReplaceScreens rewrites the screen rack in one transaction. The rack is
// small (a handful of rows), so delete-and-insert beats diffing.
func (r *SQLiteSnapshotRepository) ReplaceScreens(ctx context.Context, shopID string, screens []ScreenSnapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM screens WHERE shop_id = ?`, shopID); err != nil {
		return err
	}
	for _, s := range screens {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO screens (screen_id, shop_id, job_id, location, color_index, burned) VALUES (?, ?, ?, ?, ?, ?)`,
			s.ScreenID, shopID, s.JobID, s.Location, s.ColorIndex, s.Burned,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLiteSnapshotRepository) GetScreensByShopID(ctx context.Context, shopID string) ([]ScreenSnapshot, error) {
	query := `SELECT screen_id, shop_id, job_id, location, color_index, burned FROM screens WHERE shop_id = ?`
	rows, err := r.db.QueryContext(ctx, query, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []ScreenSnapshot
	for rows.Next() {
		var s ScreenSnapshot
		if err := rows.Scan(&s.ScreenID, &s.ShopID, &s.JobID, &s.Location, &s.ColorIndex, &s.Burned); err != nil {
			return nil, err
		}
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

func (r *SQLiteSnapshotRepository) UpsertShop(ctx context.Context, snap ShopSnapshot) error {
	query := `
		INSERT INTO shop_state (shop_id, name, money_cents, daily_earnings_cents, staff, day, bankrupt, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(shop_id) DO UPDATE SET
			name=excluded.name,
			money_cents=excluded.money_cents,
			daily_earnings_cents=excluded.daily_earnings_cents,
			staff=excluded.staff,
			day=excluded.day,
			bankrupt=excluded.bankrupt,
			last_updated=excluded.last_updated
	`
	_, err := r.db.ExecContext(ctx, query,
		snap.ShopID, snap.Name, snap.MoneyCents, snap.DailyEarningsCents,
		snap.Staff, snap.Day, snap.Bankrupt, time.Now(),
	)
	return err
}

func (r *SQLiteSnapshotRepository) GetShop(ctx context.Context, shopID string) (*ShopSnapshot, error) {
	query := `SELECT shop_id, name, money_cents, daily_earnings_cents, staff, day, bankrupt FROM shop_state WHERE shop_id = ?`
	var s ShopSnapshot
	err := r.db.QueryRowContext(ctx, query, shopID).Scan(
		&s.ShopID, &s.Name, &s.MoneyCents, &s.DailyEarningsCents, &s.Staff, &s.Day, &s.Bankrupt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
