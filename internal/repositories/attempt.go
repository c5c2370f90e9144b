package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ticketcart/internal/database"
	"ticketcart/internal/models"
)

// Fixed key names for the persisted checkout attempt. All three are written
// in one transaction and deleted in one transaction.
const (
	keyReservationGroups = "pending_reservation_groups"
	keyClientRef         = "pending_client_ref"
	keyCartSnapshot      = "pending_cart_snapshot"
	keyCreatedAt         = "pending_created_at"
)

// AttemptRepository stores the pending checkout attempt in the local
// database so it survives process restarts.
type AttemptRepository struct {
	db *database.DB
}

// NewAttemptRepository creates a new attempt repository
func NewAttemptRepository(db *database.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// SaveAttempt writes the attempt keys atomically, replacing any previous
// attempt.
func (r *AttemptRepository) SaveAttempt(ctx context.Context, state *models.CheckoutAttemptState) error {
	groupsJSON, err := json.Marshal(state.ReservationGroups)
	if err != nil {
		return fmt.Errorf("failed to marshal reservation groups: %w", err)
	}
	snapshotJSON, err := json.Marshal(state.CartSnapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal cart snapshot: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	pairs := map[string]string{
		keyReservationGroups: string(groupsJSON),
		keyClientRef:         state.ClientRef,
		keyCartSnapshot:      string(snapshotJSON),
		keyCreatedAt:         state.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	for key, value := range pairs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO checkout_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
		`, key, value); err != nil {
			return fmt.Errorf("failed to write %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit attempt state: %w", err)
	}
	return nil
}

// LoadAttempt reads the persisted attempt. Returns models.ErrNoPendingAttempt
// when no attempt is stored.
func (r *AttemptRepository) LoadAttempt(ctx context.Context) (*models.CheckoutAttemptState, error) {
	values := make(map[string]string, 4)

	rows, err := r.db.QueryContext(ctx, `
		SELECT key, value FROM checkout_state
		WHERE key IN (?, ?, ?, ?)
	`, keyReservationGroups, keyClientRef, keyCartSnapshot, keyCreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempt state: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan attempt state: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read attempt state: %w", err)
	}

	clientRef, ok := values[keyClientRef]
	if !ok || clientRef == "" {
		return nil, models.ErrNoPendingAttempt
	}

	state := &models.CheckoutAttemptState{ClientRef: clientRef}
	if raw := values[keyReservationGroups]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &state.ReservationGroups); err != nil {
			return nil, fmt.Errorf("failed to unmarshal reservation groups: %w", err)
		}
	}
	if raw := values[keyCartSnapshot]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &state.CartSnapshot); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cart snapshot: %w", err)
		}
	}
	if raw := values[keyCreatedAt]; raw != "" {
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			state.CreatedAt = t
		}
	}
	return state, nil
}

// DeleteAttempt removes every attempt key. Deleting an absent attempt is not
// an error.
func (r *AttemptRepository) DeleteAttempt(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM checkout_state
		WHERE key IN (?, ?, ?, ?)
	`, keyReservationGroups, keyClientRef, keyCartSnapshot, keyCreatedAt)
	if err != nil {
		return fmt.Errorf("failed to delete attempt state: %w", err)
	}
	return nil
}

// HasAttempt reports whether an attempt is persisted.
func (r *AttemptRepository) HasAttempt(ctx context.Context) (bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `
		SELECT value FROM checkout_state WHERE key = ?
	`, keyClientRef).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check attempt state: %w", err)
	}
	return value != "", nil
}
