package store

import (
	"context"
	"fmt"

	"github.com/Uvecodes/daypool/internal/engine"
)

// ClaimRotationState atomically installs candidate as the rotation state
// for (userID, group), unless one already exists.
//
// The INSERT ... ON CONFLICT DO NOTHING claims the (user_id, group_key)
// slot via the primary key; re-reading inside the same transaction decides
// the race. Two concurrent claimers (two browser tabs, or web plus
// server) therefore end up with exactly one persisted state, and both
// observe the same winning startIndex/startDate. An existing valid state
// is never overwritten, which also makes later re-claims (the retry
// sweeper) idempotent.
//
// Returns the winning state and whether the candidate was the winner.
func (s *Store) ClaimRotationState(ctx context.Context, userID string, group engine.GroupKey, candidate engine.RotationState) (engine.RotationState, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return engine.RotationState{}, false, fmt.Errorf("claim rotation state: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO rotation_states
		(user_id, group_key, start_index, start_date, last_served_date, last_served_index)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, group_key) DO NOTHING
	`,
		userID,
		string(group),
		candidate.StartIndex,
		candidate.StartDate,
		candidate.LastServedDate,
		candidate.LastServedIndex,
	)
	if err != nil {
		return engine.RotationState{}, false, fmt.Errorf("claim rotation state: insert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return engine.RotationState{}, false, fmt.Errorf("claim rotation state: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Another writer got here first: adopt the server's state so this
		// client serves the same item as everyone else.
		var existing engine.RotationState
		err = tx.QueryRowContext(ctx, `
			SELECT start_index, start_date, last_served_date, last_served_index
			FROM rotation_states
			WHERE user_id = ? AND group_key = ?
		`, userID, string(group)).Scan(
			&existing.StartIndex,
			&existing.StartDate,
			&existing.LastServedDate,
			&existing.LastServedIndex,
		)
		if err != nil {
			return engine.RotationState{}, false, fmt.Errorf("claim rotation state: select existing: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return engine.RotationState{}, false, fmt.Errorf("claim rotation state: commit (existing): %w", err)
		}
		return existing, false, nil
	}

	if err := tx.Commit(); err != nil {
		return engine.RotationState{}, false, fmt.Errorf("claim rotation state: commit: %w", err)
	}
	return candidate, true, nil
}

// RecordServed persists the served marker for one (user, group) without
// touching any other group's state. Best-effort from the engine's point
// of view: the caller logs and moves on if this fails.
func (s *Store) RecordServed(ctx context.Context, userID string, group engine.GroupKey, date string, index int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE rotation_states
		SET last_served_date = ?, last_served_index = ?
		WHERE user_id = ? AND group_key = ?
	`, date, index, userID, string(group))
	if err != nil {
		return fmt.Errorf("record served: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record served: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("record served: no rotation state for user %s group %s", userID, group)
	}
	return nil
}

// rotationStates loads every rotation state the user has ever had, keyed
// by group. Old groups are kept when a user ages out, so this can return
// more than one entry.
func (s *Store) rotationStates(ctx context.Context, userID string) (map[engine.GroupKey]engine.RotationState, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT group_key, start_index, start_date, last_served_date, last_served_index
		FROM rotation_states
		WHERE user_id = ?
		ORDER BY group_key ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("read rotation states: %w", err)
	}
	defer rows.Close()

	states := make(map[engine.GroupKey]engine.RotationState)
	for rows.Next() {
		var group string
		var st engine.RotationState
		if err := rows.Scan(&group, &st.StartIndex, &st.StartDate, &st.LastServedDate, &st.LastServedIndex); err != nil {
			return nil, fmt.Errorf("scan rotation state: %w", err)
		}
		states[engine.GroupKey(group)] = st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rotation states: %w", err)
	}
	return states, nil
}
