package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Uvecodes/daypool/internal/engine"
)

// CreateProfile inserts a new user profile. Fails if the user already
// exists; provisioning is not this store's idempotency concern.
func (s *Store) CreateProfile(ctx context.Context, p *engine.UserProfile) error {
	var age sql.NullInt64
	if p.Age != nil {
		age = sql.NullInt64{Int64: int64(*p.Age), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles
		(user_id, tz, dob, birth_month, birth_day, age_at_set, age_set_at, age, active_group, migration_skip_until)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.UserID,
		p.Timezone,
		p.DOB,
		p.BirthMonth,
		p.BirthDay,
		p.AgeAtSet,
		p.AgeSetAt,
		age,
		string(p.ActiveGroup),
		p.MigrationSkipUntil,
	)
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// GetProfile loads the full engine view of a user: profile row, every
// rotation state the user has ever had, and the blocklist.
// Returns (nil, nil) when the user does not exist, per the ProfileStore
// contract.
func (s *Store) GetProfile(ctx context.Context, userID string) (*engine.UserProfile, error) {
	p := &engine.UserProfile{UserID: userID}

	var age sql.NullInt64
	var activeGroup string
	err := s.db.QueryRowContext(ctx, `
		SELECT tz, dob, birth_month, birth_day, age_at_set, age_set_at, age, active_group, migration_skip_until
		FROM profiles
		WHERE user_id = ?
	`, userID).Scan(
		&p.Timezone,
		&p.DOB,
		&p.BirthMonth,
		&p.BirthDay,
		&p.AgeAtSet,
		&p.AgeSetAt,
		&age,
		&activeGroup,
		&p.MigrationSkipUntil,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	if age.Valid {
		n := int(age.Int64)
		p.Age = &n
	}
	p.ActiveGroup = engine.GroupKey(activeGroup)

	p.ContentState, err = s.rotationStates(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.BlockedRefs, err = s.blockedRefs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// MergeProfile applies a partial update. Only non-nil patch fields touch
// the row; everything else keeps its stored value. Single UPDATE, so the
// merge is atomic, and last-writer-wins is acceptable for every field
// this method covers.
func (s *Store) MergeProfile(ctx context.Context, userID string, patch engine.ProfilePatch) error {
	set := ""
	var args []any
	add := func(col string, val any) {
		if set != "" {
			set += ", "
		}
		set += col + " = ?"
		args = append(args, val)
	}

	if patch.Timezone != nil {
		add("tz", *patch.Timezone)
	}
	if patch.BirthMonth != nil {
		add("birth_month", *patch.BirthMonth)
	}
	if patch.BirthDay != nil {
		add("birth_day", *patch.BirthDay)
	}
	if patch.AgeAtSet != nil {
		add("age_at_set", *patch.AgeAtSet)
	}
	if patch.AgeSetAt != nil {
		add("age_set_at", *patch.AgeSetAt)
	}
	if patch.ActiveGroup != nil {
		add("active_group", string(*patch.ActiveGroup))
	}
	if patch.MigrationSkipUntil != nil {
		add("migration_skip_until", *patch.MigrationSkipUntil)
	}
	if set == "" {
		return nil // empty patch is a no-op, not an error
	}

	args = append(args, userID)
	res, err := s.db.ExecContext(ctx, "UPDATE profiles SET "+set+" WHERE user_id = ?", args...)
	if err != nil {
		return fmt.Errorf("merge profile: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("merge profile: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("merge profile: user %s not found", userID)
	}
	return nil
}

// SetAge stores the coarse age snapshot (age + date it was set). Used by
// provisioning; the engine itself only reads these fields.
func (s *Store) SetAge(ctx context.Context, userID string, age int, setAt string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE profiles SET age = ?, age_set_at = ? WHERE user_id = ?
	`, age, setAt, userID)
	if err != nil {
		return fmt.Errorf("set age: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set age: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("set age: user %s not found", userID)
	}
	return nil
}

// BlockRef adds a content ref to the user's blocklist. Idempotent:
// blocking the same ref twice is harmless.
func (s *Store) BlockRef(ctx context.Context, userID, ref string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blocked_refs (user_id, ref) VALUES (?, ?)
		ON CONFLICT(user_id, ref) DO NOTHING
	`, userID, ref)
	if err != nil {
		return fmt.Errorf("block ref: %w", err)
	}
	return nil
}

// UnblockRef removes a content ref from the user's blocklist. Removing a
// ref that was never blocked is a no-op.
func (s *Store) UnblockRef(ctx context.Context, userID, ref string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM blocked_refs WHERE user_id = ? AND ref = ?
	`, userID, ref)
	if err != nil {
		return fmt.Errorf("unblock ref: %w", err)
	}
	return nil
}

func (s *Store) blockedRefs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ref FROM blocked_refs WHERE user_id = ? ORDER BY ref ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("read blocked refs: %w", err)
	}
	defer rows.Close()

	var refs []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("scan blocked ref: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocked refs: %w", err)
	}
	return refs, nil
}
