package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const sqlListBookmakerPreferences = `
SELECT user_id, bookmaker, preference, created_at
FROM bookmaker_preferences
WHERE user_id = $1
ORDER BY bookmaker ASC`

func (q queries) ListBookmakerPreferences(ctx context.Context, userID uuid.UUID) ([]BookmakerPreference, error) {
	var prefs []BookmakerPreference
	err := sqlx.SelectContext(ctx, q.db, &prefs, sqlListBookmakerPreferences, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmaker preferences: %w", err)
	}
	return prefs, nil
}

const sqlDeleteBookmakerPreferences = `
DELETE FROM bookmaker_preferences
WHERE user_id = $1`

func (q queries) DeleteBookmakerPreferences(ctx context.Context, userID uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, sqlDeleteBookmakerPreferences, userID)
	if err != nil {
		return fmt.Errorf("failed to delete bookmaker preferences: %w", err)
	}
	return nil
}

const sqlCreateBookmakerPreference = `
INSERT INTO bookmaker_preferences (user_id, bookmaker, preference, created_at)
VALUES ($1, $2, $3, $4)
RETURNING user_id, bookmaker, preference, created_at`

func (q queries) CreateBookmakerPreference(ctx context.Context, pref BookmakerPreference) (BookmakerPreference, error) {
	var created BookmakerPreference
	err := sqlx.GetContext(ctx, q.db, &created, sqlCreateBookmakerPreference,
		pref.UserID,
		pref.Bookmaker,
		pref.Preference,
		pref.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return BookmakerPreference{}, ErrDuplicate
		}
		return BookmakerPreference{}, fmt.Errorf("failed to create bookmaker preference: %w", err)
	}
	return created, nil
}
