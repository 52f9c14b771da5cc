package processor

import (
	"context"
	"fmt"
	"matchbet-server/internal/money"
	"matchbet-server/internal/observability"
	"matchbet-server/internal/store"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Preferences is a user's bookmaker whitelist and blacklist. A non-empty
// whitelist hides every bookmaker not on it.
type Preferences struct {
	Whitelist []string `json:"whitelist"`
	Blacklist []string `json:"blacklist"`
}

func (p Preferences) allows(bookmaker string) bool {
	key := normalize(bookmaker)
	if len(p.Whitelist) > 0 && !contains(p.Whitelist, key) {
		return false
	}
	return !contains(p.Blacklist, key)
}

func (p *CatalogProcessor) GetPreferences(ctx context.Context, userID uuid.UUID) (Preferences, error) {
	prefs, err := p.store.ListBookmakerPreferences(ctx, userID)
	if err != nil {
		p.logger.Error(ctx, "failed to list bookmaker preferences", err)
		return Preferences{}, fmt.Errorf("failed to list bookmaker preferences: %w", err)
	}
	return fromRows(prefs), nil
}

// SetPreferences replaces both lists in one transaction.
func (p *CatalogProcessor) SetPreferences(ctx context.Context, userID uuid.UUID, prefs Preferences) (Preferences, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "user_id", Value: userID.String()})

	whitelist, err := clean("whitelist", prefs.Whitelist)
	if err != nil {
		return Preferences{}, err
	}
	blacklist, err := clean("blacklist", prefs.Blacklist)
	if err != nil {
		return Preferences{}, err
	}
	for _, b := range whitelist {
		if contains(blacklist, normalize(b)) {
			return Preferences{}, fmt.Errorf("%w: %s", ErrPreferenceConflict, b)
		}
	}

	var rows []store.BookmakerPreference
	err = p.store.WithTx(ctx, func(q store.Queries) error {
		if err := q.DeleteBookmakerPreferences(ctx, userID); err != nil {
			return fmt.Errorf("failed to delete bookmaker preferences: %w", err)
		}
		now := p.clock.Now()
		for _, list := range []struct {
			kind  string
			names []string
		}{{store.PreferenceWhitelist, whitelist}, {store.PreferenceBlacklist, blacklist}} {
			for _, name := range list.names {
				row, err := q.CreateBookmakerPreference(ctx, store.BookmakerPreference{
					UserID:     userID,
					Bookmaker:  name,
					Preference: list.kind,
					CreatedAt:  now,
				})
				if err != nil {
					return fmt.Errorf("failed to create bookmaker preference: %w", err)
				}
				rows = append(rows, row)
			}
		}
		return nil
	})
	if err != nil {
		p.logger.Error(ctx, "failed to set bookmaker preferences", err)
		return Preferences{}, err
	}

	p.logger.Info(ctx, fmt.Sprintf("set bookmaker preferences: %d whitelisted, %d blacklisted", len(whitelist), len(blacklist)))
	return fromRows(rows), nil
}

func (p *CatalogProcessor) preferences(ctx context.Context, userID uuid.UUID) (Preferences, error) {
	if userID == uuid.Nil {
		return Preferences{}, nil
	}
	return p.GetPreferences(ctx, userID)
}

func fromRows(rows []store.BookmakerPreference) Preferences {
	prefs := Preferences{Whitelist: []string{}, Blacklist: []string{}}
	for _, r := range rows {
		if r.Preference == store.PreferenceWhitelist {
			prefs.Whitelist = append(prefs.Whitelist, r.Bookmaker)
		} else {
			prefs.Blacklist = append(prefs.Blacklist, r.Bookmaker)
		}
	}
	sort.Strings(prefs.Whitelist)
	sort.Strings(prefs.Blacklist)
	return prefs
}

// clean trims names and drops case-insensitive duplicates.
func clean(field string, names []string) ([]string, error) {
	seen := map[string]bool{}
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, &money.ValidationError{Field: field, Reason: "bookmaker names must not be blank"}
		}
		if seen[normalize(n)] {
			continue
		}
		seen[normalize(n)] = true
		out = append(out, n)
	}
	return out, nil
}

func normalize(bookmaker string) string {
	return strings.ToLower(strings.TrimSpace(bookmaker))
}

func contains(names []string, key string) bool {
	for _, n := range names {
		if normalize(n) == key {
			return true
		}
	}
	return false
}
