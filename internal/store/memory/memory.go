// Package memory is an in-process implementation of store.Storer. It backs
// the processor tests and the STORE_BACKEND=memory development mode; it is
// not meant for production, where config.Load rejects it. A transaction
// holds the store's write lock for its whole duration and restores a
// snapshot on error. Reads outside a transaction share a read lock.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"matchbet-server/internal/store"

	"github.com/google/uuid"
)

type Store struct {
	mu   sync.RWMutex
	data *tables
}

func New() *Store {
	return &Store{data: newTables()}
}

// WithTx runs fn with exclusive access to the store. Writes made by fn are
// discarded when it returns an error.
func (s *Store) WithTx(ctx context.Context, fn func(q store.Queries) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(s.data); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

func (s *Store) CreateOfferCatalogEntry(ctx context.Context, params store.CreateOfferCatalogEntryParams) (store.OfferCatalogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.CreateOfferCatalogEntry(ctx, params)
}

func (s *Store) GetOfferCatalogEntry(ctx context.Context, offerID uuid.UUID) (store.OfferCatalogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.GetOfferCatalogEntry(ctx, offerID)
}

func (s *Store) ListOfferCatalog(ctx context.Context, params store.ListOfferCatalogParams) ([]store.OfferCatalogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.ListOfferCatalog(ctx, params)
}

func (s *Store) CreateProgress(ctx context.Context, params store.CreateProgressParams) (store.UserOfferProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.CreateProgress(ctx, params)
}

func (s *Store) GetProgressByID(ctx context.Context, progressID uuid.UUID) (store.UserOfferProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.GetProgressByID(ctx, progressID)
}

func (s *Store) GetActiveProgress(ctx context.Context, userID, offerID uuid.UUID) (store.UserOfferProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.GetActiveProgress(ctx, userID, offerID)
}

func (s *Store) GetLatestProgress(ctx context.Context, userID, offerID uuid.UUID) (store.UserOfferProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.GetLatestProgress(ctx, userID, offerID)
}

func (s *Store) ListProgressByUser(ctx context.Context, userID uuid.UUID, stage *string) ([]store.UserOfferProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.ListProgressByUser(ctx, userID, stage)
}

func (s *Store) CountProgressByUser(ctx context.Context, userID uuid.UUID) (store.ProgressCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.CountProgressByUser(ctx, userID)
}

func (s *Store) ListExpirableProgress(ctx context.Context, now time.Time, limit int) ([]store.ExpirableProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.ListExpirableProgress(ctx, now, limit)
}

func (s *Store) UpdateProgress(ctx context.Context, progress store.UserOfferProgress, now time.Time) (store.UserOfferProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.UpdateProgress(ctx, progress, now)
}

func (s *Store) CreateBet(ctx context.Context, params store.CreateBetParams) (store.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.CreateBet(ctx, params)
}

func (s *Store) GetBetByID(ctx context.Context, betID uuid.UUID) (store.Bet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.GetBetByID(ctx, betID)
}

func (s *Store) GetBetForUpdate(ctx context.Context, betID uuid.UUID) (store.Bet, error) {
	return s.GetBetByID(ctx, betID)
}

func (s *Store) CountBetsByUser(ctx context.Context, userID uuid.UUID) (store.BetCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.CountBetsByUser(ctx, userID)
}

func (s *Store) ListBets(ctx context.Context, params store.ListBetsParams) ([]store.Bet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.ListBets(ctx, params)
}

func (s *Store) ListSettledBetsByUser(ctx context.Context, userID uuid.UUID) ([]store.Bet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.ListSettledBetsByUser(ctx, userID)
}

func (s *Store) UpdateBet(ctx context.Context, bet store.Bet, now time.Time) (store.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.UpdateBet(ctx, bet, now)
}

func (s *Store) DeleteBet(ctx context.Context, betID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.DeleteBet(ctx, betID)
}

func (s *Store) ListBookmakerPreferences(ctx context.Context, userID uuid.UUID) ([]store.BookmakerPreference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.ListBookmakerPreferences(ctx, userID)
}

func (s *Store) DeleteBookmakerPreferences(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.DeleteBookmakerPreferences(ctx, userID)
}

func (s *Store) CreateBookmakerPreference(ctx context.Context, pref store.BookmakerPreference) (store.BookmakerPreference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.CreateBookmakerPreference(ctx, pref)
}

func (s *Store) GetProfitSummary(ctx context.Context, userID uuid.UUID) (store.ProfitSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.GetProfitSummary(ctx, userID)
}

func (s *Store) UpsertProfitSummary(ctx context.Context, summary store.ProfitSummary) (store.ProfitSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.UpsertProfitSummary(ctx, summary)
}

// LockUserSummary is a no-op outside WithTx; inside it the store lock already
// serialises refreshes.
func (s *Store) LockUserSummary(ctx context.Context, userID uuid.UUID) error {
	return nil
}

// tables holds the rows. Its methods assume the caller holds Store.mu.
type tables struct {
	offers    map[uuid.UUID]store.OfferCatalogEntry
	progress  map[uuid.UUID]store.UserOfferProgress
	bets      map[uuid.UUID]store.Bet
	prefs     map[uuid.UUID][]store.BookmakerPreference
	summaries map[uuid.UUID]store.ProfitSummary
	// seq orders rows created within the same instant.
	seq      int64
	inserted map[uuid.UUID]int64
}

func newTables() *tables {
	return &tables{
		offers:    make(map[uuid.UUID]store.OfferCatalogEntry),
		progress:  make(map[uuid.UUID]store.UserOfferProgress),
		bets:      make(map[uuid.UUID]store.Bet),
		prefs:     make(map[uuid.UUID][]store.BookmakerPreference),
		summaries: make(map[uuid.UUID]store.ProfitSummary),
		inserted:  make(map[uuid.UUID]int64),
	}
}

func (t *tables) clone() *tables {
	c := newTables()
	for k, v := range t.offers {
		c.offers[k] = v
	}
	for k, v := range t.progress {
		c.progress[k] = v
	}
	for k, v := range t.bets {
		c.bets[k] = v
	}
	for k, v := range t.prefs {
		c.prefs[k] = append([]store.BookmakerPreference(nil), v...)
	}
	for k, v := range t.summaries {
		c.summaries[k] = v
	}
	for k, v := range t.inserted {
		c.inserted[k] = v
	}
	c.seq = t.seq
	return c
}

func (t *tables) track(id uuid.UUID) {
	t.seq++
	t.inserted[id] = t.seq
}

// newer orders by creation time, then insertion order.
func (t *tables) newer(a, b uuid.UUID, at, bt time.Time) bool {
	if !at.Equal(bt) {
		return at.After(bt)
	}
	return t.inserted[a] > t.inserted[b]
}

func (t *tables) CreateOfferCatalogEntry(_ context.Context, params store.CreateOfferCatalogEntryParams) (store.OfferCatalogEntry, error) {
	now := time.Now().UTC()
	entry := store.OfferCatalogEntry{
		ID:                    uuid.New(),
		Bookmaker:             params.Bookmaker,
		OfferName:             params.OfferName,
		OfferType:             params.OfferType,
		OfferValue:            params.OfferValue.Round(),
		RequiredStake:         params.RequiredStake.Round(),
		MinOdds:               params.MinOdds,
		MaxStake:              params.MaxStake,
		WageringRequirement:   params.WageringRequirement,
		IsStakeReturned:       params.IsStakeReturned,
		QualifyingBetRequired: params.QualifyingBetRequired,
		Terms:                 params.Terms,
		ExpiryDays:            params.ExpiryDays,
		EligibleSports:        params.EligibleSports,
		EligibleMarkets:       params.EligibleMarkets,
		SignupURL:             params.SignupURL,
		ReferralURL:           params.ReferralURL,
		OddscheckerURL:        params.OddscheckerURL,
		Difficulty:            params.Difficulty,
		ExpectedProfit:        params.ExpectedProfit,
		EstimatedTimeMinutes:  params.EstimatedTimeMinutes,
		IsActive:              params.IsActive,
		PriorityRank:          params.PriorityRank,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	t.offers[entry.ID] = entry
	t.track(entry.ID)
	return entry, nil
}

func (t *tables) GetOfferCatalogEntry(_ context.Context, offerID uuid.UUID) (store.OfferCatalogEntry, error) {
	entry, ok := t.offers[offerID]
	if !ok {
		return store.OfferCatalogEntry{}, store.ErrNotFound
	}
	return entry, nil
}

func (t *tables) ListOfferCatalog(_ context.Context, params store.ListOfferCatalogParams) ([]store.OfferCatalogEntry, error) {
	entries := make([]store.OfferCatalogEntry, 0, len(t.offers))
	for _, e := range t.offers {
		if params.OfferType != nil && e.OfferType != *params.OfferType {
			continue
		}
		if params.Bookmaker != nil && e.Bookmaker != *params.Bookmaker {
			continue
		}
		if params.Difficulty != nil && e.Difficulty != *params.Difficulty {
			continue
		}
		if params.ActiveOnly && !e.IsActive {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].PriorityRank != entries[j].PriorityRank {
			return entries[i].PriorityRank < entries[j].PriorityRank
		}
		return t.newer(entries[i].ID, entries[j].ID, entries[i].CreatedAt, entries[j].CreatedAt)
	})
	limit := params.Limit
	if limit <= 0 {
		limit = 100
	}
	return page(entries, params.Offset, limit), nil
}

func (t *tables) CreateProgress(_ context.Context, params store.CreateProgressParams) (store.UserOfferProgress, error) {
	if _, err := t.activeProgress(params.UserID, params.OfferID); err == nil {
		return store.UserOfferProgress{}, store.ErrDuplicate
	}
	id := params.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	if _, exists := t.progress[id]; exists {
		return store.UserOfferProgress{}, store.ErrDuplicate
	}
	progress := store.UserOfferProgress{
		ID:        id,
		UserID:    params.UserID,
		OfferID:   params.OfferID,
		Stage:     params.Stage,
		StartedAt: params.StartedAt,
		Version:   1,
		CreatedAt: params.Now,
		UpdatedAt: params.Now,
	}
	t.progress[id] = progress
	t.track(id)
	return progress, nil
}

func (t *tables) GetProgressByID(_ context.Context, progressID uuid.UUID) (store.UserOfferProgress, error) {
	progress, ok := t.progress[progressID]
	if !ok {
		return store.UserOfferProgress{}, store.ErrNotFound
	}
	return progress, nil
}

func (t *tables) GetActiveProgress(_ context.Context, userID, offerID uuid.UUID) (store.UserOfferProgress, error) {
	return t.activeProgress(userID, offerID)
}

func (t *tables) activeProgress(userID, offerID uuid.UUID) (store.UserOfferProgress, error) {
	for _, p := range t.progress {
		if p.UserID == userID && p.OfferID == offerID && !p.IsTerminal() {
			return p, nil
		}
	}
	return store.UserOfferProgress{}, store.ErrNotFound
}

func (t *tables) GetLatestProgress(_ context.Context, userID, offerID uuid.UUID) (store.UserOfferProgress, error) {
	var (
		latest store.UserOfferProgress
		found  bool
	)
	for _, p := range t.progress {
		if p.UserID != userID || p.OfferID != offerID {
			continue
		}
		if !found || t.newer(p.ID, latest.ID, p.CreatedAt, latest.CreatedAt) {
			latest = p
			found = true
		}
	}
	if !found {
		return store.UserOfferProgress{}, store.ErrNotFound
	}
	return latest, nil
}

func (t *tables) ListProgressByUser(_ context.Context, userID uuid.UUID, stage *string) ([]store.UserOfferProgress, error) {
	var records []store.UserOfferProgress
	for _, p := range t.progress {
		if p.UserID != userID {
			continue
		}
		if stage != nil && p.Stage != *stage {
			continue
		}
		records = append(records, p)
	}
	sort.Slice(records, func(i, j int) bool {
		return t.newer(records[i].ID, records[j].ID, records[i].UpdatedAt, records[j].UpdatedAt)
	})
	return records, nil
}

func (t *tables) CountProgressByUser(_ context.Context, userID uuid.UUID) (store.ProgressCounts, error) {
	var counts store.ProgressCounts
	for _, p := range t.progress {
		if p.UserID != userID {
			continue
		}
		switch p.Stage {
		case store.StageCompleted:
			counts.Completed++
			counts.CompletedTotal = counts.CompletedTotal.Add(p.TotalProfit)
		case store.StageSkipped:
			counts.Skipped++
		case store.StageExpired:
			counts.Expired++
		case store.StageFailed:
			counts.Failed++
		default:
			counts.Active++
			if p.QualifyingLoss != nil {
				counts.RunningProfit = counts.RunningProfit.Add(*p.QualifyingLoss)
			}
			if p.FreeBetProfit != nil {
				counts.RunningProfit = counts.RunningProfit.Add(*p.FreeBetProfit)
			}
		}
	}
	return counts, nil
}

func (t *tables) ListExpirableProgress(_ context.Context, now time.Time, limit int) ([]store.ExpirableProgress, error) {
	var records []store.ExpirableProgress
	for _, p := range t.progress {
		if p.IsTerminal() || p.StartedAt == nil {
			continue
		}
		offer, ok := t.offers[p.OfferID]
		if !ok || offer.ExpiryDays == nil {
			continue
		}
		if p.StartedAt.AddDate(0, 0, *offer.ExpiryDays).After(now) {
			continue
		}
		records = append(records, store.ExpirableProgress{
			ProgressID: p.ID,
			UserID:     p.UserID,
			OfferID:    p.OfferID,
			StartedAt:  *p.StartedAt,
			ExpiryDays: *offer.ExpiryDays,
		})
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.Before(records[j].StartedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (t *tables) UpdateProgress(_ context.Context, progress store.UserOfferProgress, now time.Time) (store.UserOfferProgress, error) {
	current, ok := t.progress[progress.ID]
	if !ok {
		return store.UserOfferProgress{}, store.ErrNotFound
	}
	if current.Version != progress.Version {
		return store.UserOfferProgress{}, store.ErrVersionConflict
	}
	if !store.IsTerminalStage(progress.Stage) {
		if other, err := t.activeProgress(progress.UserID, progress.OfferID); err == nil && other.ID != progress.ID {
			return store.UserOfferProgress{}, store.ErrDuplicate
		}
	}
	if t.betLinkedElsewhere(progress) {
		return store.UserOfferProgress{}, store.ErrDuplicate
	}

	progress.UserID = current.UserID
	progress.OfferID = current.OfferID
	progress.CreatedAt = current.CreatedAt
	progress.Version = current.Version + 1
	progress.UpdatedAt = now
	t.progress[progress.ID] = progress
	return progress, nil
}

// betLinkedElsewhere reports whether another record already references one
// of progress's bets.
func (t *tables) betLinkedElsewhere(progress store.UserOfferProgress) bool {
	for id, other := range t.progress {
		if id == progress.ID {
			continue
		}
		if sameLink(other.QualifyingBetID, progress.QualifyingBetID) || sameLink(other.FreeBetID, progress.FreeBetID) {
			return true
		}
	}
	return false
}

func sameLink(a, b *uuid.UUID) bool {
	return a != nil && b != nil && *a == *b
}

func (t *tables) CreateBet(_ context.Context, params store.CreateBetParams) (store.Bet, error) {
	id := params.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	if _, exists := t.bets[id]; exists {
		return store.Bet{}, store.ErrDuplicate
	}
	bet := store.Bet{
		ID:             id,
		UserID:         params.UserID,
		ProgressID:     params.ProgressID,
		BetType:        params.BetType,
		Bookmaker:      params.Bookmaker,
		Exchange:       params.Exchange,
		EventName:      params.EventName,
		Selection:      params.Selection,
		Market:         params.Market,
		BackOdds:       params.BackOdds,
		BackStake:      params.BackStake,
		LayOdds:        params.LayOdds,
		LayStake:       params.LayStake,
		Liability:      params.Liability,
		CommissionRate: params.CommissionRate,
		ExpectedProfit: params.ExpectedProfit,
		Outcome:        store.BetOutcomePending,
		EventDate:      params.EventDate,
		Notes:          params.Notes,
		CreatedAt:      params.Now,
		UpdatedAt:      params.Now,
	}
	t.bets[id] = bet
	t.track(id)
	return bet, nil
}

func (t *tables) GetBetByID(_ context.Context, betID uuid.UUID) (store.Bet, error) {
	bet, ok := t.bets[betID]
	if !ok {
		return store.Bet{}, store.ErrNotFound
	}
	return bet, nil
}

// GetBetForUpdate needs no row lock; the caller holds the store lock.
func (t *tables) GetBetForUpdate(ctx context.Context, betID uuid.UUID) (store.Bet, error) {
	return t.GetBetByID(ctx, betID)
}

func (t *tables) CountBetsByUser(_ context.Context, userID uuid.UUID) (store.BetCounts, error) {
	var counts store.BetCounts
	for _, b := range t.bets {
		if b.UserID != userID {
			continue
		}
		counts.Total++
		switch b.Outcome {
		case store.BetOutcomePending:
			counts.Pending++
		case store.BetOutcomeBackWon:
			counts.BackWon++
		case store.BetOutcomeLayWon:
			counts.LayWon++
		}
	}
	return counts, nil
}

func (t *tables) ListBets(_ context.Context, params store.ListBetsParams) ([]store.Bet, error) {
	var bets []store.Bet
	for _, b := range t.bets {
		if b.UserID != params.UserID {
			continue
		}
		if params.Outcome != nil && b.Outcome != *params.Outcome {
			continue
		}
		if params.BetType != nil && b.BetType != *params.BetType {
			continue
		}
		bets = append(bets, b)
	}
	t.sortBets(bets)
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	return page(bets, params.Offset, limit), nil
}

func (t *tables) ListSettledBetsByUser(_ context.Context, userID uuid.UUID) ([]store.Bet, error) {
	var bets []store.Bet
	for _, b := range t.bets {
		if b.UserID == userID && b.IsSettled() {
			bets = append(bets, b)
		}
	}
	t.sortBets(bets)
	return bets, nil
}

func (t *tables) sortBets(bets []store.Bet) {
	sort.Slice(bets, func(i, j int) bool {
		return t.newer(bets[i].ID, bets[j].ID, bets[i].CreatedAt, bets[j].CreatedAt)
	})
}

func (t *tables) UpdateBet(_ context.Context, bet store.Bet, now time.Time) (store.Bet, error) {
	current, ok := t.bets[bet.ID]
	if !ok {
		return store.Bet{}, store.ErrNotFound
	}
	current.ProgressID = bet.ProgressID
	current.Outcome = bet.Outcome
	current.ActualProfit = bet.ActualProfit
	current.EventDate = bet.EventDate
	current.Notes = bet.Notes
	current.SettledAt = bet.SettledAt
	current.UpdatedAt = now
	t.bets[bet.ID] = current
	return current, nil
}

func (t *tables) DeleteBet(_ context.Context, betID uuid.UUID) error {
	if _, ok := t.bets[betID]; !ok {
		return store.ErrNotFound
	}
	delete(t.bets, betID)
	return nil
}

func (t *tables) ListBookmakerPreferences(_ context.Context, userID uuid.UUID) ([]store.BookmakerPreference, error) {
	prefs := append([]store.BookmakerPreference(nil), t.prefs[userID]...)
	sort.Slice(prefs, func(i, j int) bool { return prefs[i].Bookmaker < prefs[j].Bookmaker })
	return prefs, nil
}

func (t *tables) DeleteBookmakerPreferences(_ context.Context, userID uuid.UUID) error {
	delete(t.prefs, userID)
	return nil
}

func (t *tables) CreateBookmakerPreference(_ context.Context, pref store.BookmakerPreference) (store.BookmakerPreference, error) {
	for _, p := range t.prefs[pref.UserID] {
		if p.Bookmaker == pref.Bookmaker {
			return store.BookmakerPreference{}, store.ErrDuplicate
		}
	}
	t.prefs[pref.UserID] = append(t.prefs[pref.UserID], pref)
	return pref, nil
}

func (t *tables) GetProfitSummary(_ context.Context, userID uuid.UUID) (store.ProfitSummary, error) {
	summary, ok := t.summaries[userID]
	if !ok {
		return store.ProfitSummary{}, store.ErrNotFound
	}
	return summary, nil
}

func (t *tables) LockUserSummary(context.Context, uuid.UUID) error {
	return nil
}

func (t *tables) UpsertProfitSummary(_ context.Context, summary store.ProfitSummary) (store.ProfitSummary, error) {
	t.summaries[summary.UserID] = summary
	return summary, nil
}

func page[T any](rows []T, offset, limit int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	rows = rows[offset:]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}
