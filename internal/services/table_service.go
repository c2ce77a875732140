package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Silexemple/satoshi-casino21/internal/blackjack"
	"github.com/google/uuid"
)

// ErrTableBusy means another mutator holds the table lock. The caller lost
// nothing and may retry immediately.
var ErrTableBusy = errors.New("table is busy, retry")

// ErrTableNotFound means the table identity matches no static definition.
var ErrTableNotFound = errors.New("table not found")

// TableStore reads and writes the durable table record.
type TableStore interface {
	Get(ctx context.Context, tableID string) (*blackjack.Table, error)
	Save(ctx context.Context, table *blackjack.Table) error
}

// TableLock is the per-table create-if-absent lock token.
type TableLock interface {
	Acquire(ctx context.Context, tableID string) (bool, error)
	Release(ctx context.Context, tableID string) error
}

// RoundMarkers gates settlement credit distribution per (table, round).
type RoundMarkers interface {
	TryMark(ctx context.Context, tableID string, round int) (bool, error)
	Unmark(ctx context.Context, tableID string, round int) error
}

// Bankroll is the shared house funds counter.
type Bankroll interface {
	Available(ctx context.Context) (int64, error)
	Adjust(ctx context.Context, delta int64) error
}

// Ledger is the external player balance collaborator.
type Ledger interface {
	GetBalance(ctx context.Context, playerID uuid.UUID) (int64, error)
	Debit(ctx context.Context, playerID uuid.UUID, amount int64, description string) error
	Credit(ctx context.Context, playerID uuid.UUID, amount int64, description string) error
}

// Notifier is told after every persisted table mutation so live clients can
// refresh. The state machine never depends on it.
type Notifier interface {
	TableUpdated(tableID string, status blackjack.Status, round int)
}

// TableService owns the concurrency discipline around the shared table
// record: every mutation acquires the table lock with a single attempt,
// re-reads the record, runs the timeout sweeper, applies its own transition,
// persists the record wholesale and releases the lock on every exit path.
type TableService struct {
	tables    TableStore
	lock      TableLock
	markers   RoundMarkers
	bankroll  Bankroll
	ledger    Ledger
	processor *blackjack.Processor
	notifier  Notifier
	nowFn     func() time.Time
}

func NewTableService(tables TableStore, lock TableLock, markers RoundMarkers, bankroll Bankroll, ledger Ledger) *TableService {
	return &TableService{
		tables:    tables,
		lock:      lock,
		markers:   markers,
		bankroll:  bankroll,
		ledger:    ledger,
		processor: blackjack.NewProcessor(ledger, bankroll),
		nowFn:     time.Now,
	}
}

// SetNotifier attaches the optional live update notifier.
func (s *TableService) SetNotifier(n Notifier) {
	s.notifier = n
}

// TableSummary is one row of the lobby listing.
type TableSummary struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	MinWager    int64            `json:"min_wager"`
	MaxWager    int64            `json:"max_wager"`
	MaxSeats    int              `json:"max_seats"`
	PlayerCount int              `json:"player_count"`
	Status      blackjack.Status `json:"status"`
}

// ListTables lazily initializes and summarizes the configured tables.
func (s *TableService) ListTables(ctx context.Context) ([]TableSummary, error) {
	summaries := make([]TableSummary, 0, len(blackjack.DefaultTables))
	for _, def := range blackjack.DefaultTables {
		t, err := s.loadOrInit(ctx, def.ID)
		if err != nil {
			return nil, err
		}
		count := 0
		for _, seat := range t.Seats {
			if seat != nil {
				count++
			}
		}
		summaries = append(summaries, TableSummary{
			ID:          t.ID,
			Name:        t.Name,
			MinWager:    t.MinWager,
			MaxWager:    t.MaxWager,
			MaxSeats:    t.MaxSeats,
			PlayerCount: count,
			Status:      t.Status,
		})
	}
	return summaries, nil
}

// GetTable returns the filtered projection for the requesting player. The
// read itself is lock-free; if the sweeper finds a due transition, the
// mutation is redone under the lock against a fresh read. When the lock is
// busy the swept local copy is served and the lock holder persists instead.
func (s *TableService) GetTable(ctx context.Context, tableID string, playerID uuid.UUID) (*blackjack.TableView, error) {
	t, err := s.loadOrInit(ctx, tableID)
	if err != nil {
		return nil, err
	}

	now := s.nowFn()
	if t.Sweep(now) || uncreditedRound(t) {
		if ok, lockErr := s.lock.Acquire(ctx, tableID); lockErr == nil && ok {
			func() {
				defer s.release(ctx, tableID)

				fresh, err := s.tables.Get(ctx, tableID)
				if err != nil || fresh == nil {
					return
				}
				swept := fresh.Sweep(s.nowFn())
				if !swept && !uncreditedRound(fresh) {
					t = fresh
					return
				}
				var creditErr error
				if uncreditedRound(fresh) {
					creditErr = s.creditRound(ctx, fresh)
				}
				if err := s.tables.Save(ctx, fresh); err != nil {
					slog.Error("Failed to persist swept table", "table", tableID, "error", err)
					return
				}
				if creditErr != nil {
					slog.Error("Failed to distribute round credits", "table", tableID, "error", creditErr)
				}
				if swept {
					s.notify(fresh)
				}
				t = fresh
			}()
		}
	}

	return s.viewOf(ctx, t, playerID, now)
}

// Join seats the player at an unoccupied, in-range seat.
func (s *TableService) Join(ctx context.Context, tableID string, playerID uuid.UUID, username string, seatIdx int) (*blackjack.TableView, error) {
	t, err := s.mutate(ctx, tableID, func(t *blackjack.Table, now time.Time) error {
		if t.SeatOf(playerID) >= 0 {
			return blackjack.NewRuleError(blackjack.ReasonAlreadySeated, "you are already seated at this table")
		}
		if seatIdx < 0 || seatIdx >= t.MaxSeats {
			return blackjack.NewRuleError(blackjack.ReasonInvalidSeat, "seat index must be between 0 and %d", t.MaxSeats-1)
		}
		if t.Seats[seatIdx] != nil {
			return blackjack.NewRuleError(blackjack.ReasonSeatTaken, "seat %d is taken", seatIdx)
		}
		// The ledger is the source of truth for player existence.
		if _, err := s.ledger.GetBalance(ctx, playerID); err != nil {
			return err
		}

		t.Seats[seatIdx] = &blackjack.Seat{
			PlayerID: playerID,
			Name:     username,
			Finished: true,
		}
		t.LastUpdate = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.viewOf(ctx, t, playerID, s.nowFn())
}

// Leave removes the player's seat. Leaving is refused mid-round while the
// seat still has an unresolved wager; a wager placed during the betting
// phase is refunded.
func (s *TableService) Leave(ctx context.Context, tableID string, playerID uuid.UUID) (*blackjack.TableView, error) {
	t, err := s.mutate(ctx, tableID, func(t *blackjack.Table, now time.Time) error {
		seatIdx := t.SeatOf(playerID)
		if seatIdx < 0 {
			return blackjack.NewRuleError(blackjack.ReasonNotSeated, "you are not seated at this table")
		}
		seat := t.Seats[seatIdx]
		if t.Status == blackjack.StatusPlaying && seat.Wager > 0 && !seat.Finished {
			return blackjack.NewRuleError(blackjack.ReasonHandInRound, "cannot leave while your wager is in play")
		}
		if seat.Wager > 0 && (t.Status == blackjack.StatusWaiting || t.Status == blackjack.StatusBetting) {
			desc := fmt.Sprintf("wager refund at %s", t.Name)
			if err := s.ledger.Credit(ctx, playerID, seat.Wager, desc); err != nil {
				return err
			}
		}
		t.Seats[seatIdx] = nil
		t.LastUpdate = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.viewOf(ctx, t, playerID, s.nowFn())
}

// Act applies one player action (bet, hit, stand, double, split, insurance,
// surrender) under the full lock discipline.
func (s *TableService) Act(ctx context.Context, tableID string, playerID uuid.UUID, action blackjack.Action) (*blackjack.TableView, error) {
	t, err := s.mutate(ctx, tableID, func(t *blackjack.Table, now time.Time) error {
		return s.processor.Apply(ctx, t, playerID, action, now)
	})
	if err != nil {
		return nil, err
	}
	return s.viewOf(ctx, t, playerID, s.nowFn())
}

// mutate runs fn against a fresh read of the table under the table lock,
// sweeping first, persisting after, and distributing round credits when the
// round finished. A rejection from fn still persists sweep-only progress so
// passive transitions are never lost.
func (s *TableService) mutate(ctx context.Context, tableID string, fn func(t *blackjack.Table, now time.Time) error) (*blackjack.Table, error) {
	ok, err := s.lock.Acquire(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTableBusy
	}
	defer s.release(ctx, tableID)

	t, err := s.loadOrInit(ctx, tableID)
	if err != nil {
		return nil, err
	}

	now := s.nowFn()
	swept := t.Sweep(now)

	if fnErr := fn(t, now); fnErr != nil {
		// A rejection still persists sweep progress and retries an unpaid
		// settlement; passive transitions are never lost.
		if swept || uncreditedRound(t) {
			var creditErr error
			if uncreditedRound(t) {
				creditErr = s.creditRound(ctx, t)
			}
			if err := s.tables.Save(ctx, t); err != nil {
				slog.Error("Failed to persist swept table", "table", tableID, "error", err)
			} else if swept {
				s.notify(t)
			}
			if creditErr != nil {
				slog.Error("Failed to distribute round credits", "table", tableID, "error", creditErr)
			}
		}
		return nil, fnErr
	}

	var creditErr error
	if uncreditedRound(t) {
		creditErr = s.creditRound(ctx, t)
	}
	if err := s.tables.Save(ctx, t); err != nil {
		return nil, err
	}
	s.notify(t)
	if creditErr != nil {
		return nil, creditErr
	}
	return t, nil
}

// uncreditedRound reports whether the table holds a settled round whose
// payouts have not all been distributed yet.
func uncreditedRound(t *blackjack.Table) bool {
	return t.Status == blackjack.StatusFinished && !t.FullyCredited()
}

// creditRound moves settled chips to the players, exactly once per (table,
// round, seat). The round marker is claimed atomically up front and each
// seat's Credited flag is raised as its chips move, so a distribution that
// fails partway unsets the marker and a retry pays only the seats still
// owed. The caller persists the table afterwards, under the same lock.
func (s *TableService) creditRound(ctx context.Context, t *blackjack.Table) error {
	ok, err := s.markers.TryMark(ctx, t.ID, t.RoundNumber)
	if err != nil {
		return err
	}
	if !ok {
		// The marker is only left set by a fully distributed pass; seats
		// still unflagged here lost their flag update, not their payout.
		for _, seat := range t.Seats {
			if seat != nil && seat.Wager > 0 {
				seat.Credited = true
			}
		}
		return nil
	}

	var houseDelta int64
	var creditErr error
	for _, seat := range t.Seats {
		if seat == nil || seat.Wager <= 0 || seat.Credited {
			continue
		}
		if seat.Payout > 0 {
			desc := fmt.Sprintf("%s round %d payout", t.Name, t.RoundNumber)
			if err := s.ledger.Credit(ctx, seat.PlayerID, seat.Payout, desc); err != nil {
				creditErr = fmt.Errorf("failed to distribute round credit: %w", err)
				break
			}
		}
		seat.Credited = true
		houseDelta -= seat.NetGain
		houseDelta += seat.Commission

		// Insurance chips moved at action time; only the house side remains.
		switch seat.InsuranceResult {
		case blackjack.InsuranceLost:
			houseDelta += seat.InsuranceWager
		case blackjack.InsuranceWon:
			houseDelta -= 2 * seat.InsuranceWager
		}
	}

	// Seats processed this pass settle their house side even when a later
	// seat failed; the retry covers only the remainder.
	if houseDelta != 0 {
		if err := s.bankroll.Adjust(ctx, houseDelta); err != nil {
			slog.Error("Failed to adjust house bankroll", "table", t.ID, "round", t.RoundNumber, "error", err)
		}
	}

	if creditErr != nil {
		// Leave the round claimable again so the next access retries the
		// unpaid seats.
		if unmarkErr := s.markers.Unmark(ctx, t.ID, t.RoundNumber); unmarkErr != nil {
			slog.Error("Failed to unmark credited round", "table", t.ID, "round", t.RoundNumber, "error", unmarkErr)
		}
		return creditErr
	}
	return nil
}

// loadOrInit fetches the table record, recreating it from its static
// definition when the store has none (first reference or TTL eviction).
func (s *TableService) loadOrInit(ctx context.Context, tableID string) (*blackjack.Table, error) {
	t, err := s.tables.Get(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if t != nil {
		return t, nil
	}

	def, ok := blackjack.DefinitionByID(tableID)
	if !ok {
		return nil, ErrTableNotFound
	}
	t = blackjack.NewTable(def, s.nowFn())
	if err := s.tables.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TableService) viewOf(ctx context.Context, t *blackjack.Table, playerID uuid.UUID, now time.Time) (*blackjack.TableView, error) {
	balance, err := s.ledger.GetBalance(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return t.View(playerID, balance, now), nil
}

func (s *TableService) release(ctx context.Context, tableID string) {
	if err := s.lock.Release(ctx, tableID); err != nil {
		slog.Error("Failed to release table lock", "table", tableID, "error", err)
	}
}

func (s *TableService) notify(t *blackjack.Table) {
	if s.notifier != nil {
		s.notifier.TableUpdated(t.ID, t.Status, t.RoundNumber)
	}
}
