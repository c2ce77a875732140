package blackjack

import (
	"context"
	"time"

	"github.com/Silexemple/satoshi-casino21/internal/game"
	"github.com/google/uuid"
)

// exposureFactor models the worst case cost of one accepted wager: up to
// four split hands, each paid at 2x.
const exposureFactor = 8

// maxHandsPerSeat caps splitting.
const maxHandsPerSeat = 4

// Action is one player-initiated transition. The set is closed: one variant
// per action, each carrying only its own parameters.
type Action interface {
	actionName() string
}

type Bet struct {
	Amount int64
}

type Hit struct{}

type Stand struct{}

type Double struct{}

type Split struct{}

type Insurance struct {
	Accept bool
}

type Surrender struct{}

func (Bet) actionName() string       { return "bet" }
func (Hit) actionName() string       { return "hit" }
func (Stand) actionName() string     { return "stand" }
func (Double) actionName() string    { return "double" }
func (Split) actionName() string     { return "split" }
func (Insurance) actionName() string { return "insurance" }
func (Surrender) actionName() string { return "surrender" }

// ParseAction builds an Action from its wire name and optional parameters.
func ParseAction(name string, amount int64, accept bool) (Action, error) {
	switch name {
	case "bet":
		return Bet{Amount: amount}, nil
	case "hit":
		return Hit{}, nil
	case "stand":
		return Stand{}, nil
	case "double":
		return Double{}, nil
	case "split":
		return Split{}, nil
	case "insurance":
		return Insurance{Accept: accept}, nil
	case "surrender":
		return Surrender{}, nil
	default:
		return nil, rejected(ReasonInvalidAction, "unknown action %q", name)
	}
}

// Ledger is the external player balance collaborator. Each call is atomic.
type Ledger interface {
	GetBalance(ctx context.Context, playerID uuid.UUID) (int64, error)
	Debit(ctx context.Context, playerID uuid.UUID, amount int64, description string) error
	Credit(ctx context.Context, playerID uuid.UUID, amount int64, description string) error
}

// Bankroll exposes the house's available funds for the wager-admission
// exposure check.
type Bankroll interface {
	Available(ctx context.Context) (int64, error)
}

// Processor validates and applies a single player action to a table. The
// caller holds the table lock and has already run the sweeper.
type Processor struct {
	ledger   Ledger
	bankroll Bankroll
}

func NewProcessor(ledger Ledger, bankroll Bankroll) *Processor {
	return &Processor{ledger: ledger, bankroll: bankroll}
}

// Apply runs one action for one player. Every precondition is checked before
// any state is touched; a rejection leaves both the table and the ledger
// unchanged.
func (p *Processor) Apply(ctx context.Context, t *Table, playerID uuid.UUID, action Action, now time.Time) error {
	if bet, ok := action.(Bet); ok {
		return p.applyBet(ctx, t, playerID, bet.Amount, now)
	}

	// Every other action requires the playing phase and the caller's turn.
	if t.Status != StatusPlaying {
		return rejected(ReasonWrongPhase, "table is not in the playing phase")
	}
	seatIdx := t.SeatOf(playerID)
	if seatIdx < 0 {
		return rejected(ReasonNotSeated, "you are not seated at this table")
	}
	if seatIdx != t.CurrentSeatIdx {
		return rejected(ReasonNotYourTurn, "it is not your turn")
	}
	seat := t.Seats[seatIdx]
	hand := seat.ActiveHand()
	if hand == nil || hand.Finished {
		return rejected(ReasonHandFinished, "hand is already finished")
	}

	switch act := action.(type) {
	case Hit:
		return p.applyHit(t, seat, hand, now)
	case Stand:
		return p.applyStand(t, hand, now)
	case Double:
		return p.applyDouble(ctx, t, seat, hand, now)
	case Split:
		return p.applySplit(ctx, t, seat, hand, now)
	case Insurance:
		return p.applyInsurance(ctx, t, seat, hand, act.Accept, now)
	case Surrender:
		return p.applySurrender(t, seat, hand, now)
	default:
		return rejected(ReasonInvalidAction, "unknown action")
	}
}

func (p *Processor) applyBet(ctx context.Context, t *Table, playerID uuid.UUID, amount int64, now time.Time) error {
	if t.Status != StatusWaiting && t.Status != StatusBetting {
		return rejected(ReasonWrongPhase, "wagers are closed")
	}
	seatIdx := t.SeatOf(playerID)
	if seatIdx < 0 {
		return rejected(ReasonNotSeated, "you are not seated at this table")
	}
	seat := t.Seats[seatIdx]
	if seat.Wager > 0 {
		return rejected(ReasonAlreadyWagered, "you have already wagered this round")
	}
	if amount < t.MinWager || amount > t.MaxWager {
		return rejected(ReasonInvalidWager, "wager must be between %d and %d sats", t.MinWager, t.MaxWager)
	}

	balance, err := p.ledger.GetBalance(ctx, playerID)
	if err != nil {
		return err
	}
	if balance < amount {
		return rejected(ReasonInsufficientFunds, "insufficient balance")
	}

	// House exposure check: reject if the worst case payout across all
	// current wagers would exceed the bankroll, hinting at the largest
	// acceptable wager when one exists.
	exposure := amount * exposureFactor
	for _, s := range t.Seats {
		if s != nil && s.Wager > 0 {
			exposure += s.Wager * exposureFactor
		}
	}
	bankroll, err := p.bankroll.Available(ctx)
	if err != nil {
		return err
	}
	if bankroll < exposure {
		otherExposure := exposure - amount*exposureFactor
		maxAcceptable := (bankroll - otherExposure) / exposureFactor
		if maxAcceptable < t.MinWager {
			return rejected(ReasonBankrollExceeded, "the house cannot cover this wager right now")
		}
		return rejected(ReasonBankrollExceeded, "maximum accepted wager is %d sats", maxAcceptable)
	}

	if err := p.ledger.Debit(ctx, playerID, amount, "wager at "+t.Name); err != nil {
		return err
	}

	seat.Wager = amount
	seat.Finished = false

	if t.Status == StatusWaiting {
		t.Status = StatusBetting
		t.BettingStartedAt = &now
		t.RoundNumber++
	}

	allWagered := true
	occupied := 0
	for _, s := range t.Seats {
		if s == nil {
			continue
		}
		occupied++
		if s.Wager <= 0 {
			allWagered = false
		}
	}
	if occupied > 0 && allWagered {
		t.StartRound(now)
	}

	t.LastUpdate = now
	return nil
}

func (p *Processor) applyHit(t *Table, seat *Seat, hand *Hand, now time.Time) error {
	hand.Cards = append(hand.Cards, t.Shoe.Draw())
	score := game.Score(hand.Cards)

	switch {
	case score > 21:
		hand.Finished = true
		hand.Result = ResultBust
		t.advanceTurn(now)
	case score == 21:
		hand.Finished = true
		t.advanceTurn(now)
	default:
		t.TurnStartedAt = &now
	}
	t.LastUpdate = now
	return nil
}

func (p *Processor) applyStand(t *Table, hand *Hand, now time.Time) error {
	hand.Finished = true
	t.advanceTurn(now)
	t.LastUpdate = now
	return nil
}

func (p *Processor) applyDouble(ctx context.Context, t *Table, seat *Seat, hand *Hand, now time.Time) error {
	if len(hand.Cards) != 2 {
		return rejected(ReasonInvalidAction, "double is only allowed on a two-card hand")
	}

	balance, err := p.ledger.GetBalance(ctx, seat.PlayerID)
	if err != nil {
		return err
	}
	if balance < hand.Wager {
		return rejected(ReasonInsufficientFunds, "insufficient balance to double")
	}
	if err := p.ledger.Debit(ctx, seat.PlayerID, hand.Wager, "double down at "+t.Name); err != nil {
		return err
	}

	hand.Wager *= 2
	hand.Cards = append(hand.Cards, t.Shoe.Draw())
	hand.Finished = true
	if game.Score(hand.Cards) > 21 {
		hand.Result = ResultBust
	}
	t.advanceTurn(now)
	t.LastUpdate = now
	return nil
}

func (p *Processor) applySplit(ctx context.Context, t *Table, seat *Seat, hand *Hand, now time.Time) error {
	if !game.IsSplittable(hand.Cards) {
		return rejected(ReasonInvalidAction, "split is only allowed on a two-card pair")
	}
	if len(seat.Hands) >= maxHandsPerSeat {
		return rejected(ReasonInvalidAction, "a seat holds at most %d hands", maxHandsPerSeat)
	}

	// The new hand always carries the seat's original wager, not the
	// possibly doubled wager of the hand being split.
	balance, err := p.ledger.GetBalance(ctx, seat.PlayerID)
	if err != nil {
		return err
	}
	if balance < seat.Wager {
		return rejected(ReasonInsufficientFunds, "insufficient balance to split")
	}
	if err := p.ledger.Debit(ctx, seat.PlayerID, seat.Wager, "split at "+t.Name); err != nil {
		return err
	}

	first, second := hand.Cards[0], hand.Cards[1]
	seat.Hands[seat.CurrentHandIdx] = Hand{
		Cards: []game.Card{first, t.Shoe.Draw()},
		Wager: seat.Wager,
	}
	newHand := Hand{
		Cards: []game.Card{second, t.Shoe.Draw()},
		Wager: seat.Wager,
	}
	idx := seat.CurrentHandIdx + 1
	seat.Hands = append(seat.Hands[:idx], append([]Hand{newHand}, seat.Hands[idx:]...)...)

	if game.Score(seat.Hands[seat.CurrentHandIdx].Cards) == 21 {
		seat.Hands[seat.CurrentHandIdx].Finished = true
		t.advanceTurn(now)
	} else {
		t.TurnStartedAt = &now
	}
	t.LastUpdate = now
	return nil
}

func (p *Processor) applyInsurance(ctx context.Context, t *Table, seat *Seat, hand *Hand, accept bool, now time.Time) error {
	if len(t.DealerHand) == 0 || t.DealerHand[0].Rank != "A" {
		return rejected(ReasonInvalidAction, "insurance is only offered against a dealer ace")
	}
	if len(seat.Hands) != 1 || len(hand.Cards) != 2 {
		return rejected(ReasonInvalidAction, "insurance is only offered on the original two-card hand")
	}
	if seat.InsuranceResult != "" || seat.InsuranceWager != 0 {
		return rejected(ReasonInvalidAction, "insurance has already been taken")
	}

	if !accept {
		seat.InsuranceResult = InsuranceDeclined
		t.LastUpdate = now
		return nil
	}

	side := seat.Wager / 2
	balance, err := p.ledger.GetBalance(ctx, seat.PlayerID)
	if err != nil {
		return err
	}
	if balance < side {
		return rejected(ReasonInsufficientFunds, "insufficient balance for insurance")
	}
	if err := p.ledger.Debit(ctx, seat.PlayerID, side, "insurance at "+t.Name); err != nil {
		return err
	}

	seat.InsuranceWager = side
	// Resolved immediately against the hole card; insurance pays 2:1. The
	// result is only recorded once the winnings actually moved, so a
	// persisted won state always means a paid one.
	if game.IsNatural(t.DealerHand) {
		if err := p.ledger.Credit(ctx, seat.PlayerID, side*3, "insurance win at "+t.Name); err != nil {
			return err
		}
		seat.InsuranceResult = InsuranceWon
	} else {
		seat.InsuranceResult = InsuranceLost
	}
	t.LastUpdate = now
	return nil
}

func (p *Processor) applySurrender(t *Table, seat *Seat, hand *Hand, now time.Time) error {
	if len(seat.Hands) != 1 || len(hand.Cards) != 2 {
		return rejected(ReasonInvalidAction, "surrender is only allowed on the original two-card hand")
	}

	// Half the wager comes back through settlement's idempotent credit step.
	hand.Finished = true
	hand.Result = ResultSurrender
	t.advanceTurn(now)
	t.LastUpdate = now
	return nil
}
