package blackjack

import (
	"strconv"
	"time"

	"github.com/Silexemple/satoshi-casino21/internal/game"
	"github.com/google/uuid"
)

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func tc(rank string) game.Card {
	value := 0
	switch rank {
	case "A":
		value = 11
	case "K", "Q", "J", "10":
		value = 10
	default:
		value, _ = strconv.Atoi(rank)
	}
	return game.Card{Suit: "♦", Rank: rank, Value: value}
}

func tcs(ranks ...string) []game.Card {
	out := make([]game.Card, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, tc(r))
	}
	return out
}

// shoeOf builds a shoe that draws the given ranks in order.
func shoeOf(ranks ...string) game.Shoe {
	shoe := make(game.Shoe, 0, len(ranks))
	for i := len(ranks) - 1; i >= 0; i-- {
		shoe = append(shoe, tc(ranks[i]))
	}
	return shoe
}

func testTable() *Table {
	return NewTable(Definition{
		ID:       "table-1",
		Name:     "Table Bronze",
		MinWager: 100,
		MaxWager: 1000,
		MaxSeats: 5,
	}, testNow)
}

func seatedPlayer(t *Table, idx int, name string) uuid.UUID {
	id := uuid.New()
	t.Seats[idx] = &Seat{PlayerID: id, Name: name, Finished: true}
	return id
}

// wageredSeat puts a mid-round seat at idx holding a single unfinished hand.
func wageredSeat(t *Table, idx int, wager int64, ranks ...string) uuid.UUID {
	id := uuid.New()
	t.Seats[idx] = &Seat{
		PlayerID: id,
		Name:     "player" + strconv.Itoa(idx),
		Wager:    wager,
		Hands:    []Hand{{Cards: tcs(ranks...), Wager: wager}},
	}
	return id
}
