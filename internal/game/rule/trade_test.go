package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/daifugo/internal/game/card"
	"github.com/palemoky/daifugo/internal/game/status"
)

func TestTradeCards(t *testing.T) {
	t.Parallel()

	giver := cards(s(1), s(2), s(3), s(4))
	receiver := cards(h(1), h(2), h(3), h(4))

	newGiver, newReceiver, ok := TradeCards(giver, cards(s(3), s(4)), receiver)
	require.True(t, ok)

	assert.ElementsMatch(t, cards(s(1), s(2), h(1), h(2)), newGiver)
	assert.ElementsMatch(t, cards(s(3), s(4), h(3), h(4)), newReceiver)

	// 入参不被修改
	assert.Equal(t, cards(s(1), s(2), s(3), s(4)), giver)
	assert.Equal(t, cards(h(1), h(2), h(3), h(4)), receiver)
}

func TestTradeCards_Rejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		giver    []card.Card
		offered  []card.Card
		receiver []card.Card
	}{
		{"Offered card not owned", cards(s(1), s(2), s(3), s(4)), cards(s(1), c(2)), cards(h(1), h(2), h(3), h(4))},
		{"Receiver hand too small", cards(s(1), s(2)), cards(s(1), s(2)), cards(h(1))},
		{"Duplicate offer", cards(s(1), s(2)), cards(s(1), s(1)), cards(h(1), h(2))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g, r, ok := TradeCards(tt.giver, tt.offered, tt.receiver)
			assert.False(t, ok)
			assert.Nil(t, g)
			assert.Nil(t, r)
		})
	}
}

func TestTradeCards_TiesBrokenBySuit(t *testing.T) {
	t.Parallel()

	// 两张 2 牌力相同，红心排在黑桃之后，因此红心 2 被交出
	newGiver, newReceiver, ok := TradeCards(cards(s(3)), cards(s(3)), cards(s(2), h(2), d(5)))
	require.True(t, ok)
	assert.Equal(t, cards(h(2)), newGiver)
	assert.ElementsMatch(t, cards(s(2), d(5), s(3)), newReceiver)
}

func TestWeakestAndStrongestCards(t *testing.T) {
	t.Parallel()

	hand := cards(jk, s(2), h(3), s(1), s(3))
	assert.Equal(t, cards(s(3), h(3)), WeakestCards(hand, 2))
	assert.Equal(t, cards(s(2), jk), StrongestCards(hand, 2))
	assert.Empty(t, WeakestCards(hand, 0))
	assert.Len(t, WeakestCards(hand, 10), 5)
}

func TestAssignSeats(t *testing.T) {
	t.Parallel()

	players := make([]*status.PrivateStatus, 5)
	for i := range players {
		players[i] = status.NewPrivateStatus(i)
	}
	seats := make([]status.Seat, 5)

	AssignSeats(players, seats)

	used := make(map[int]bool)
	for _, p := range players {
		require.GreaterOrEqual(t, p.Seat, 0)
		assert.Equal(t, p.ID, seats[p.Seat].PlayerID)
		assert.False(t, used[p.Seat], "seat %d assigned twice", p.Seat)
		used[p.Seat] = true
	}
}

func TestDealCards_FivePlayers(t *testing.T) {
	t.Parallel()

	players := make([]*status.PrivateStatus, 5)
	for i := range players {
		players[i] = &status.PrivateStatus{ID: i, Seat: i, Role: status.Heimin}
	}
	deck := card.NewDeck()
	deck.Shuffle()

	DealCards(&deck, players)

	counts := make([]int, len(players))
	seen := make(map[card.Card]bool)
	for i, p := range players {
		counts[i] = len(p.Hand)
		for _, c := range p.Hand {
			assert.False(t, seen[c], "card %v dealt twice", c)
			seen[c] = true
		}
	}
	assert.Equal(t, []int{11, 11, 11, 10, 10}, counts)
	assert.Len(t, seen, card.DeckSize)
	assert.Equal(t, 0, deck.Len())
}

func TestDealCards_StartsAtDaifugo(t *testing.T) {
	t.Parallel()

	players := []*status.PrivateStatus{
		{ID: 0, Seat: 0, Role: status.Daihinmin},
		{ID: 1, Seat: 1, Role: status.Heimin},
		{ID: 2, Seat: 2, Role: status.Heimin},
		{ID: 3, Seat: 3, Role: status.Daifugo},
	}
	deck := card.NewDeck()

	DealCards(&deck, players)

	// 53 = 4*13 + 1，多出的一张发给起始座位
	assert.Len(t, players[3].Hand, 14)
	assert.Equal(t, card.New(card.Spades, 1), players[3].Hand[0])
	assert.Len(t, players[0].Hand, 13)
	assert.Equal(t, card.New(card.Spades, 2), players[0].Hand[0])
}
