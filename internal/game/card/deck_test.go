package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeck(t *testing.T) {
	t.Parallel()

	deck := NewDeck()
	require.Len(t, deck, DeckSize)

	assert.Equal(t, New(Spades, 1), deck[0])
	assert.Equal(t, New(Spades, 13), deck[12])
	assert.Equal(t, New(Hearts, 1), deck[13])
	assert.Equal(t, NewJoker(), deck[DeckSize-1])

	seen := make(map[Card]bool)
	for _, c := range deck {
		assert.True(t, c.Valid(), "invalid card %v", c)
		assert.False(t, seen[c], "duplicate card %v", c)
		seen[c] = true
	}
}

func TestDeck_PopUntilEmpty(t *testing.T) {
	t.Parallel()

	deck := NewDeck()
	deck.Shuffle()

	popped := make(map[Card]bool)
	for range DeckSize {
		c, ok := deck.Pop()
		require.True(t, ok)
		popped[c] = true
	}
	assert.Len(t, popped, DeckSize)
	assert.Equal(t, 0, deck.Len())

	_, ok := deck.Pop()
	assert.False(t, ok, "54th pop must report empty")
}

func TestDeck_ShuffleKeepsCards(t *testing.T) {
	t.Parallel()

	deck := NewDeck()
	deck.Shuffle()
	assert.ElementsMatch(t, NewDeck().Cards(), deck.Cards())

	deck.SortBySuit()
	assert.Equal(t, NewDeck(), deck)
}

func TestDeck_CardsIsACopy(t *testing.T) {
	t.Parallel()

	deck := NewDeck()
	cards := deck.Cards()
	cards[0] = NewJoker()
	assert.Equal(t, New(Spades, 1), deck[0])
}
