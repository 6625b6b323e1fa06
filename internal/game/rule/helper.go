package rule

import (
	"slices"

	"github.com/palemoky/daifugo/internal/game/card"
)

// FindSmallestBeatingCards 找到能压过 fieldTop 的最小牌组
// 如果找不到，返回 nil
func FindSmallestBeatingCards(hand, fieldTop []card.Card) []card.Card {
	if len(hand) == 0 {
		return nil
	}
	// 新一轮出最小的单牌
	if len(fieldTop) == 0 {
		return WeakestCards(hand, 1)
	}

	var result []card.Card
	switch Classify(fieldTop) {
	case Single:
		result = findSmallestBeatingSingle(hand, fieldTop)
	case Multiple:
		result = findSmallestBeatingMultiple(hand, fieldTop)
	case Sequence:
		result = findSmallestBeatingSequence(hand, fieldTop)
	}

	if result != nil && IsPlayLegal(result, hand, fieldTop) {
		return result
	}
	return nil
}

// findSmallestBeatingSingle 找到能压过的最小单张
func findSmallestBeatingSingle(hand, fieldTop []card.Card) []card.Card {
	sorted := slices.Clone(hand)
	card.SortByRank(sorted)
	for _, c := range sorted {
		if c.Rank() > fieldTop[0].Rank() {
			return []card.Card{c}
		}
	}
	return nil
}

// groupByNumber 非王牌按点数分组，返回按牌力升序的点数列表
func groupByNumber(hand []card.Card) (map[int][]card.Card, []int) {
	groups := make(map[int][]card.Card)
	for _, c := range hand {
		if !c.IsJoker() {
			groups[c.Number] = append(groups[c.Number], c)
		}
	}
	numbers := make([]int, 0, len(groups))
	for n := range groups {
		numbers = append(numbers, n)
	}
	slices.SortFunc(numbers, func(a, b int) int {
		return card.RankOf(a) - card.RankOf(b)
	})
	return groups, numbers
}

// findSmallestBeatingMultiple 先不用王牌找，找不到再用王牌补一张
func findSmallestBeatingMultiple(hand, fieldTop []card.Card) []card.Card {
	need := len(fieldTop)
	fieldRank := minRank(fieldTop)
	groups, numbers := groupByNumber(hand)
	joker := slices.IndexFunc(hand, card.Card.IsJoker)

	for _, n := range numbers {
		if card.RankOf(n) <= fieldRank {
			continue
		}
		if g := groups[n]; len(g) >= need {
			return slices.Clone(g[:need])
		}
	}
	if joker < 0 {
		return nil
	}
	for _, n := range numbers {
		if card.RankOf(n) <= fieldRank {
			continue
		}
		if g := groups[n]; len(g) == need-1 {
			return append(slices.Clone(g), hand[joker])
		}
	}
	return nil
}

// numberOfRank 牌力到点数的换算，牌力 14 没有对应的花色牌
func numberOfRank(rank int) int {
	n := rank + 2
	if n > 13 {
		n -= 13
	}
	return n
}

// findSmallestBeatingSequence 按起始牌力从低到高枚举同花色的窗口，缺一张时用王牌补
func findSmallestBeatingSequence(hand, fieldTop []card.Card) []card.Card {
	length := len(fieldTop)
	start := MaxRankOfSequence(fieldTop) + 1
	joker := slices.IndexFunc(hand, card.Card.IsJoker)

	for low := start; low+length-1 <= card.RankOf(card.JokerNumber); low++ {
		for suit := card.Spades; suit < card.Joker; suit++ {
			if seq := sequenceWindow(hand, suit, low, length, joker); seq != nil {
				return seq
			}
		}
	}
	return nil
}

func sequenceWindow(hand []card.Card, suit card.Suit, low, length, joker int) []card.Card {
	seq := make([]card.Card, 0, length)
	missing := 0
	for r := low; r < low+length; r++ {
		if r > 13 {
			missing++
			continue
		}
		c := card.New(suit, numberOfRank(r))
		if card.Contains(hand, c) {
			seq = append(seq, c)
		} else {
			missing++
		}
	}
	switch {
	case missing == 0:
		return seq
	case missing == 1 && joker >= 0:
		return append(seq, hand[joker])
	default:
		return nil
	}
}
