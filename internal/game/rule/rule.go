package rule

import (
	"slices"

	"github.com/palemoky/daifugo/internal/game/card"
)

// PlayType 出牌牌型
type PlayType int

const (
	Invalid  PlayType = iota // 无效
	Single                   // 单张
	Multiple                 // 同点数多张
	Sequence                 // 同花色阶梯
)

var playTypeNames = map[PlayType]string{
	Invalid:  "无效牌型",
	Single:   "单张",
	Multiple: "多张",
	Sequence: "阶梯",
}

func (p PlayType) String() string {
	if name, ok := playTypeNames[p]; ok {
		return name
	}
	return "未知牌型"
}

// Classify 判断一组牌的牌型，不检查是否在手牌中
func Classify(cards []card.Card) PlayType {
	switch {
	case len(cards) == 1:
		return Single
	case IsMultiple(cards):
		return Multiple
	case IsSequence(cards):
		return Sequence
	default:
		return Invalid
	}
}

// withoutOneJoker 去掉第一张王牌，返回剩余的牌以及是否去掉了王牌
func withoutOneJoker(cards []card.Card) ([]card.Card, bool) {
	idx := slices.IndexFunc(cards, card.Card.IsJoker)
	if idx < 0 {
		return slices.Clone(cards), false
	}
	rest := make([]card.Card, 0, len(cards)-1)
	rest = append(rest, cards[:idx]...)
	return append(rest, cards[idx+1:]...), true
}

// IsMultiple 两张及以上同点数的牌，王牌可替代其中一张
func IsMultiple(cards []card.Card) bool {
	if len(cards) < 2 {
		return false
	}
	rest, _ := withoutOneJoker(cards)
	for _, c := range rest[1:] {
		if c.Number != rest[0].Number {
			return false
		}
	}
	return true
}

// IsSequence 三张及以上同花色、牌力连续的牌。
// 王牌可以填补一个间隔为 2 的空缺，且只能填补一次
func IsSequence(cards []card.Card) bool {
	if len(cards) < 3 {
		return false
	}
	rest, hasJoker := withoutOneJoker(cards)
	return isRun(rest, hasJoker)
}

func isRun(cards []card.Card, hasJoker bool) bool {
	if len(cards) == 0 {
		return false
	}
	suit := cards[0].Suit
	for _, c := range cards[1:] {
		if c.Suit != suit {
			return false
		}
	}

	sorted := slices.Clone(cards)
	card.SortByRank(sorted)

	jokerUsed := false
	for i := 0; i < len(sorted)-1; i++ {
		switch d := sorted[i+1].Rank() - sorted[i].Rank(); {
		case d == 1:
		case d == 2 && hasJoker && !jokerUsed:
			jokerUsed = true
		default:
			return false
		}
	}
	return true
}

// MaxRankOfSequence 阶梯的最大牌力，不是阶梯时返回 -1。
// 除王牌外的牌已经连续时，王牌放在最顶端
func MaxRankOfSequence(cards []card.Card) int {
	if !IsSequence(cards) {
		return -1
	}
	rest, hasJoker := withoutOneJoker(cards)

	maxRank := -1
	for _, c := range rest {
		maxRank = max(maxRank, c.Rank())
	}

	if hasJoker && jokerOnTop(rest) {
		maxRank++
	}
	return maxRank
}

func jokerOnTop(rest []card.Card) bool {
	if len(rest) == 2 {
		sorted := slices.Clone(rest)
		card.SortByRank(sorted)
		return sorted[1].Rank()-sorted[0].Rank() == 1
	}
	return IsSequence(rest)
}

// MinRankOfSequence 阶梯的最小牌力，不是阶梯时返回 -1
func MinRankOfSequence(cards []card.Card) int {
	maxRank := MaxRankOfSequence(cards)
	if maxRank < 0 {
		return -1
	}
	return maxRank - len(cards) + 1
}

// minRank 一组牌中最小的牌力，王牌牌力最高，因此多张出牌时取到的是非王牌的点数
func minRank(cards []card.Card) int {
	r := card.RankOf(card.JokerNumber)
	for _, c := range cards {
		r = min(r, c.Rank())
	}
	return r
}

// IsPlayLegal 判断 played 能否从 hand 中打出并压过场上的 fieldTop。
// fieldTop 为空表示新一轮，任意合法牌型均可
func IsPlayLegal(played, hand, fieldTop []card.Card) bool {
	if len(played) == 0 {
		return false
	}
	if len(fieldTop) > 0 && len(played) != len(fieldTop) {
		return false
	}
	if !card.ContainsAll(hand, played) {
		return false
	}
	if card.HasDuplicates(played) {
		return false
	}

	switch Classify(fieldTop) {
	case Single:
		return played[0].Rank() > fieldTop[0].Rank()
	case Multiple:
		return IsMultiple(played) && minRank(played) > minRank(fieldTop)
	case Sequence:
		return IsSequence(played) && MinRankOfSequence(played) > MaxRankOfSequence(fieldTop)
	default:
		if len(fieldTop) > 0 {
			return false
		}
		return Classify(played) != Invalid
	}
}
