package rule

import (
	"slices"

	"github.com/palemoky/daifugo/internal/game/card"
)

// TradeCards 交换手牌：giver 交出 offered，receiver 交出自己牌力最高的同等张数。
// offered 必须全部在 giver 手中且张数不超过 receiver 的手牌数，否则返回 false 且不做任何修改
func TradeCards(giver, offered, receiver []card.Card) (newGiver, newReceiver []card.Card, ok bool) {
	if len(offered) > len(receiver) {
		return nil, nil, false
	}
	if !card.ContainsAll(giver, offered) || card.HasDuplicates(offered) {
		return nil, nil, false
	}

	strongest := StrongestCards(receiver, len(offered))

	newReceiver = card.Remove(receiver, strongest)
	newReceiver = append(newReceiver, offered...)

	newGiver = card.Remove(giver, offered)
	newGiver = append(newGiver, strongest...)

	return newGiver, newReceiver, true
}

// StrongestCards 牌力最高的 n 张
func StrongestCards(hand []card.Card, n int) []card.Card {
	sorted := slices.Clone(hand)
	card.SortByRank(sorted)
	n = min(max(n, 0), len(sorted))
	return sorted[len(sorted)-n:]
}

// WeakestCards 牌力最低的 n 张，交换超时时代替玩家选牌
func WeakestCards(hand []card.Card, n int) []card.Card {
	sorted := slices.Clone(hand)
	card.SortByRank(sorted)
	n = min(max(n, 0), len(sorted))
	return sorted[:n]
}
