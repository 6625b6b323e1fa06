package rule

import (
	"math/rand/v2"
	"slices"

	"github.com/palemoky/daifugo/internal/game/card"
	"github.com/palemoky/daifugo/internal/game/status"
)

// AssignSeats 随机分配座位，同时写入玩家与座位两侧。
// 座位数少于玩家数时多出的玩家不入座
func AssignSeats(players []*status.PrivateStatus, seats []status.Seat) {
	for i := range seats {
		seats[i].PlayerID = status.NoPlayer
	}
	order := rand.Perm(len(seats))
	for i, p := range players {
		if i >= len(order) {
			p.Seat = status.NoPlayer
			continue
		}
		p.Seat = order[i]
		seats[order[i]].PlayerID = p.ID
	}
}

// BySeat 按座位号排序的玩家列表
func BySeat(players []*status.PrivateStatus) []*status.PrivateStatus {
	sorted := slices.Clone(players)
	slices.SortFunc(sorted, func(a, b *status.PrivateStatus) int {
		return a.Seat - b.Seat
	})
	return sorted
}

// DealCards 从大富豪的座位开始（没有大富豪则从 0 号座位）按座位顺序轮流发牌，直到牌堆为空
func DealCards(deck *card.Deck, players []*status.PrivateStatus) {
	if len(players) == 0 {
		return
	}
	seated := BySeat(players)

	start := 0
	for i, p := range seated {
		if p.Role == status.Daifugo {
			start = i
			break
		}
	}

	for i := start; ; i = (i + 1) % len(seated) {
		c, ok := deck.Pop()
		if !ok {
			return
		}
		seated[i].Hand = append(seated[i].Hand, c)
	}
}
